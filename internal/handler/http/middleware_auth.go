package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/app"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
)

// tokenQueryParam lets browser-style websocket clients, which cannot set
// headers, pass the token in the URL.
const tokenQueryParam = "token"

type tokenExpiryKey struct{}

// auth is an HTTP middleware that enforces JWT-based authentication.
//
// The token is read from the "Authorization: Bearer" header and, when the
// header is absent, from the token query parameter. On success the owner id
// and the token expiry are stored in the request context. Any failure is a
// 401.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		tokenString, err := tokenFromRequest(r)
		if err != nil {
			log.Err(err).Str("func", "*Handler.auth").Send()
			http.Error(w, app.MsgTokenIsExpiredOrInvalid, http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		token, err := h.services.AuthService.ParseToken(ctx, tokenString)
		if err != nil {
			log.Err(err).Str("func", "*Handler.auth").Msg("error occurred during parsing token")
			http.Error(w, app.MsgTokenIsExpiredOrInvalid, http.StatusUnauthorized)
			return
		}

		ctx = utils.WithUserID(ctx, token.UserID)
		if token.ExpiresAt != nil {
			ctx = context.WithValue(ctx, tokenExpiryKey{}, token.ExpiresAt.Time)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tokenFromRequest(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		return getTokenFromAuthHeader(authHeader)
	}
	if token := r.URL.Query().Get(tokenQueryParam); token != "" {
		return token, nil
	}
	return "", ErrEmptyAuthorizationHeader
}

// getTokenFromAuthHeader extracts the token of an "<scheme> <token>" header.
func getTokenFromAuthHeader(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) < 2 {
		return "", ErrInvalidAuthorizationHeader
	}

	tokenString := parts[1]
	if tokenString == "" {
		return "", ErrEmptyToken
	}

	return tokenString, nil
}

// tokenExpiry returns the expiry of the token that authenticated the request.
func tokenExpiry(ctx context.Context) (time.Time, bool) {
	expiry, ok := ctx.Value(tokenExpiryKey{}).(time.Time)
	return expiry, ok
}
