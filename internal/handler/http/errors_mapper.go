package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-offline-sync/internal/app"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/internal/store"
)

type errorResponse struct {
	status  int
	message string
}

var errorStatusMap = map[error]errorResponse{
	service.ErrInvalidDataProvided:     {http.StatusBadRequest, app.MsgInvalidDataProvided},
	service.ErrRecordIDMismatch:        {http.StatusBadRequest, app.MsgRecordIDMismatch},
	service.ErrInvalidPage:             {http.StatusBadRequest, app.MsgInvalidPage},
	service.ErrWrongPassword:           {http.StatusUnauthorized, app.MsgInvalidLoginPassword},
	service.ErrTokenIsExpiredOrInvalid: {http.StatusUnauthorized, app.MsgTokenIsExpiredOrInvalid},
	service.ErrVersionIsNotSpecified:   {http.StatusBadRequest, app.MsgVersionIsNotSpecified},

	store.ErrLoginAlreadyExists:  {http.StatusConflict, app.MsgLoginAlreadyExists},
	store.ErrNoUserWasFound:      {http.StatusUnauthorized, app.MsgInvalidLoginPassword},
	store.ErrRecordNotFound:      {http.StatusNotFound, app.MsgRecordNotFound},
	store.ErrRecordForbidden:     {http.StatusForbidden, app.MsgAccessDenied},
	store.ErrRecordAlreadyExists: {http.StatusInternalServerError, app.MsgInternalServerError},
}

// statusFromError maps a service or storage error to an HTTP status. Anything
// unknown is a 500.
func statusFromError(err error) int {
	status, _ := responseFromError(err, app.MsgInternalServerError)
	return status
}

func responseFromError(err error, fallback string) (int, string) {
	for target, resp := range errorStatusMap {
		if errors.Is(err, target) {
			return resp.status, resp.message
		}
	}
	return http.StatusInternalServerError, fallback
}

// writeError logs err and answers with its mapped status. fallback is the
// body of an unmapped (500) error.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, funcName string, err error, fallback string) {
	status, message := responseFromError(err, fallback)

	log := logger.FromRequest(r)
	if status >= http.StatusInternalServerError {
		log.Err(err).Str("func", funcName).Int("status", status).Send()
	} else {
		log.Warn().Err(err).Str("func", funcName).Int("status", status).Send()
	}

	http.Error(w, message, status)
}
