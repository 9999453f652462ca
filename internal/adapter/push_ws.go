package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

const pushPath = "/api/records/ws"

type wsPushListener struct {
	url    string
	dialer *websocket.Dialer
	logger *logger.Logger
}

// NewPushListener returns the gRPC stream listener when a gRPC address is
// configured and the websocket listener otherwise.
func NewPushListener(adapterCfg config.ClientAdapter, logger *logger.Logger) (PushListener, error) {
	if adapterCfg.GRPCAddress != "" {
		return newGRPCPushListener(adapterCfg.GRPCAddress, logger), nil
	}
	return newWSPushListener(adapterCfg, logger)
}

func newWSPushListener(adapterCfg config.ClientAdapter, logger *logger.Logger) (*wsPushListener, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	u, err := url.Parse(baseURL + pushPath)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	dialer := *websocket.DefaultDialer
	if adapterCfg.RequestTimeout > 0 {
		dialer.HandshakeTimeout = adapterCfg.RequestTimeout
	}

	return &wsPushListener{url: u.String(), dialer: &dialer, logger: logger}, nil
}

// Listen implements [PushListener].
func (l *wsPushListener) Listen(ctx context.Context, token string, events chan<- models.PushEvent) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := l.dialer.DialContext(ctx, l.url, header)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return ErrAuthInvalid
		}
		return fmt.Errorf("%w: dial push channel: %w", ErrTransport, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	l.logger.Debug().Str("func", "wsPushListener.Listen").Msg("push channel connected")

	for {
		var event models.PushEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.ClosePolicyViolation {
				return ErrAuthInvalid
			}
			return fmt.Errorf("%w: read push event: %w", ErrTransport, err)
		}

		select {
		case events <- event:
		case <-ctx.Done():
			return nil
		}
	}
}
