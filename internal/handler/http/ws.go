// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

const (
	defaultPingInterval = 30 * time.Second
	writeWait           = 10 * time.Second
)

// pushChannel upgrades to a websocket and streams every push event of the
// caller's owner until the client goes away or the token expires. An expired
// token closes the socket with a policy-violation frame.
func (h *Handler) pushChannel(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(w, r, "*Handler.pushChannel")
	if !ok {
		return
	}
	log := logger.FromRequest(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client
		log.Err(err).Str("func", "*Handler.pushChannel").Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	events, unsubscribe := h.services.Hub.Subscribe(ownerID)
	defer unsubscribe()

	log.Debug().Str("func", "*Handler.pushChannel").Int64("user_id", ownerID).Msg("push channel opened")

	// the client never sends data frames; reading surfaces close and
	// keeps control frames flowing
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	var expired <-chan time.Time
	if expiry, ok := tokenExpiry(r.Context()); ok {
		timer := time.NewTimer(time.Until(expiry))
		defer timer.Stop()
		expired = timer.C
	}

	for {
		select {
		case event, open := <-events:
			if !open {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				log.Warn().Err(err).Str("func", "*Handler.pushChannel").Int64("user_id", ownerID).Msg("push write failed")
				return
			}

		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}

		case <-expired:
			msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "token expired")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			log.Info().Str("func", "*Handler.pushChannel").Int64("user_id", ownerID).Msg("push channel closed, token expired")
			return

		case <-gone:
			log.Debug().Str("func", "*Handler.pushChannel").Int64("user_id", ownerID).Msg("push channel closed by client")
			return

		case <-r.Context().Done():
			return
		}
	}
}
