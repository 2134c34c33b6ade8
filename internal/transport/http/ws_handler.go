package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roomtalk/roomtalk-server/internal/core"
	"github.com/roomtalk/roomtalk-server/internal/proto"
)

// WSHandler upgrades HTTP connections and bridges them to core sessions.
type WSHandler struct {
	hub      *core.Hub
	allowed  map[string]struct{}
	allowAll bool
	log      *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler enforcing the origin allow-list.
func NewWSHandler(hub *core.Hub, origins []string, logger *zerolog.Logger) stdhttp.Handler {
	allowed, allowAll := normalizeOrigins(origins)
	return &WSHandler{hub: hub, allowed: allowed, allowAll: allowAll, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	if origin := r.Header.Get("Origin"); origin != "" && !originAllowed(h.allowed, h.allowAll, origin) {
		h.log.Warn().Str("origin", origin).Msg("ws connection from disallowed origin")
		w.WriteHeader(stdhttp.StatusForbidden)
		return
	}

	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Origin is checked above against the configured allow-list.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	session := core.NewSession(uuid.NewString(), r.URL.Query().Get("user"))
	h.hub.RegisterSession(session)
	defer h.hub.UnregisterSession(session)

	h.log.Info().Str("session_id", session.ID).Str("user_id", session.UserID).Msg("ws connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, session)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, session)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("session_id", session.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, session *core.Session) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		cmd, err := inboundToCommand(inbound)
		if err != nil {
			// Malformed payloads are dropped, never fatal.
			h.log.Warn().Err(err).Str("session_id", session.ID).Msg("drop inbound")
			continue
		}

		select {
		case session.Commands <- cmd:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, session *core.Session) error {
	for {
		select {
		case event := <-session.Events:
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("session_id", session.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
