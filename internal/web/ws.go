package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chime-audio/chime/internal/core"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The server binds to the local network by design; clients connect
	// from arbitrary origins (browser tabs, file:// wrappers).
	CheckOrigin: func(*http.Request) bool { return true },
}

const writeWait = 10 * time.Second

// handleWS upgrades the connection and bridges it to the hub: every
// notification is forwarded as one JSON frame, and inbound frames are
// parsed into controller commands. Subscribing replays the current state
// first, so a fresh client renders without asking.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	s.logger.Debug().Str("remote", r.RemoteAddr).Msg("websocket connected")

	sub := s.hub.Subscribe()
	defer sub.Close()

	// Per-connection rejections merge into the outbound stream here, so
	// only the writer goroutine ever touches the connection's write side.
	rejections := make(chan core.Notification, 4)

	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var n core.Notification
			ok := true
			select {
			case n, ok = <-sub.C():
			case n = <-rejections:
			case <-quit:
				return
			}
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(n); err != nil {
				s.logger.Debug().Err(err).Msg("websocket write failed")
				return
			}
		}
	}()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if kind != websocket.TextMessage {
			continue
		}

		cmd, err := parseAction(data, s.quality)
		if err != nil {
			s.logger.Debug().Err(err).Msg("rejected websocket action")
			select {
			case rejections <- core.Notification{Error: &core.ErrorNotice{Message: err.Error()}}:
			default:
			}
			continue
		}
		if err := s.controls.Submit(r.Context(), cmd); err != nil {
			break
		}
	}

	close(quit)
	conn.Close()
	<-done
	s.logger.Debug().Str("remote", r.RemoteAddr).Msg("websocket disconnected")
}
