package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"famjam-cli/internal/projection"
	"famjam-cli/internal/session"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// wsIn is a client → server message.
//
//	{"type":"join","board":"smith family"}
//	{"type":"view","filter":"done","sort":"priority"}
type wsIn struct {
	Type   string `json:"type"`
	Board  string `json:"board,omitempty"`
	Filter string `json:"filter,omitempty"`
	Sort   string `json:"sort,omitempty"`
}

// wsOut is a server → client message.
type wsOut struct {
	Type  string        `json:"type"` // view|error
	View  *session.View `json:"view,omitempty"`
	Error string        `json:"error,omitempty"`
}

const wsWriteTimeout = 10 * time.Second

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		// Same-origin only.
		return strings.Contains(origin, "://"+strings.TrimSpace(r.Host))
	},
}

// handleWS gives each connection its own session controller. The Run goroutine is the only
// one that touches the controller or writes to the socket.
func (s *Server) handleWS(c echo.Context) error {
	conn, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil // Upgrade already wrote the HTTP error.
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	logger := s.logger.WithField("remote", c.RealIP())

	var writeErr error
	write := func(msg wsOut) {
		if writeErr != nil {
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			writeErr = err
			cancel()
		}
	}

	ctrl := session.New(s.cfg.Store, session.RendererFunc(func(v session.View) {
		write(wsOut{Type: "view", View: &v})
	}), session.Options{Logger: logger})

	// The reader turns client messages into controller ops; Run applies them on this goroutine.
	ops := make(chan session.Op)
	go func() {
		defer cancel()
		for {
			var msg wsIn
			if err := conn.ReadJSON(&msg); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.WithError(err).Debug("websocket read ended")
				}
				return
			}
			select {
			case ops <- wsOp(msg, write):
			case <-ctx.Done():
				return
			}
		}
	}()

	// Start idle so the client renders the placeholder immediately.
	ctrl.Join("")
	_ = ctrl.Run(ctx, ops)
	return nil
}

// wsOp maps one client message onto the controller. write is only called from the Run goroutine.
func wsOp(msg wsIn, write func(wsOut)) session.Op {
	switch msg.Type {
	case "join":
		return session.JoinOp(msg.Board)
	case "view":
		return func(c *session.Controller) {
			filter, sortBy := c.Filter(), c.Sort()
			if msg.Filter != "" {
				filter = projection.ParseFilter(msg.Filter)
			}
			if msg.Sort != "" {
				sortBy = projection.ParseSort(msg.Sort)
			}
			c.SetView(filter, sortBy)
		}
	case "rejoin":
		return (*session.Controller).Rejoin
	default:
		return func(*session.Controller) {
			write(wsOut{Type: "error", Error: "unknown message type: " + msg.Type})
		}
	}
}
