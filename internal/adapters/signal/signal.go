package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Ditoo31/Dadu-RAP/internal/app"
	"github.com/Ditoo31/Dadu-RAP/internal/core"
	"github.com/Ditoo31/Dadu-RAP/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")

	errBadPayload = errors.New("bad payload")
)

type SignalWSController struct {
	App       *app.Controller
	Rolls     *RollLimiter
	ReadLimit int64
}

func NewSignalWSController(ctl *app.Controller, rolls *RollLimiter, readLimit int64) *SignalWSController {
	return &SignalWSController{App: ctl, Rolls: rolls, ReadLimit: readLimit}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// BroadcastRoom fans a payload out to every subscriber of the room,
// players and viewers alike. Slow subscribers drop the frame.
func (ctl *SignalWSController) BroadcastRoom(code domain.RoomCode, v any) {
	for _, snap := range ctl.App.Registry.SubscribersOf(code) {
		ctl.sendJSON(snap.Conn, v)
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := domain.PlayerID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.App.Registry.BindSignal(sid, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}

func (ctl *SignalWSController) sendJSON(c core.SignalConnection, v any) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *SignalWSController) sendErr(c core.SignalConnection, op string, err error) {
	ctl.sendJSON(c, struct {
		Type  string `json:"type"`
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}{Type: op, OK: false, Error: err.Error()})
}

type stateUpdate struct {
	Type string `json:"type"`
	core.StateDTO
}

func (ctl *SignalWSController) broadcastState(state core.StateDTO) {
	ctl.BroadcastRoom(state.Code, stateUpdate{Type: "room:update", StateDTO: state})
}
