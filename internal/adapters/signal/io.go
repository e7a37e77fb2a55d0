package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Ditoo31/Dadu-RAP/internal/core"
	"github.com/Ditoo31/Dadu-RAP/internal/domain"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, sid domain.PlayerID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		// Cleanup must finish before the connection id can be reused,
		// then the survivors hear about the departure.
		state, broadcast := ctl.App.Disconnect(sid)
		if broadcast {
			ctl.broadcastState(state)
		}
		if ctl.Rolls != nil {
			ctl.Rolls.Forget(sid)
		}
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleFrame(sid, c, data)
		}
	}
}

func (ctl *SignalWSController) handleFrame(sid domain.PlayerID, c core.SignalConnection, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "room:create":
		ctl.handleCreate(sid, c, data)
	case "room:join":
		ctl.handleJoin(sid, c, data)
	case "room:view":
		ctl.handleView(sid, c, data)
	case "room:leave":
		ctl.handleLeave(sid, c)
	case "roll":
		ctl.handleRoll(sid, c)
	case "admin:setTurn":
		ctl.handleSetTurn(sid, c, data)
	case "admin:moveUser":
		ctl.handleMoveUser(sid, c, data)
	case "admin:kick":
		ctl.handleKick(sid, c, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown frame")
	}
}

func (ctl *SignalWSController) handlePing(c core.SignalConnection) {
	ctl.sendJSON(c, struct {
		Type string `json:"type"`
	}{Type: "pong"})
}
