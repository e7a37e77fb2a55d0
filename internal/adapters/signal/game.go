package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Ditoo31/Dadu-RAP/internal/core"
	"github.com/Ditoo31/Dadu-RAP/internal/domain"
)

type okAck struct {
	Type string `json:"type"`
	OK   bool   `json:"ok"`
}

func (ctl *SignalWSController) handleRoll(sid domain.PlayerID, conn core.SignalConnection) {
	if ctl.Rolls != nil && !ctl.Rolls.Allow(sid) {
		ctl.sendErr(conn, "roll", core.Fail(core.ErrPreconditionFailed, "rolling too fast"))
		return
	}

	ev, state, err := ctl.App.Roll(sid)
	if err != nil {
		ctl.sendErr(conn, "roll", err)
		return
	}

	ctl.sendJSON(conn, struct {
		Type  string `json:"type"`
		OK    bool   `json:"ok"`
		Value int    `json:"value"`
	}{Type: "roll", OK: true, Value: ev.Value})

	ctl.BroadcastRoom(state.Code, struct {
		Type  string           `json:"type"`
		Value int              `json:"value"`
		By    domain.PlayerID  `json:"by"`
		Name  string           `json:"name"`
		Time  int64            `json:"time"`
		Turn  *domain.PlayerID `json:"turn"`
	}{Type: "rolled", Value: ev.Value, By: ev.By, Name: ev.Name, Time: ev.Time, Turn: state.Turn})
	ctl.broadcastState(state)
}

func (ctl *SignalWSController) handleSetTurn(sid domain.PlayerID, conn core.SignalConnection, data []byte) {
	type payload struct {
		Type     string          `json:"type"`
		PlayerID domain.PlayerID `json:"playerId"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad setTurn payload")
		ctl.sendErr(conn, "admin:setTurn", errBadPayload)
		return
	}

	state, err := ctl.App.SetTurn(sid, p.PlayerID)
	if err != nil {
		ctl.sendErr(conn, "admin:setTurn", err)
		return
	}
	ctl.sendJSON(conn, okAck{Type: "admin:setTurn", OK: true})
	ctl.broadcastState(state)
}

func (ctl *SignalWSController) handleMoveUser(sid domain.PlayerID, conn core.SignalConnection, data []byte) {
	type payload struct {
		Type      string          `json:"type"`
		PlayerID  domain.PlayerID `json:"playerId"`
		Direction string          `json:"direction"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad moveUser payload")
		ctl.sendErr(conn, "admin:moveUser", errBadPayload)
		return
	}

	state, err := ctl.App.MoveUser(sid, p.PlayerID, core.Direction(p.Direction))
	if err != nil {
		ctl.sendErr(conn, "admin:moveUser", err)
		return
	}
	ctl.sendJSON(conn, okAck{Type: "admin:moveUser", OK: true})
	ctl.broadcastState(state)
}

func (ctl *SignalWSController) handleKick(sid domain.PlayerID, conn core.SignalConnection, data []byte) {
	type payload struct {
		Type     string          `json:"type"`
		PlayerID domain.PlayerID `json:"playerId"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad kick payload")
		ctl.sendErr(conn, "admin:kick", errBadPayload)
		return
	}

	state, broadcast, err := ctl.App.Kick(sid, p.PlayerID)
	if err != nil {
		ctl.sendErr(conn, "admin:kick", err)
		return
	}

	// The target learns it was kicked before everyone else sees the new
	// roster, so it can exit its room view.
	if target, ok := ctl.App.Registry.Conn(p.PlayerID); ok {
		ctl.sendJSON(target, struct {
			Type string          `json:"type"`
			Code domain.RoomCode `json:"code"`
			By   domain.PlayerID `json:"by"`
		}{Type: "kicked", Code: state.Code, By: sid})
	}

	ctl.sendJSON(conn, okAck{Type: "admin:kick", OK: true})
	if broadcast {
		ctl.broadcastState(state)
	}
}
