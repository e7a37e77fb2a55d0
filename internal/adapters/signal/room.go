package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Ditoo31/Dadu-RAP/internal/core"
	"github.com/Ditoo31/Dadu-RAP/internal/domain"
)

type stateAck struct {
	Type  string          `json:"type"`
	OK    bool            `json:"ok"`
	Code  domain.RoomCode `json:"code"`
	State core.StateDTO   `json:"state"`
}

func (ctl *SignalWSController) handleCreate(sid domain.PlayerID, conn core.SignalConnection, data []byte) {
	type payload struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad create payload")
		ctl.sendErr(conn, "room:create", errBadPayload)
		return
	}

	state, prev, err := ctl.App.CreateRoom(sid, p.Name)
	if prev != nil {
		ctl.broadcastState(*prev)
	}
	if err != nil {
		ctl.sendErr(conn, "room:create", err)
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("code", string(state.Code)).Msg("room created")
	ctl.sendJSON(conn, stateAck{Type: "room:create", OK: true, Code: state.Code, State: state})
	ctl.broadcastState(state)
}

func (ctl *SignalWSController) handleJoin(sid domain.PlayerID, conn core.SignalConnection, data []byte) {
	type payload struct {
		Type string `json:"type"`
		Code string `json:"code"`
		Name string `json:"name"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendErr(conn, "room:join", errBadPayload)
		return
	}

	state, prev, err := ctl.App.JoinRoom(sid, p.Code, p.Name)
	if prev != nil {
		ctl.broadcastState(*prev)
	}
	if err != nil {
		ctl.sendErr(conn, "room:join", err)
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("code", string(state.Code)).Msg("joined")
	ctl.sendJSON(conn, stateAck{Type: "room:join", OK: true, Code: state.Code, State: state})
	ctl.broadcastState(state)
}

func (ctl *SignalWSController) handleView(sid domain.PlayerID, conn core.SignalConnection, data []byte) {
	type payload struct {
		Type string `json:"type"`
		Code string `json:"code"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad view payload")
		ctl.sendErr(conn, "room:view", errBadPayload)
		return
	}

	state, prev, err := ctl.App.ViewRoom(sid, p.Code)
	if prev != nil {
		ctl.broadcastState(*prev)
	}
	if err != nil {
		ctl.sendErr(conn, "room:view", err)
		return
	}
	ctl.sendJSON(conn, stateAck{Type: "room:view", OK: true, Code: state.Code, State: state})
}

// handleLeave drops the caller from its room. No ack; only the
// remaining members hear about it.
func (ctl *SignalWSController) handleLeave(sid domain.PlayerID, _ core.SignalConnection) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	state, broadcast := ctl.App.Leave(sid)
	if broadcast {
		ctl.broadcastState(state)
	}
}
