package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
)

type strokeEnvelope struct {
	Type   string        `json:"type"`
	Stroke domain.Stroke `json:"stroke"`
}

type historyEnvelope struct {
	Type    string          `json:"type"`
	Strokes []domain.Stroke `json:"strokes"`
}

func (ctl *Controller) handleDraw(sid core.SessionID, data []byte) {
	var p strokeEnvelope
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad draw payload")
		return
	}
	if p.Stroke.ID == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("fragment without id dropped")
		return
	}

	room, ok := ctl.Orch.RoomOf(sid)
	if !ok {
		return
	}

	// Live relay first, then merge; peers see fragments in arrival order.
	ctl.broadcastFrom(room, sid, strokeEnvelope{"draw-line", p.Stroke})
	room.Board().ApplyFragment(p.Stroke)
}

func (ctl *Controller) handleUndo(sid core.SessionID) {
	room, ok := ctl.Orch.RoomOf(sid)
	if !ok {
		return
	}
	history, changed := room.Board().Undo()
	if !changed {
		// Nothing finished to undo; no broadcast.
		return
	}
	ctl.broadcastAll(room, historyEnvelope{"undo", history})
}

func (ctl *Controller) handleRedo(sid core.SessionID) {
	room, ok := ctl.Orch.RoomOf(sid)
	if !ok {
		return
	}
	history, changed := room.Board().Redo()
	if !changed {
		return
	}
	ctl.broadcastAll(room, historyEnvelope{"redo", history})
}

func (ctl *Controller) handleClear(sid core.SessionID) {
	room, ok := ctl.Orch.RoomOf(sid)
	if !ok {
		return
	}
	room.Board().Clear()
	ctl.broadcastAll(room, struct {
		Type string `json:"type"`
	}{"clear"})
}
