package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
)

// handleCursorMove relays an ephemeral cursor position to everyone else
// in the room. Never stored, never sent back to the originator; excess
// updates are dropped by the limiter (last value wins on the client).
func (ctl *Controller) handleCursorMove(sid core.SessionID, data []byte) {
	type cursorPayload struct {
		Type string  `json:"type"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
	}
	var p cursorPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad cursor payload")
		return
	}

	if !ctl.cursor.Allow(sid) {
		return
	}

	sess, ok := ctl.Orch.Registry.GetSession(sid)
	if !ok {
		return
	}
	room, ok := ctl.Orch.RoomOf(sid)
	if !ok {
		return
	}

	ctl.broadcastFrom(room, sid, struct {
		Type string `json:"type"`
		domain.Cursor
	}{
		Type: "cursor-update",
		Cursor: domain.Cursor{
			UserID: string(sid),
			X:      p.X,
			Y:      p.Y,
			Color:  sess.Meta().Color,
		},
	})
}
