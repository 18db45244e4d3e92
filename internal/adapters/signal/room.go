package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
)

func (ctl *Controller) handleJoin(
	sid core.SessionID,
	conn core.SignalConnection,
	data []byte,
) {
	type joinPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}
	roomID := domain.RoomID(p.Room)
	if roomID == "" {
		roomID = domain.RoomID(ctl.Cfg.DefaultRoom)
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(roomID)).Msg("join")
	ctl.joinRoom(sid, conn, roomID)
}

// joinRoom switches the session's room and resyncs the joiner with the
// authoritative history snapshot. Old-room and new-room counts are
// independent broadcasts.
func (ctl *Controller) joinRoom(
	sid core.SessionID,
	conn core.SignalConnection,
	roomID domain.RoomID,
) {
	prev, next, ok := ctl.Orch.Join(sid, roomID)
	if !ok {
		// Stale session: the event raced a disconnect.
		return
	}

	ctl.sendJSON(conn, struct {
		Type    string          `json:"type"`
		Strokes []domain.Stroke `json:"strokes"`
	}{"history", next.Board().History()})

	ctl.sendJSON(conn, struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}{"room-joined", string(roomID)})

	if prev != nil && prev != next {
		ctl.emitUserCount(prev)
	}
	ctl.emitUserCount(next)
}

// emitUserCount recomputes the room's cardinality at broadcast time.
func (ctl *Controller) emitUserCount(room core.RoomService) {
	ctl.broadcastAll(room, struct {
		Type  string `json:"type"`
		Count int    `json:"count"`
	}{"user-count", room.MemberCount()})
}
