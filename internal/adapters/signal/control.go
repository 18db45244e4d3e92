package signal

import (
	"encoding/json"

	"github.com/dkeye/Sketch/internal/core"
)

func (ctl *Controller) handlePing(conn core.SignalConnection, data []byte) {
	var p struct {
		Type      string `json:"type"`
		Timestamp int64  `json:"timestamp"`
	}
	// Echo back whatever timestamp parsed; a bad payload still pongs.
	_ = json.Unmarshal(data, &p)

	ctl.sendJSON(conn, struct {
		Type      string `json:"type"`
		Timestamp int64  `json:"timestamp"`
	}{"pong", p.Timestamp})
}
