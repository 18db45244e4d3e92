// Package domain contains entities without logic, just meta-data
package domain

// Point is a 2D canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Tool names match the client protocol verbatim.
type Tool string

const (
	ToolBrush  Tool = "brush"
	ToolEraser Tool = "eraser"
	ToolRect   Tool = "rect"
	ToolCircle Tool = "circle"
	ToolText   Tool = "text"
)

// Stroke is one drawable unit: a path, a shape or a text label.
// ID is author-generated and stable; UserID is the ephemeral session
// that produced it. Path tools use Points, shape tools use the
// Start/End anchors.
type Stroke struct {
	ID         string  `json:"id"`
	UserID     string  `json:"userId"`
	Color      string  `json:"color"`
	Width      float64 `json:"width"`
	Points     []Point `json:"points"`
	IsFinished bool    `json:"isFinished"`
	Tool       Tool    `json:"tool"`
	StartPoint *Point  `json:"startPoint,omitempty"`
	EndPoint   *Point  `json:"endPoint,omitempty"`
	Text       string  `json:"text,omitempty"`
}
