package frame

import (
	"fmt"
	"strconv"
	"strings"
)

// Rect is a region of interest in frame pixel coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// dialogueBand is the share of the frame height, measured from the bottom,
// used when no region is configured.
const dialogueBand = 0.28

func (r Rect) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.Width, r.Height)
}

// IsZero reports whether no region has been set.
func (r Rect) IsZero() bool {
	return r == Rect{}
}

// ParseRect parses "x,y,w,h". Width and height must be positive.
func ParseRect(s string) (Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("invalid region %q: expected x,y,w,h", s)
	}

	var vals [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Rect{}, fmt.Errorf("invalid region %q: %w", s, err)
		}
		vals[i] = v
	}

	r := Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
	if r.Width <= 0 || r.Height <= 0 {
		return Rect{}, fmt.Errorf("invalid region %q: width and height must be positive", s)
	}
	if r.X < 0 || r.Y < 0 {
		return Rect{}, fmt.Errorf("invalid region %q: origin must be non-negative", s)
	}
	return r, nil
}

// Clamp fits r inside a width x height frame. The result always has at least
// one pixel and never extends past the frame edge.
func (r Rect) Clamp(width, height int) Rect {
	x := max(0, min(r.X, width-1))
	y := max(0, min(r.Y, height-1))
	w := max(1, min(r.Width, width-x))
	h := max(1, min(r.Height, height-y))
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// DefaultDialogueRect covers the full width of the bottom subtitle band.
func DefaultDialogueRect(width, height int) Rect {
	h := max(1, int(float64(height)*dialogueBand))
	return Rect{X: 0, Y: height - h, Width: width, Height: h}
}
