package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"screen-region-select/src/config"
	"screen-region-select/src/geometry"
)

// Report is one committed selection as handed to consumers.
type Report struct {
	ID          string         `json:"id" yaml:"id"`
	Min         geometry.Point `json:"min" yaml:"min"`
	Max         geometry.Point `json:"max" yaml:"max"`
	X           int            `json:"x" yaml:"x"`
	Y           int            `json:"y" yaml:"y"`
	Width       int            `json:"width" yaml:"width"`
	Height      int            `json:"height" yaml:"height"`
	CommittedAt time.Time      `json:"committed_at" yaml:"committed_at"`
}

// NewReport builds a report for a committed rect.
func NewReport(r geometry.Rect, now time.Time) Report {
	b := r.Bounds()
	return Report{
		ID:          uuid.NewString(),
		Min:         r.Min,
		Max:         r.Max,
		X:           b.Min.X,
		Y:           b.Min.Y,
		Width:       b.Dx(),
		Height:      b.Dy(),
		CommittedAt: now.UTC(),
	}
}

// Rect returns the normalized rect carried by the report.
func (r Report) Rect() geometry.Rect {
	return geometry.Rect{Min: r.Min, Max: r.Max}
}

// Text is the compact "x,y,w,h" form used for the clipboard and tooltips.
func (r Report) Text() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.Width, r.Height)
}

// Encode renders the report in one of the configured output formats.
func (r Report) Encode(format string) ([]byte, error) {
	switch format {
	case config.FormatJSON, "":
		return json.Marshal(r)
	case config.FormatYAML:
		return yaml.Marshal(r)
	case config.FormatText:
		return []byte(r.Text()), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidFormat, format)
	}
}
