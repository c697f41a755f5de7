package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/trackstitch/internal/tracks"
)

// Fixture is a recorded tracker output: per-frame observations labelled
// with the tracker's own track identity.
type Fixture struct {
	Name   string      `json:"name"`
	Frames []FrameData `json:"frames"`
}

// FrameData holds the observations of one frame.
type FrameData struct {
	Frame        tracks.FrameID `json:"frame"`
	Observations []Observation  `json:"observations"`
}

// Observation is one labelled feature.
type Observation struct {
	Label      string    `json:"label"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Scale      float64   `json:"scale,omitempty"`
	Angle      float64   `json:"angle,omitempty"`
	Descriptor []float64 `json:"descriptor"`
}

// LoadFixture reads and validates a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("fixture file must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	var fx Fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse fixture JSON: %w", err)
	}
	if fx.Name == "" {
		fx.Name = filepath.Base(cleanPath)
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// Validate checks that frames are numbered 1, 2, 3, ... and that no
// label appears twice in one frame.
func (fx *Fixture) Validate() error {
	for i, fr := range fx.Frames {
		if want := tracks.FrameID(i + 1); fr.Frame != want {
			return fmt.Errorf("frame %d: expected frame number %d", fr.Frame, want)
		}
		seen := make(map[string]struct{}, len(fr.Observations))
		for _, obs := range fr.Observations {
			if obs.Label == "" {
				return fmt.Errorf("frame %d: observation without label", fr.Frame)
			}
			if _, dup := seen[obs.Label]; dup {
				return fmt.Errorf("frame %d: duplicate label %q", fr.Frame, obs.Label)
			}
			seen[obs.Label] = struct{}{}
		}
	}
	return nil
}
