// Package scenario drives the emergency flow engine from a declarative YAML
// file: a named sequence of steps applied through the Controller, with time
// advanced explicitly by tick steps. It is the deterministic replacement for
// an interactive operator.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/edflow/edflow/internal/domain/emergency"
)

// Scenario is one loadable run.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step holds exactly one action. Load rejects steps with zero or several
// actions set.
type Step struct {
	Admit           *AdmitStep           `yaml:"admit,omitempty"`
	AssignRoom      *AssignRoomStep      `yaml:"assign_room,omitempty"`
	Supervise       *SuperviseStep       `yaml:"supervise,omitempty"`
	AutoCover       bool                 `yaml:"auto_cover,omitempty"`
	ToConsultation  *TransportStep       `yaml:"to_consultation,omitempty"`
	EndConsultation *EndConsultationStep `yaml:"end_consultation,omitempty"`
	ToUnit          *TransportStep       `yaml:"to_unit,omitempty"`
	ReturnToRoom    *ReturnStep          `yaml:"return_to_room,omitempty"`
	Discharge       string               `yaml:"discharge,omitempty"`
	Tick            int                  `yaml:"tick,omitempty"`
}

type AdmitStep struct {
	ID         string   `yaml:"id"`
	GivenName  string   `yaml:"given_name"`
	FamilyName string   `yaml:"family_name"`
	Severity   string   `yaml:"severity"`
	Symptoms   string   `yaml:"symptoms"`
	Age        int      `yaml:"age"`
	Conditions []string `yaml:"conditions,omitempty"`
}

type AssignRoomStep struct {
	Patient string `yaml:"patient"`
	Room    string `yaml:"room,omitempty"`
}

type SuperviseStep struct {
	Staff string `yaml:"staff"`
	Room  string `yaml:"room"`
}

type TransportStep struct {
	Patient string `yaml:"patient"`
	Staff   string `yaml:"staff"`
}

type EndConsultationStep struct {
	Patient string `yaml:"patient"`
	Unit    string `yaml:"unit"`
}

type ReturnStep struct {
	Patient string `yaml:"patient"`
	Staff   string `yaml:"staff"`
	Room    string `yaml:"room,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario name is required")
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", sc.Name)
	}
	for i, step := range sc.Steps {
		if n := step.actionCount(); n != 1 {
			return nil, fmt.Errorf("scenario %q step %d: want exactly one action, got %d", sc.Name, i+1, n)
		}
		if step.Admit != nil && !emergency.Severity(step.Admit.Severity).Valid() {
			return nil, fmt.Errorf("scenario %q step %d: unknown severity %q", sc.Name, i+1, step.Admit.Severity)
		}
	}
	return &sc, nil
}

func (s *Step) actionCount() int {
	n := 0
	if s.Admit != nil {
		n++
	}
	if s.AssignRoom != nil {
		n++
	}
	if s.Supervise != nil {
		n++
	}
	if s.AutoCover {
		n++
	}
	if s.ToConsultation != nil {
		n++
	}
	if s.EndConsultation != nil {
		n++
	}
	if s.ToUnit != nil {
		n++
	}
	if s.ReturnToRoom != nil {
		n++
	}
	if s.Discharge != "" {
		n++
	}
	if s.Tick > 0 {
		n++
	}
	return n
}
