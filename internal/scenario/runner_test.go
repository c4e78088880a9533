package scenario

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/edflow/edflow/internal/config"
	"github.com/edflow/edflow/internal/domain/emergency"
)

var testStart = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestRunner(t *testing.T, strict bool) (*emergency.Controller, *Runner) {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	state, err := BuildState(cfg, testStart)
	if err != nil {
		t.Fatalf("BuildState: %v", err)
	}
	ctrl := emergency.NewController(state, zerolog.Nop())
	return ctrl, &Runner{Controller: ctrl, Log: zerolog.Nop(), Strict: strict}
}

func TestBuildState(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	state, err := BuildState(cfg, testStart)
	if err != nil {
		t.Fatalf("BuildState: %v", err)
	}

	if len(state.Rooms) != 3 || state.Rooms[1].Capacity != 10 {
		t.Errorf("rooms = %d (second capacity %d), want 3 with 10", len(state.Rooms), state.Rooms[1].Capacity)
	}
	if len(state.Units) != 5 {
		t.Errorf("units = %d, want 5", len(state.Units))
	}
	if unit := state.Unit(emergency.UnitNeurology); unit == nil || unit.Capacity != 8 {
		t.Errorf("neurology = %+v, want capacity 8", unit)
	}
	// Roster: fixed doctor, fixed triage nurse, two mobile nurses, two aides.
	if len(state.Staff) != 6 {
		t.Errorf("roster = %d members, want 6", len(state.Staff))
	}
	if state.Settings.UnitTransportStandard != 45*time.Minute {
		t.Errorf("standard transport = %v, want 45m", state.Settings.UnitTransportStandard)
	}

	cfg.RoomCapacities = "bad"
	if _, err := BuildState(cfg, testStart); err == nil {
		t.Error("unparsable room list must fail")
	}
}

func TestRun_EndToEnd(t *testing.T) {
	ctrl, runner := newTestRunner(t, true)

	sc, err := Parse([]byte(validScenario))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := runner.Run(sc); err != nil {
		t.Fatalf("Run: %v", err)
	}

	snap := ctrl.Snapshot()
	if !snap.Now.Equal(testStart.Add(10 * time.Minute)) {
		t.Errorf("clock = %v, want start+10m", snap.Now)
	}
	var p1 *emergency.Patient
	for i := range snap.Patients {
		if snap.Patients[i].ID == "P1" {
			p1 = &snap.Patients[i]
		}
	}
	if p1 == nil {
		t.Fatal("P1 missing from snapshot")
	}
	if p1.Status != emergency.StatusDischarged {
		t.Errorf("P1 status = %s, want %s", p1.Status, emergency.StatusDischarged)
	}
	for _, u := range snap.Units {
		if u.Name == emergency.UnitCriticalCare {
			if len(u.Patients) != 1 || u.Patients[0] != "P1" {
				t.Errorf("critical care occupants = %v, want [P1]", u.Patients)
			}
		}
	}
}

func TestRun_StrictAbortsOnFailure(t *testing.T) {
	_, runner := newTestRunner(t, true)

	sc := &Scenario{Name: "broken", Steps: []Step{
		{Discharge: "ghost"},
		{Tick: 5},
	}}
	err := runner.Run(sc)
	if err == nil || !strings.Contains(err.Error(), "step 1") {
		t.Errorf("strict run: got %v, want a step 1 failure", err)
	}
	if !runner.Controller.Now().Equal(testStart) {
		t.Error("aborted run must not reach the tick step")
	}
}

func TestRun_LenientContinuesPastFailure(t *testing.T) {
	ctrl, runner := newTestRunner(t, false)

	sc := &Scenario{Name: "shrug", Steps: []Step{
		{Discharge: "ghost"},
		{Tick: 15},
	}}
	if err := runner.Run(sc); err != nil {
		t.Fatalf("lenient run: %v", err)
	}
	if !ctrl.Now().Equal(testStart.Add(15 * time.Minute)) {
		t.Errorf("clock = %v, want start+15m", ctrl.Now())
	}
}
