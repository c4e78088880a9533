package emergency

import (
	"testing"
	"time"
)

var testStart = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func TestWaitMinutes(t *testing.T) {
	p := &Patient{ID: "P1", ArrivedAt: testStart}
	if got := p.WaitMinutes(testStart.Add(90 * time.Minute)); got != 90 {
		t.Errorf("WaitMinutes = %d, want 90", got)
	}
	if got := p.WaitMinutes(testStart.Add(30 * time.Second)); got != 0 {
		t.Errorf("WaitMinutes = %d, want 0 for sub-minute wait", got)
	}
}

func TestPriorityOrderingLaw(t *testing.T) {
	state := NewDefaultState(testStart)
	state.Now = testStart.Add(400 * time.Minute)

	add := func(id string, sev Severity, arrivedOffset time.Duration) {
		state.Patients[id] = &Patient{
			ID:        id,
			Severity:  sev,
			ArrivedAt: testStart.Add(arrivedOffset),
			Status:    StatusInWaitingRoom,
		}
	}
	add("gris", SeverityGris, 0)
	add("jaune-early", SeverityJaune, 0)
	add("jaune-late", SeverityJaune, 10*time.Minute)
	add("vert-long", SeverityVert, 0)                // waited 400 min, jumps JAUNE
	add("vert-fresh", SeverityVert, 390*time.Minute) // waited 10 min
	add("rouge", SeverityRouge, 300*time.Minute)

	queue := state.ConsultationQueue()
	want := []string{"rouge", "vert-long", "jaune-early", "jaune-late", "vert-fresh", "gris"}
	if len(queue) != len(want) {
		t.Fatalf("queue length = %d, want %d", len(queue), len(want))
	}
	for i, id := range want {
		if queue[i].ID != id {
			t.Errorf("queue[%d] = %s, want %s", i, queue[i].ID, id)
		}
	}
}

func TestMayLeave_FixedTriageNurseNever(t *testing.T) {
	nurse := &StaffMember{ID: "triage-nurse-1", Role: RoleFixedTriageNurse, Available: true, Location: LocationTriage}
	if nurse.MayLeave(testStart, 0) {
		t.Error("fixed triage nurse must never leave")
	}
}

func TestMayLeave_DwellLock(t *testing.T) {
	busy := testStart
	m := &StaffMember{ID: "nurse-1", Role: RoleMobileNurse, Available: true, BusySince: &busy}

	if m.MayLeave(testStart.Add(3*time.Minute), 5*time.Minute) {
		t.Error("staff inside the dwell window must not leave")
	}
	if !m.MayLeave(testStart.Add(5*time.Minute), 5*time.Minute) {
		t.Error("staff past the dwell window should be free to leave")
	}
}

func TestMayLeave_InTransitOrUnavailable(t *testing.T) {
	m := &StaffMember{ID: "aide-1", Role: RoleAide, Available: true, InTransit: true}
	if m.MayLeave(testStart, 0) {
		t.Error("in-transit staff must not leave")
	}
	m = &StaffMember{ID: "aide-1", Role: RoleAide, Available: false}
	if m.MayLeave(testStart, 0) {
		t.Error("unavailable staff must not leave")
	}
}

func TestReturnWindowMinutes(t *testing.T) {
	deadline := testStart.Add(12 * time.Minute)
	aide := &StaffMember{ID: "aide-1", Role: RoleAide, MustReturnBy: &deadline}

	left, ok := aide.ReturnWindowMinutes(testStart)
	if !ok || left != 12 {
		t.Errorf("ReturnWindowMinutes = %d, %v; want 12, true", left, ok)
	}
	left, ok = aide.ReturnWindowMinutes(testStart.Add(20 * time.Minute))
	if !ok || left != 0 {
		t.Errorf("ReturnWindowMinutes past deadline = %d, %v; want 0, true", left, ok)
	}

	nurse := &StaffMember{ID: "nurse-1", Role: RoleMobileNurse, MustReturnBy: &deadline}
	if _, ok := nurse.ReturnWindowMinutes(testStart); ok {
		t.Error("only aides carry an absence window")
	}
}

func TestRoomHelpers(t *testing.T) {
	room := &WaitingRoom{ID: "waiting-room-1", Capacity: 2}
	if room.IsFull() || room.FreeSlots() != 2 {
		t.Errorf("empty room: IsFull=%v FreeSlots=%d", room.IsFull(), room.FreeSlots())
	}
	room.Patients = []string{"P1", "P2"}
	if !room.IsFull() || room.FreeSlots() != 0 {
		t.Errorf("full room: IsFull=%v FreeSlots=%d", room.IsFull(), room.FreeSlots())
	}
	room.removePatient("P1")
	if len(room.Patients) != 1 || room.Patients[0] != "P2" {
		t.Errorf("removePatient left %v", room.Patients)
	}
}

func TestSeverityValid(t *testing.T) {
	for _, s := range []Severity{SeverityRouge, SeverityJaune, SeverityVert, SeverityGris} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Severity("BLEU").Valid() {
		t.Error("unknown severity accepted")
	}
}
