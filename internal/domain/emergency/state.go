package emergency

import (
	"fmt"
	"sort"
	"time"
)

// Settings carries every tunable of the flow engine. Zero values are not
// meaningful; start from DefaultSettings.
type Settings struct {
	ConsultTransport      time.Duration // waiting room -> consultation move
	UnitTransportExpress  time.Duration // ROUGE -> critical care
	UnitTransportStandard time.Duration // every other severity/unit pair
	ReturnTransport       time.Duration // rescue move back to a waiting room
	MinDwell              time.Duration // staff minimum-occupancy lock
	SupervisionLapse      time.Duration // room safety threshold
	LongWait              time.Duration // VERT priority jump / long-wait alert
	AideAbsenceCap        time.Duration // aide must-return-by window
	AideReturnWarning     time.Duration // alert margin on the absence cap
	MobileStaffReserve    int           // mobile staff kept free for standard unit transports
}

// DefaultSettings returns the department's standing policy values.
func DefaultSettings() Settings {
	return Settings{
		ConsultTransport:      5 * time.Minute,
		UnitTransportExpress:  5 * time.Minute,
		UnitTransportStandard: 45 * time.Minute,
		ReturnTransport:       5 * time.Minute,
		MinDwell:              5 * time.Minute,
		SupervisionLapse:      15 * time.Minute,
		LongWait:              360 * time.Minute,
		AideAbsenceCap:        60 * time.Minute,
		AideReturnWarning:     10 * time.Minute,
		MobileStaffReserve:    2,
	}
}

// UnitSpec declares one care unit at startup.
type UnitSpec struct {
	Name     TargetUnit
	Capacity int
}

// DefaultUnits is the standing ward layout.
func DefaultUnits() []UnitSpec {
	return []UnitSpec{
		{Name: UnitCriticalCare, Capacity: 5},
		{Name: UnitCardiology, Capacity: 10},
		{Name: UnitPneumology, Capacity: 5},
		{Name: UnitNeurology, Capacity: 8},
		{Name: UnitOrthopedics, Capacity: 7},
	}
}

// DefaultRoomCapacities is the standing waiting-room layout, in declaration
// order.
func DefaultRoomCapacities() []int {
	return []int{5, 10, 5}
}

// DefaultRoster builds the staff roster: one fixed doctor in consultation,
// one fixed triage nurse, then the requested numbers of mobile nurses and
// aides starting in the idle pool.
func DefaultRoster(mobileNurses, aides int) []*StaffMember {
	roster := []*StaffMember{
		{ID: "doctor-1", Role: RoleFixedDoctor, Available: true, Location: LocationConsultation},
		{ID: "triage-nurse-1", Role: RoleFixedTriageNurse, Available: true, Location: LocationTriage},
	}
	for i := 1; i <= mobileNurses; i++ {
		roster = append(roster, &StaffMember{
			ID: fmt.Sprintf("nurse-%d", i), Role: RoleMobileNurse, Available: true, Location: LocationIdle,
		})
	}
	for i := 1; i <= aides; i++ {
		roster = append(roster, &StaffMember{
			ID: fmt.Sprintf("aide-%d", i), Role: RoleAide, Available: true, Location: LocationIdle,
		})
	}
	return roster
}

// State is the aggregate root: the simulated clock plus every entity in the
// department. All mutation goes through the Controller; other components
// hold only id references into these collections.
type State struct {
	Settings     Settings
	Now          time.Time
	Rooms        []*WaitingRoom
	Consultation *Consultation
	Units        []*CareUnit
	Staff        []*StaffMember
	Patients     map[string]*Patient
}

// NewState builds the aggregate at the given simulated start time. Rooms are
// numbered in declaration order; every room starts supervised-as-of start so
// lapse clocks begin at zero.
func NewState(start time.Time, settings Settings, roomCapacities []int, units []UnitSpec, roster []*StaffMember) *State {
	st := &State{
		Settings:     settings,
		Now:          start,
		Consultation: &Consultation{},
		Patients:     make(map[string]*Patient),
		Staff:        roster,
	}
	for i, capacity := range roomCapacities {
		st.Rooms = append(st.Rooms, &WaitingRoom{
			ID:             fmt.Sprintf("waiting-room-%d", i+1),
			Capacity:       capacity,
			LastSupervised: start,
		})
	}
	for _, u := range units {
		st.Units = append(st.Units, &CareUnit{Name: u.Name, Capacity: u.Capacity})
	}
	return st
}

// NewDefaultState builds a State with the standing layout and policy.
func NewDefaultState(start time.Time) *State {
	return NewState(start, DefaultSettings(), DefaultRoomCapacities(), DefaultUnits(), DefaultRoster(2, 2))
}

// Patient returns the patient with the given id, or nil.
func (st *State) Patient(id string) *Patient {
	return st.Patients[id]
}

// Room returns the waiting room with the given id, or nil.
func (st *State) Room(id string) *WaitingRoom {
	for _, r := range st.Rooms {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Unit returns the care unit with the given name, or nil.
func (st *State) Unit(name TargetUnit) *CareUnit {
	for _, u := range st.Units {
		if u.Name == name {
			return u
		}
	}
	return nil
}

// StaffByID returns the roster entry with the given id, or nil.
func (st *State) StaffByID(id string) *StaffMember {
	for _, s := range st.Staff {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// transporterOf returns the staff member currently carrying the patient.
func (st *State) transporterOf(patientID string) *StaffMember {
	for _, s := range st.Staff {
		if s.InTransit && s.TransportPatientID == patientID {
			return s
		}
	}
	return nil
}

// queueByStatus returns the patients in the given status sorted by the
// priority function, recomputed fresh from current statuses on every call.
func (st *State) queueByStatus(status PatientStatus) []*Patient {
	var queue []*Patient
	for _, p := range st.Patients {
		if p.Status == status {
			queue = append(queue, p)
		}
	}
	sort.Slice(queue, func(i, j int) bool {
		ti, ai := queue[i].queueRank(st.Now, st.Settings.LongWait)
		tj, aj := queue[j].queueRank(st.Now, st.Settings.LongWait)
		if ti != tj {
			return ti < tj
		}
		if !ai.Equal(aj) {
			return ai.Before(aj)
		}
		return queue[i].ID < queue[j].ID
	})
	return queue
}

// ConsultationQueue returns the InWaitingRoom patients by priority.
func (st *State) ConsultationQueue() []*Patient {
	return st.queueByStatus(StatusInWaitingRoom)
}

// ExitTransportQueue returns the AwaitingExitTransport patients by priority.
func (st *State) ExitTransportQueue() []*Patient {
	return st.queueByStatus(StatusAwaitingExitTransport)
}

// selectRoom picks the non-full waiting room with the most free capacity,
// ties broken by declaration order. Returns nil when every room is full.
func (st *State) selectRoom() *WaitingRoom {
	var best *WaitingRoom
	for _, r := range st.Rooms {
		if r.IsFull() {
			continue
		}
		if best == nil || r.FreeSlots() > best.FreeSlots() {
			best = r
		}
	}
	return best
}
