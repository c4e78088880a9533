package emergency

import (
	"time"
)

// Severity is the triage tier assigned at intake. It is an ordered domain
// concept, not a numeric scale, and never changes inside this core.
type Severity string

const (
	SeverityRouge Severity = "ROUGE" // immediately life-threatening
	SeverityJaune Severity = "JAUNE" // urgent, not vital
	SeverityVert  Severity = "VERT"  // non-urgent
	SeverityGris  Severity = "GRIS"  // does not require emergency care
)

// Valid reports whether s is one of the four triage tiers.
func (s Severity) Valid() bool {
	switch s {
	case SeverityRouge, SeverityJaune, SeverityVert, SeverityGris:
		return true
	}
	return false
}

// PatientStatus is the tagged state of a patient's journey through the
// department. Transitions are governed by the table in transition.go.
type PatientStatus string

const (
	StatusAwaitingTriage          PatientStatus = "awaiting_triage"
	StatusInWaitingRoom           PatientStatus = "in_waiting_room"
	StatusInTransitToConsultation PatientStatus = "in_transit_to_consultation"
	StatusInConsultation          PatientStatus = "in_consultation"
	StatusAwaitingExitTransport   PatientStatus = "awaiting_exit_transport"
	StatusInTransitToUnit         PatientStatus = "in_transit_to_unit"
	StatusDischarged              PatientStatus = "discharged"
)

// TargetUnit names a post-consultation destination. UnitHome is the
// discharge-home pseudo-destination and never maps to a CareUnit.
type TargetUnit string

const (
	UnitCriticalCare TargetUnit = "critical-care"
	UnitCardiology   TargetUnit = "cardiology"
	UnitPneumology   TargetUnit = "pneumology"
	UnitNeurology    TargetUnit = "neurology"
	UnitOrthopedics  TargetUnit = "orthopedics"
	UnitHome         TargetUnit = "home"
)

// StaffRole is the tagged role of a staff member.
type StaffRole string

const (
	RoleFixedDoctor      StaffRole = "fixed_doctor"
	RoleFixedTriageNurse StaffRole = "fixed_triage_nurse"
	RoleMobileNurse      StaffRole = "mobile_nurse"
	RoleAide             StaffRole = "aide"
)

// Mobile reports whether the role may supervise rooms and run transports.
func (r StaffRole) Mobile() bool {
	return r == RoleMobileNurse || r == RoleAide
}

// Well-known staff locations. Waiting-room ids are also valid locations.
const (
	LocationIdle         = "idle"
	LocationTriage       = "triage"
	LocationConsultation = "consultation"
)

// DestConsultation tags an in-transit staff member heading for the
// consultation slot; unit transports carry the unit name instead.
const DestConsultation = "consultation"

// Patient is owned exclusively by the State aggregate. All cross-entity
// relations are id references resolved through the aggregate's maps.
type Patient struct {
	ID              string        `json:"id"`
	GivenName       string        `json:"given_name"`
	FamilyName      string        `json:"family_name"`
	Severity        Severity      `json:"severity"`
	Symptoms        string        `json:"symptoms"`
	Age             int           `json:"age"`
	PriorConditions []string      `json:"prior_conditions,omitempty"`
	ArrivedAt       time.Time     `json:"arrived_at"`
	Status          PatientStatus `json:"status"`
	WaitingRoomID   string        `json:"waiting_room_id,omitempty"`
	TargetUnit      TargetUnit    `json:"target_unit,omitempty"`
	ConsultStart    *time.Time    `json:"consultation_start,omitempty"`
	ConsultEnd      *time.Time    `json:"consultation_end,omitempty"`
}

// WaitMinutes returns the whole minutes elapsed since arrival.
func (p *Patient) WaitMinutes(now time.Time) int {
	return int(now.Sub(p.ArrivedAt).Minutes())
}

// queueRank orders the consultation and exit-transport queues. Lower tiers
// sort first; ties break on earlier arrival. A VERT patient past the
// long-wait threshold jumps ahead of every JAUNE.
func (p *Patient) queueRank(now time.Time, longWait time.Duration) (int, time.Time) {
	waited := now.Sub(p.ArrivedAt)
	switch {
	case p.Severity == SeverityRouge:
		return 0, p.ArrivedAt
	case p.Severity == SeverityVert && waited > longWait:
		return 1, p.ArrivedAt
	case p.Severity == SeverityJaune:
		return 2, p.ArrivedAt
	case p.Severity == SeverityVert:
		return 3, p.ArrivedAt
	}
	return 4, p.ArrivedAt
}

// WaitingRoom is a capacity-bounded holding area. Patients holds weak id
// references into State.Patients; len(Patients) <= Capacity always.
type WaitingRoom struct {
	ID             string    `json:"id"`
	Capacity       int       `json:"capacity"`
	Patients       []string  `json:"patients"`
	SupervisorID   string    `json:"supervisor_id,omitempty"`
	LastSupervised time.Time `json:"last_supervised"`
}

// FreeSlots returns the remaining capacity.
func (r *WaitingRoom) FreeSlots() int {
	return r.Capacity - len(r.Patients)
}

// IsFull reports whether the room is at capacity.
func (r *WaitingRoom) IsFull() bool {
	return len(r.Patients) >= r.Capacity
}

// MinutesUnsupervised returns whole minutes since the last supervision event.
func (r *WaitingRoom) MinutesUnsupervised(now time.Time) int {
	return int(now.Sub(r.LastSupervised).Minutes())
}

func (r *WaitingRoom) removePatient(patientID string) {
	for i, id := range r.Patients {
		if id == patientID {
			r.Patients = append(r.Patients[:i], r.Patients[i+1:]...)
			return
		}
	}
}

// Consultation is the single examining slot; at most one patient occupies
// it system-wide.
type Consultation struct {
	PatientID string     `json:"patient_id,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// IsFree reports whether no patient holds the slot.
func (c *Consultation) IsFree() bool {
	return c.PatientID == ""
}

// CareUnit is a capacity-bounded specialized ward.
type CareUnit struct {
	Name     TargetUnit `json:"name"`
	Capacity int        `json:"capacity"`
	Patients []string   `json:"patients"`
}

// HasRoom reports whether the unit can admit one more patient.
func (u *CareUnit) HasRoom() bool {
	return len(u.Patients) < u.Capacity
}

// StaffMember is a roster entry. A FixedTriageNurse never changes location
// or availability; no staff member is simultaneously in transit and
// supervising a room.
type StaffMember struct {
	ID                 string     `json:"id"`
	Role               StaffRole  `json:"role"`
	Available          bool       `json:"available"`
	Location           string     `json:"location"`
	BusySince          *time.Time `json:"busy_since,omitempty"`
	MustReturnBy       *time.Time `json:"must_return_by,omitempty"`
	InTransit          bool       `json:"in_transit"`
	TransportPatientID string     `json:"transport_patient_id,omitempty"`
	Destination        string     `json:"destination,omitempty"`
	ExpectedArrival    *time.Time `json:"expected_arrival,omitempty"`
	SupervisedRoomID   string     `json:"supervised_room_id,omitempty"`
}

// MayLeave reports whether the staff member can leave their post: the triage
// nurse never may, everyone else must be available, not in transit, and past
// the minimum dwell since they last went busy. The dwell lock prevents
// thrashing reassignment of a staff member the instant they arrive somewhere.
func (s *StaffMember) MayLeave(now time.Time, minDwell time.Duration) bool {
	if s.Role == RoleFixedTriageNurse {
		return false
	}
	if !s.Available || s.InTransit {
		return false
	}
	if s.BusySince != nil && now.Sub(*s.BusySince) < minDwell {
		return false
	}
	return true
}

// ReturnWindowMinutes returns the whole minutes left before an aide must be
// back on the floor. The second result is false for any staff member without
// an absence deadline.
func (s *StaffMember) ReturnWindowMinutes(now time.Time) (int, bool) {
	if s.Role != RoleAide || s.MustReturnBy == nil {
		return 0, false
	}
	left := int(s.MustReturnBy.Sub(now).Minutes())
	if left < 0 {
		left = 0
	}
	return left, true
}
