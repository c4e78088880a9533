package emergency

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event is one entry of the controller's in-memory log, stamped with the
// simulated clock.
type Event struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// Alerts is the safety report computed on demand from current state.
type Alerts struct {
	Supervision []string `json:"supervision"`
	LongWait    []string `json:"long_wait"`
	AideReturn  []string `json:"aide_return"`
}

// Controller is the sole caller-facing facade over the aggregate. Every
// mutation of the department goes through it; if a multi-threaded host
// embeds this core it must serialize mutating calls behind one lock, since
// no entity carries its own concurrency control.
type Controller struct {
	state     *State
	patients  *PatientService
	staff     *StaffService
	transport *TransportService
	log       zerolog.Logger
	events    []Event
}

// NewController wires the three services over a shared State.
func NewController(state *State, log zerolog.Logger) *Controller {
	patients := NewPatientService(state, log)
	staff := NewStaffService(state, log)
	return &Controller{
		state:     state,
		patients:  patients,
		staff:     staff,
		transport: NewTransportService(state, patients, staff, log),
		log:       log,
	}
}

// Now returns the current simulated clock.
func (c *Controller) Now() time.Time {
	return c.state.Now
}

// Admit registers a new patient in AwaitingTriage.
func (c *Controller) Admit(p *Patient) error {
	return c.patients.Admit(p)
}

// AdmitNew is the intake path for callers without an identity to offer: it
// mints a UUID, admits the patient, and immediately auto-assigns a waiting
// room. Returns the patient id and the room id.
func (c *Controller) AdmitNew(givenName, familyName string, severity Severity, symptoms string, age int) (string, string, error) {
	p := &Patient{
		ID:         uuid.NewString(),
		GivenName:  givenName,
		FamilyName: familyName,
		Severity:   severity,
		Symptoms:   symptoms,
		Age:        age,
	}
	if err := c.patients.Admit(p); err != nil {
		return "", "", err
	}
	roomID, err := c.patients.AssignToWaitingRoom(p.ID, "")
	if err != nil {
		return p.ID, "", err
	}
	return p.ID, roomID, nil
}

// AssignToWaitingRoom places a patient in a room; empty roomID auto-selects.
func (c *Controller) AssignToWaitingRoom(patientID, roomID string) (string, error) {
	return c.patients.AssignToWaitingRoom(patientID, roomID)
}

// TransitionStatus applies one edge of the patient state machine.
func (c *Controller) TransitionStatus(patientID string, target PatientStatus) error {
	return c.patients.TransitionStatus(patientID, target)
}

// WaitMinutes returns the patient's whole minutes since arrival.
func (c *Controller) WaitMinutes(patientID string) (int, error) {
	return c.patients.WaitMinutes(patientID)
}

// Discharge forces the terminal status (administrative override).
func (c *Controller) Discharge(patientID string) error {
	return c.patients.Discharge(patientID)
}

// FindAvailableStaff lists staff of a role that can take work; with
// excludeInTransit only those dispatchable right now.
func (c *Controller) FindAvailableStaff(role StaffRole, excludeInTransit bool) []*StaffMember {
	return c.staff.FindAvailable(role, excludeInTransit)
}

// AssignSupervision attaches a mobile staff member to a waiting room.
func (c *Controller) AssignSupervision(staffID, roomID string) error {
	return c.staff.AssignSupervision(staffID, roomID)
}

// AutoCoverUnsupervisedRooms best-effort covers every occupied room lacking
// a supervisor and records the assignments in the event log.
func (c *Controller) AutoCoverUnsupervisedRooms() []string {
	events := c.staff.AutoCoverUnsupervisedRooms()
	c.record(events...)
	return events
}

// ReleaseStaff returns a staff member to the pool.
func (c *Controller) ReleaseStaff(staffID string) {
	c.staff.Release(staffID)
}

// StartTransportToConsultation dispatches a transporter toward the
// consultation slot.
func (c *Controller) StartTransportToConsultation(patientID, staffID string) (time.Time, error) {
	return c.transport.StartToConsultation(patientID, staffID)
}

// FinalizeTransportToConsultation completes a consultation transport.
func (c *Controller) FinalizeTransportToConsultation(patientID string) error {
	return c.transport.FinalizeToConsultation(patientID)
}

// EndConsultation records the destination decision and frees the slot.
func (c *Controller) EndConsultation(patientID string, target TargetUnit) error {
	return c.transport.EndConsultation(patientID, target)
}

// StartTransportToUnit dispatches a transporter toward the patient's target
// unit.
func (c *Controller) StartTransportToUnit(patientID, staffID string) (time.Time, error) {
	return c.transport.StartToUnit(patientID, staffID)
}

// FinalizeTransportToUnit completes a unit transport.
func (c *Controller) FinalizeTransportToUnit(patientID string) error {
	return c.transport.FinalizeToUnit(patientID)
}

// ReturnToWaitingRoom runs the rescue path for a stranded exit-transport
// patient.
func (c *Controller) ReturnToWaitingRoom(patientID, staffID, roomID string) (string, error) {
	return c.transport.ReturnToWaitingRoom(patientID, staffID, roomID)
}

// Tick advances the simulated clock by the given minutes, then finalizes
// every transport and escort whose expected arrival has passed, in
// staff-roster order. This is the only place automatic state progression
// happens. The clock only moves forward: non-positive minutes are rejected
// without touching anything. Failures of individual finalizations become
// logged events rather than aborting the tick. Returns the human-readable
// events of this tick.
func (c *Controller) Tick(minutes int) []string {
	if minutes <= 0 {
		c.log.Warn().Int("minutes", minutes).Msg("tick ignored, the clock only advances")
		return nil
	}
	c.state.Now = c.state.Now.Add(time.Duration(minutes) * time.Minute)
	var events []string

	for _, m := range c.state.Staff {
		if !m.InTransit || m.ExpectedArrival == nil || c.state.Now.Before(*m.ExpectedArrival) {
			continue
		}
		pid := m.TransportPatientID
		switch {
		case m.Destination == DestConsultation:
			if err := c.transport.FinalizeToConsultation(pid); err != nil {
				events = append(events, fmt.Sprintf("transport of %s could not finalize: %v", pid, err))
				continue
			}
			events = append(events, fmt.Sprintf("patient %s arrived in consultation", pid))
		case c.state.Unit(TargetUnit(m.Destination)) != nil:
			if err := c.transport.FinalizeToUnit(pid); err != nil {
				events = append(events, fmt.Sprintf("transport of %s could not finalize: %v", pid, err))
				continue
			}
			events = append(events, fmt.Sprintf("patient %s admitted to %s", pid, m.Destination))
		default:
			// Escort back from a rescue: no patient to finalize, the nurse
			// just rejoins the pool.
			dest := m.Destination
			c.staff.Release(m.ID)
			events = append(events, fmt.Sprintf("%s back from escorting a patient to %s", m.ID, dest))
		}
	}

	c.record(events...)
	c.log.Info().
		Int("minutes", minutes).
		Time("now", c.state.Now).
		Strs("events", events).
		Msg("tick")
	return events
}

// Alerts scans the department for safety conditions: occupied rooms past
// the supervision-lapse threshold, waiting patients past the long-wait
// threshold, and aides nearly out of their absence window.
func (c *Controller) Alerts() Alerts {
	a := Alerts{}
	now := c.state.Now
	st := c.state.Settings

	for _, room := range c.state.Rooms {
		if len(room.Patients) == 0 {
			continue
		}
		if lapse := now.Sub(room.LastSupervised); lapse > st.SupervisionLapse {
			a.Supervision = append(a.Supervision,
				fmt.Sprintf("room %s unsupervised for %d min", room.ID, int(lapse.Minutes())))
		}
	}
	for _, p := range c.state.ConsultationQueue() {
		if waited := now.Sub(p.ArrivedAt); waited > st.LongWait {
			a.LongWait = append(a.LongWait,
				fmt.Sprintf("patient %s waiting %d min", p.ID, int(waited.Minutes())))
		}
	}
	for _, m := range c.state.Staff {
		left, ok := m.ReturnWindowMinutes(now)
		if ok && time.Duration(left)*time.Minute < st.AideReturnWarning {
			a.AideReturn = append(a.AideReturn,
				fmt.Sprintf("%s must return within %d min", m.ID, left))
		}
	}
	return a
}

// ConsultationQueue returns the waiting patients by priority.
func (c *Controller) ConsultationQueue() []*Patient {
	return c.state.ConsultationQueue()
}

// ExitTransportQueue returns the patients awaiting a unit transfer by
// priority.
func (c *Controller) ExitTransportQueue() []*Patient {
	return c.state.ExitTransportQueue()
}

// NextForConsultation returns the head of the consultation queue, or nil.
func (c *Controller) NextForConsultation() *Patient {
	if q := c.state.ConsultationQueue(); len(q) > 0 {
		return q[0]
	}
	return nil
}

// NextForExitTransport returns the head of the exit-transport queue, or nil.
func (c *Controller) NextForExitTransport() *Patient {
	if q := c.state.ExitTransportQueue(); len(q) > 0 {
		return q[0]
	}
	return nil
}

// Events returns the accumulated event log, oldest first.
func (c *Controller) Events() []Event {
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

func (c *Controller) record(messages ...string) {
	for _, msg := range messages {
		if strings.TrimSpace(msg) == "" {
			continue
		}
		c.events = append(c.events, Event{At: c.state.Now, Message: msg})
	}
}
