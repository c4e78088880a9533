package emergency

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// TransportService owns the two transport timing state machines: waiting
// room -> consultation and post-consultation -> care unit, plus the rescue
// path back to a waiting room. Durations are anchored on the simulated
// clock; nothing here sleeps.
type TransportService struct {
	state    *State
	patients *PatientService
	staff    *StaffService
	log      zerolog.Logger
}

func NewTransportService(state *State, patients *PatientService, staff *StaffService, log zerolog.Logger) *TransportService {
	return &TransportService{state: state, patients: patients, staff: staff, log: log}
}

// StartToConsultation dispatches a staff member to carry an InWaitingRoom
// patient to the free consultation slot. The slot is reserved immediately;
// the status flips to InConsultation when the transport is finalized.
// Returns the expected arrival time.
func (t *TransportService) StartToConsultation(patientID, staffID string) (time.Time, error) {
	p := t.state.Patient(patientID)
	if p == nil {
		return time.Time{}, fmt.Errorf("patient %q: %w", patientID, ErrNotFound)
	}
	m := t.state.StaffByID(staffID)
	if m == nil {
		return time.Time{}, fmt.Errorf("staff %q: %w", staffID, ErrNotFound)
	}
	if p.Status != StatusInWaitingRoom {
		return time.Time{}, fmt.Errorf("patient %q is %s: %w", patientID, p.Status, ErrInvalidTransition)
	}
	if !t.state.Consultation.IsFree() {
		return time.Time{}, fmt.Errorf("consultation occupied by %q: %w",
			t.state.Consultation.PatientID, ErrResourceUnavailable)
	}
	if !m.MayLeave(t.state.Now, t.state.Settings.MinDwell) {
		return time.Time{}, fmt.Errorf("staff %q cannot leave their post: %w", staffID, ErrResourceUnavailable)
	}

	t.patients.removeFromWaitingRoom(p)
	p.Status = StatusInTransitToConsultation
	t.state.Consultation.PatientID = patientID

	arrival := t.state.Now.Add(t.state.Settings.ConsultTransport)
	t.dispatch(m, patientID, DestConsultation, arrival)

	t.log.Info().
		Str("patient_id", patientID).
		Str("staff_id", staffID).
		Time("expected_arrival", arrival).
		Msg("transport to consultation started")
	return arrival, nil
}

// FinalizeToConsultation completes the arrival: the transporter is released
// and the consultation officially starts. A patient in any other status is
// left untouched.
func (t *TransportService) FinalizeToConsultation(patientID string) error {
	p := t.state.Patient(patientID)
	if p == nil {
		return fmt.Errorf("patient %q: %w", patientID, ErrNotFound)
	}
	if p.Status != StatusInTransitToConsultation {
		return fmt.Errorf("patient %q is %s: %w", patientID, p.Status, ErrInvalidTransition)
	}

	if carrier := t.state.transporterOf(patientID); carrier != nil {
		t.staff.Release(carrier.ID)
	}

	now := t.state.Now
	p.Status = StatusInConsultation
	p.ConsultStart = &now
	t.state.Consultation.PatientID = patientID
	t.state.Consultation.StartedAt = &now

	t.log.Info().Str("patient_id", patientID).Msg("patient in consultation")
	return nil
}

// EndConsultation records the medical decision and frees the slot. A home
// destination discharges immediately; any ward destination parks the
// patient in the exit-transport queue. ROUGE may never go home, GRIS may
// only go home, and a ward with no free bed is refused at decision time.
func (t *TransportService) EndConsultation(patientID string, target TargetUnit) error {
	p := t.state.Patient(patientID)
	if p == nil {
		return fmt.Errorf("patient %q: %w", patientID, ErrNotFound)
	}
	if p.Status != StatusInConsultation || t.state.Consultation.PatientID != patientID {
		return fmt.Errorf("patient %q is not in consultation: %w", patientID, ErrInvalidTransition)
	}
	if p.Severity == SeverityRouge && target == UnitHome {
		return fmt.Errorf("ROUGE patient %q may not be discharged home: %w", patientID, ErrPolicyViolation)
	}
	if p.Severity == SeverityGris && target != UnitHome {
		return fmt.Errorf("GRIS patient %q must be discharged home: %w", patientID, ErrPolicyViolation)
	}
	if target != UnitHome {
		unit := t.state.Unit(target)
		if unit == nil {
			return fmt.Errorf("care unit %q: %w", target, ErrNotFound)
		}
		// Checked again on dispatch and arrival; refusing a full unit here
		// lets the doctor pick another destination instead of parking the
		// patient in a queue that can only bounce.
		if !unit.HasRoom() {
			return fmt.Errorf("care unit %q full (%d/%d): %w",
				unit.Name, len(unit.Patients), unit.Capacity, ErrResourceUnavailable)
		}
	}

	now := t.state.Now
	p.TargetUnit = target
	p.ConsultEnd = &now
	t.state.Consultation.PatientID = ""
	t.state.Consultation.StartedAt = nil

	if target == UnitHome {
		p.Status = StatusDischarged
	} else {
		p.Status = StatusAwaitingExitTransport
	}

	t.log.Info().
		Str("patient_id", patientID).
		Str("destination", string(target)).
		Str("status", string(p.Status)).
		Msg("consultation ended")
	return nil
}

// StartToUnit dispatches a mobile nurse or aide to carry an
// AwaitingExitTransport patient to their target unit. ROUGE patients bound
// for critical care ride the express duration; every other pair takes the
// standard one and must leave MobileStaffReserve mobile staff free, or the
// caller falls back to the rescue path. Returns the expected arrival time.
func (t *TransportService) StartToUnit(patientID, staffID string) (time.Time, error) {
	p := t.state.Patient(patientID)
	if p == nil {
		return time.Time{}, fmt.Errorf("patient %q: %w", patientID, ErrNotFound)
	}
	m := t.state.StaffByID(staffID)
	if m == nil {
		return time.Time{}, fmt.Errorf("staff %q: %w", staffID, ErrNotFound)
	}
	if p.Status != StatusAwaitingExitTransport {
		return time.Time{}, fmt.Errorf("patient %q is %s: %w", patientID, p.Status, ErrInvalidTransition)
	}
	if p.TargetUnit == "" || p.TargetUnit == UnitHome {
		return time.Time{}, fmt.Errorf("patient %q has no target unit: %w", patientID, ErrPolicyViolation)
	}
	unit := t.state.Unit(p.TargetUnit)
	if unit == nil {
		return time.Time{}, fmt.Errorf("care unit %q: %w", p.TargetUnit, ErrNotFound)
	}
	if !unit.HasRoom() {
		return time.Time{}, fmt.Errorf("care unit %q full (%d/%d): %w",
			unit.Name, len(unit.Patients), unit.Capacity, ErrResourceUnavailable)
	}
	if !m.Role.Mobile() {
		return time.Time{}, fmt.Errorf("staff %q (%s) may not run unit transports: %w",
			staffID, m.Role, ErrPolicyViolation)
	}
	if !m.MayLeave(t.state.Now, t.state.Settings.MinDwell) {
		return time.Time{}, fmt.Errorf("staff %q cannot leave their post: %w", staffID, ErrResourceUnavailable)
	}

	duration := t.state.Settings.UnitTransportStandard
	if p.Severity == SeverityRouge && p.TargetUnit == UnitCriticalCare {
		duration = t.state.Settings.UnitTransportExpress
	}
	if duration == t.state.Settings.UnitTransportStandard {
		if free := t.freeMobileStaffExcept(staffID); free < t.state.Settings.MobileStaffReserve {
			return time.Time{}, fmt.Errorf(
				"dispatch would leave %d mobile staff free, reserve is %d: %w",
				free, t.state.Settings.MobileStaffReserve, ErrResourceUnavailable)
		}
	}

	t.patients.removeFromWaitingRoom(p)
	p.Status = StatusInTransitToUnit

	arrival := t.state.Now.Add(duration)
	t.dispatch(m, patientID, string(p.TargetUnit), arrival)
	if m.Role == RoleAide {
		deadline := t.state.Now.Add(t.state.Settings.AideAbsenceCap)
		m.MustReturnBy = &deadline
	}

	t.log.Info().
		Str("patient_id", patientID).
		Str("staff_id", staffID).
		Str("unit", string(p.TargetUnit)).
		Dur("duration", duration).
		Time("expected_arrival", arrival).
		Msg("transport to unit started")
	return arrival, nil
}

// FinalizeToUnit completes the ward admission: the patient joins the unit's
// occupant set, reaches the terminal status, and the transporter is
// released.
func (t *TransportService) FinalizeToUnit(patientID string) error {
	p := t.state.Patient(patientID)
	if p == nil {
		return fmt.Errorf("patient %q: %w", patientID, ErrNotFound)
	}
	if p.Status != StatusInTransitToUnit {
		return fmt.Errorf("patient %q is %s: %w", patientID, p.Status, ErrInvalidTransition)
	}
	unit := t.state.Unit(p.TargetUnit)
	if unit == nil {
		return fmt.Errorf("care unit %q: %w", p.TargetUnit, ErrNotFound)
	}
	if !unit.HasRoom() {
		return fmt.Errorf("care unit %q full on arrival: %w", unit.Name, ErrResourceUnavailable)
	}

	unit.Patients = append(unit.Patients, patientID)
	p.Status = StatusDischarged

	if carrier := t.state.transporterOf(patientID); carrier != nil {
		t.staff.Release(carrier.ID)
	}

	t.log.Info().
		Str("patient_id", patientID).
		Str("unit", string(unit.Name)).
		Msg("patient admitted to unit")
	return nil
}

// ReturnToWaitingRoom is the rescue path: when the target unit is saturated
// or no transporter qualifies, a mobile nurse walks the patient back to a
// waiting room. The patient re-enters the room immediately; the nurse rides
// an escort dispatch for ReturnTransport and is released by the tick that
// passes it. Room selection follows the admission rule. Returns the room id.
func (t *TransportService) ReturnToWaitingRoom(patientID, staffID, roomID string) (string, error) {
	p := t.state.Patient(patientID)
	if p == nil {
		return "", fmt.Errorf("patient %q: %w", patientID, ErrNotFound)
	}
	if p.Status != StatusAwaitingExitTransport {
		return "", fmt.Errorf("patient %q is %s: %w", patientID, p.Status, ErrInvalidTransition)
	}
	m := t.state.StaffByID(staffID)
	if m == nil {
		return "", fmt.Errorf("staff %q: %w", staffID, ErrNotFound)
	}
	if m.Role != RoleMobileNurse {
		return "", fmt.Errorf("staff %q (%s): only a mobile nurse may return a patient: %w",
			staffID, m.Role, ErrPolicyViolation)
	}
	if !m.MayLeave(t.state.Now, t.state.Settings.MinDwell) {
		return "", fmt.Errorf("staff %q cannot leave their post: %w", staffID, ErrResourceUnavailable)
	}

	var room *WaitingRoom
	if roomID == "" {
		room = t.state.selectRoom()
		if room == nil {
			return "", fmt.Errorf("all waiting rooms full: %w", ErrResourceUnavailable)
		}
	} else {
		room = t.state.Room(roomID)
		if room == nil {
			return "", fmt.Errorf("waiting room %q: %w", roomID, ErrNotFound)
		}
		if room.IsFull() {
			return "", fmt.Errorf("waiting room %q full: %w", roomID, ErrResourceUnavailable)
		}
	}

	room.Patients = append(room.Patients, patientID)
	p.Status = StatusInWaitingRoom
	p.WaitingRoomID = room.ID

	// The patient already holds their room slot, so the escort carries no
	// transport-patient reference; the tick just releases the nurse.
	arrival := t.state.Now.Add(t.state.Settings.ReturnTransport)
	t.dispatch(m, "", room.ID, arrival)

	t.log.Info().
		Str("patient_id", patientID).
		Str("staff_id", staffID).
		Str("room_id", room.ID).
		Msg("patient returned to waiting room")
	return room.ID, nil
}

// freeMobileStaffExcept counts the mobile staff that could still leave if
// the named member departs.
func (t *TransportService) freeMobileStaffExcept(staffID string) int {
	n := 0
	for _, m := range t.state.Staff {
		if m.ID == staffID || !m.Role.Mobile() {
			continue
		}
		if m.MayLeave(t.state.Now, t.state.Settings.MinDwell) {
			n++
		}
	}
	return n
}

// dispatch marks the staff member in transit toward dest. Supervision is
// dropped first; a staff member never rides while a room counts them as
// supervisor.
func (t *TransportService) dispatch(m *StaffMember, patientID, dest string, arrival time.Time) {
	t.staff.clearSupervision(m)
	now := t.state.Now
	m.InTransit = true
	m.Available = false
	m.TransportPatientID = patientID
	m.Destination = dest
	m.ExpectedArrival = &arrival
	m.BusySince = &now
}
