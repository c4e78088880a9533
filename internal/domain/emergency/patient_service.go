package emergency

import (
	"fmt"

	"github.com/rs/zerolog"
)

// PatientService owns intake, waiting-room placement, and status-transition
// validation. It mutates entities only through the shared State aggregate.
type PatientService struct {
	state *State
	log   zerolog.Logger
}

func NewPatientService(state *State, log zerolog.Logger) *PatientService {
	return &PatientService{state: state, log: log}
}

// Admit registers a new patient. The arrival timestamp is stamped with the
// simulated clock and the status forced to AwaitingTriage regardless of what
// the caller filled in.
func (s *PatientService) Admit(p *Patient) error {
	if p.ID == "" {
		return fmt.Errorf("patient id is required: %w", ErrNotFound)
	}
	if !p.Severity.Valid() {
		return fmt.Errorf("severity %q: %w", p.Severity, ErrPolicyViolation)
	}
	if _, exists := s.state.Patients[p.ID]; exists {
		return fmt.Errorf("patient %q already admitted: %w", p.ID, ErrResourceUnavailable)
	}

	p.ArrivedAt = s.state.Now
	p.Status = StatusAwaitingTriage
	s.state.Patients[p.ID] = p

	s.log.Info().
		Str("patient_id", p.ID).
		Str("severity", string(p.Severity)).
		Int("age", p.Age).
		Msg("patient admitted")
	return nil
}

// AssignToWaitingRoom places an AwaitingTriage patient into a waiting room
// and returns the room id. An empty roomID selects the non-full room with
// the most free capacity, ties broken by declaration order.
func (s *PatientService) AssignToWaitingRoom(patientID, roomID string) (string, error) {
	p := s.state.Patient(patientID)
	if p == nil {
		return "", fmt.Errorf("patient %q: %w", patientID, ErrNotFound)
	}
	if p.Status != StatusAwaitingTriage {
		return "", fmt.Errorf("patient %q is %s: %w", patientID, p.Status, ErrInvalidTransition)
	}

	var room *WaitingRoom
	if roomID == "" {
		room = s.state.selectRoom()
		if room == nil {
			return "", fmt.Errorf("all waiting rooms full: %w", ErrResourceUnavailable)
		}
	} else {
		room = s.state.Room(roomID)
		if room == nil {
			return "", fmt.Errorf("waiting room %q: %w", roomID, ErrNotFound)
		}
		if room.IsFull() {
			return "", fmt.Errorf("waiting room %q full (%d/%d): %w",
				roomID, len(room.Patients), room.Capacity, ErrResourceUnavailable)
		}
	}

	room.Patients = append(room.Patients, patientID)
	p.Status = StatusInWaitingRoom
	p.WaitingRoomID = room.ID

	s.log.Info().
		Str("patient_id", patientID).
		Str("room_id", room.ID).
		Int("occupied", len(room.Patients)).
		Int("capacity", room.Capacity).
		Msg("patient placed in waiting room")
	return room.ID, nil
}

// TransitionStatus applies one edge of the patient state machine. It never
// partially mutates: either the edge is allowed and the status changes, or
// the patient is untouched.
func (s *PatientService) TransitionStatus(patientID string, target PatientStatus) error {
	p := s.state.Patient(patientID)
	if p == nil {
		return fmt.Errorf("patient %q: %w", patientID, ErrNotFound)
	}
	if !CanTransition(p.Status, target) {
		return fmt.Errorf("patient %q: %s -> %s: %w", patientID, p.Status, target, ErrInvalidTransition)
	}
	old := p.Status
	p.Status = target
	s.log.Debug().
		Str("patient_id", patientID).
		Str("from", string(old)).
		Str("to", string(target)).
		Msg("status transition")
	return nil
}

// WaitMinutes returns the whole minutes since the patient arrived.
func (s *PatientService) WaitMinutes(patientID string) (int, error) {
	p := s.state.Patient(patientID)
	if p == nil {
		return 0, fmt.Errorf("patient %q: %w", patientID, ErrNotFound)
	}
	return p.WaitMinutes(s.state.Now), nil
}

// Discharge is the administrative override: it forces the terminal status
// from any state, detaching the patient from their waiting room and freeing
// the consultation slot if they hold it, so a forced discharge cannot pin
// capacity. The patient record stays in the map for audit.
func (s *PatientService) Discharge(patientID string) error {
	p := s.state.Patient(patientID)
	if p == nil {
		return fmt.Errorf("patient %q: %w", patientID, ErrNotFound)
	}
	s.removeFromWaitingRoom(p)
	if s.state.Consultation.PatientID == patientID {
		s.state.Consultation.PatientID = ""
		s.state.Consultation.StartedAt = nil
	}
	p.Status = StatusDischarged
	s.log.Info().Str("patient_id", patientID).Msg("patient discharged (override)")
	return nil
}

// removeFromWaitingRoom detaches the patient from their room, if any.
func (s *PatientService) removeFromWaitingRoom(p *Patient) {
	if p.WaitingRoomID == "" {
		return
	}
	if room := s.state.Room(p.WaitingRoomID); room != nil {
		room.removePatient(p.ID)
	}
	p.WaitingRoomID = ""
}
