package emergency

import (
	"fmt"

	"github.com/rs/zerolog"
)

// StaffService owns staff discovery, room supervision, and the release of
// staff back to the idle pool.
type StaffService struct {
	state *State
	log   zerolog.Logger
}

func NewStaffService(state *State, log zerolog.Logger) *StaffService {
	return &StaffService{state: state, log: log}
}

// FindAvailable returns the roster members of the given role that can take
// work, in roster order. In-transit staff are listed too, since they rejoin
// the pool when their transport finalizes; excludeInTransit narrows the
// listing to staff dispatchable right now.
func (s *StaffService) FindAvailable(role StaffRole, excludeInTransit bool) []*StaffMember {
	var out []*StaffMember
	for _, m := range s.state.Staff {
		if m.Role != role {
			continue
		}
		if m.InTransit {
			if !excludeInTransit {
				out = append(out, m)
			}
			continue
		}
		if !m.MayLeave(s.state.Now, s.state.Settings.MinDwell) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// AssignSupervision attaches a mobile nurse or aide to a waiting room.
// Any room they previously supervised is released first. The current clock
// becomes their busy-since stamp and the room's last-supervised timestamp.
func (s *StaffService) AssignSupervision(staffID, roomID string) error {
	m := s.state.StaffByID(staffID)
	if m == nil {
		return fmt.Errorf("staff %q: %w", staffID, ErrNotFound)
	}
	if !m.Role.Mobile() {
		return fmt.Errorf("staff %q (%s) may not supervise: %w", staffID, m.Role, ErrPolicyViolation)
	}
	if !m.MayLeave(s.state.Now, s.state.Settings.MinDwell) {
		return fmt.Errorf("staff %q cannot leave their post: %w", staffID, ErrResourceUnavailable)
	}
	room := s.state.Room(roomID)
	if room == nil {
		return fmt.Errorf("waiting room %q: %w", roomID, ErrNotFound)
	}

	if m.SupervisedRoomID != "" && m.SupervisedRoomID != roomID {
		if prev := s.state.Room(m.SupervisedRoomID); prev != nil && prev.SupervisorID == staffID {
			prev.SupervisorID = ""
		}
	}

	now := s.state.Now
	m.Location = roomID
	m.SupervisedRoomID = roomID
	m.BusySince = &now
	room.SupervisorID = staffID
	room.LastSupervised = now

	s.log.Info().
		Str("staff_id", staffID).
		Str("room_id", roomID).
		Msg("supervision assigned")
	return nil
}

// AutoCoverUnsupervisedRooms walks every room holding patients with no
// active supervisor and pulls one idle mobile staff member onto it.
// Best-effort: rooms stay uncovered when nobody is free. Returns one event
// string per successful assignment.
func (s *StaffService) AutoCoverUnsupervisedRooms() []string {
	var events []string
	for _, room := range s.state.Rooms {
		if len(room.Patients) == 0 || room.SupervisorID != "" {
			continue
		}
		m := s.idleMobileStaff()
		if m == nil {
			continue
		}
		if err := s.AssignSupervision(m.ID, room.ID); err != nil {
			s.log.Warn().Err(err).Str("room_id", room.ID).Msg("auto-cover failed")
			continue
		}
		events = append(events, fmt.Sprintf("supervision auto-assigned: %s -> %s", m.ID, room.ID))
	}
	return events
}

// idleMobileStaff returns the first mobile nurse or aide resting in the idle
// pool, in roster order.
func (s *StaffService) idleMobileStaff() *StaffMember {
	for _, m := range s.state.Staff {
		if m.Role.Mobile() && m.Available && !m.InTransit && m.Location == LocationIdle {
			return m
		}
	}
	return nil
}

// Release clears transit, supervision-lock, and occupancy fields and puts
// the staff member back in the pool, located at the room they still
// supervise or at the generic idle location.
func (s *StaffService) Release(staffID string) {
	m := s.state.StaffByID(staffID)
	if m == nil {
		return
	}
	m.Available = true
	m.InTransit = false
	m.TransportPatientID = ""
	m.Destination = ""
	m.ExpectedArrival = nil
	m.BusySince = nil
	m.MustReturnBy = nil

	if m.SupervisedRoomID != "" {
		m.Location = m.SupervisedRoomID
	} else {
		m.Location = LocationIdle
	}
	s.log.Debug().Str("staff_id", staffID).Str("location", m.Location).Msg("staff released")
}

// clearSupervision drops any supervision held by the staff member so a room
// never counts an in-transit supervisor; the room re-enters the auto-cover
// pool.
func (s *StaffService) clearSupervision(m *StaffMember) {
	if m.SupervisedRoomID == "" {
		return
	}
	if room := s.state.Room(m.SupervisedRoomID); room != nil && room.SupervisorID == m.ID {
		room.SupervisorID = ""
	}
	m.SupervisedRoomID = ""
}
