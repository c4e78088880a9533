package emergency

import (
	"sort"
	"time"
)

// Snapshot is the serializable view of the whole department handed to the
// presentation and conversational collaborators. It is a deep copy; holding
// one never aliases live state.
type Snapshot struct {
	Now                time.Time     `json:"now"`
	Rooms              []WaitingRoom `json:"rooms"`
	Consultation       Consultation  `json:"consultation"`
	Units              []CareUnit    `json:"units"`
	Staff              []StaffMember `json:"staff"`
	Patients           []Patient     `json:"patients"`
	ConsultationQueue  []string      `json:"consultation_queue"`
	ExitTransportQueue []string      `json:"exit_transport_queue"`
	Alerts             Alerts        `json:"alerts"`
	Events             []Event       `json:"events"`
}

// Snapshot captures the current state, derived queues, and active alerts.
func (c *Controller) Snapshot() Snapshot {
	st := c.state
	snap := Snapshot{
		Now:          st.Now,
		Consultation: *st.Consultation,
		Alerts:       c.Alerts(),
		Events:       c.Events(),
	}
	for _, r := range st.Rooms {
		room := *r
		room.Patients = append([]string(nil), r.Patients...)
		snap.Rooms = append(snap.Rooms, room)
	}
	for _, u := range st.Units {
		unit := *u
		unit.Patients = append([]string(nil), u.Patients...)
		snap.Units = append(snap.Units, unit)
	}
	for _, m := range st.Staff {
		snap.Staff = append(snap.Staff, *m)
	}
	for _, p := range st.Patients {
		patient := *p
		patient.PriorConditions = append([]string(nil), p.PriorConditions...)
		snap.Patients = append(snap.Patients, patient)
	}
	sort.Slice(snap.Patients, func(i, j int) bool {
		return snap.Patients[i].ID < snap.Patients[j].ID
	})
	for _, p := range st.ConsultationQueue() {
		snap.ConsultationQueue = append(snap.ConsultationQueue, p.ID)
	}
	for _, p := range st.ExitTransportQueue() {
		snap.ExitTransportQueue = append(snap.ExitTransportQueue, p.ID)
	}
	return snap
}
