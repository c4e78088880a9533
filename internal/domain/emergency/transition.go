package emergency

// allowedTransitions is the exhaustive patient state machine. Every status
// change in this package funnels through CanTransition; any pair missing
// here is rejected. AwaitingExitTransport -> InWaitingRoom is the rescue
// path taken when a unit transfer cannot proceed.
var allowedTransitions = map[PatientStatus][]PatientStatus{
	StatusAwaitingTriage:          {StatusInWaitingRoom},
	StatusInWaitingRoom:           {StatusInTransitToConsultation},
	StatusInTransitToConsultation: {StatusInConsultation},
	StatusInConsultation:          {StatusAwaitingExitTransport, StatusDischarged},
	StatusAwaitingExitTransport:   {StatusInTransitToUnit, StatusInWaitingRoom},
	StatusInTransitToUnit:         {StatusDischarged},
}

// CanTransition reports whether the patient state machine allows the edge
// from -> to.
func CanTransition(from, to PatientStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
