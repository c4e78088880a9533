package emergency

import "errors"

// Error kinds surfaced by every operation in this package. Callers
// discriminate with errors.Is; messages carry the offending ids.
var (
	// ErrNotFound covers unknown patient, staff, room, and unit ids.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned for any patient status change not in
	// the transition table, and by operations whose status precondition
	// does not hold.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrResourceUnavailable covers full rooms and units, an occupied
	// consultation slot, and staff that cannot currently leave.
	ErrResourceUnavailable = errors.New("resource unavailable")

	// ErrPolicyViolation covers safety rules: a ROUGE patient sent home, a
	// GRIS patient sent to a ward, or a role not allowed for the operation.
	ErrPolicyViolation = errors.New("policy violation")
)
