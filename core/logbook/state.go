package logbook

import "github.com/pkg/errors"

// Event drives a month logbook from one Status to the next.
type Event string

const (
	EventSubmit  Event = "submit"
	EventApprove Event = "approve"
	EventReject  Event = "reject"
)

var ErrInvalidTransition = errors.New("invalid logbook status transition")

// transitions is the whole month lifecycle:
//
//	Draft|Rejected --submit--> Pending --approve--> Approved
//	                           Pending --reject---> Rejected
var transitions = map[Status]map[Event]Status{
	StatusDraft:    {EventSubmit: StatusPending},
	StatusRejected: {EventSubmit: StatusPending},
	StatusPending:  {EventApprove: StatusApproved, EventReject: StatusRejected},
}

// Transition returns the status reached by applying ev to from.
func Transition(from Status, ev Event) (Status, error) {
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	return from, errors.Wrapf(ErrInvalidTransition, "%s on %s", ev, from)
}

// Can reports whether ev is allowed from the given status.
func Can(from Status, ev Event) bool {
	_, err := Transition(from, ev)
	return err == nil
}
