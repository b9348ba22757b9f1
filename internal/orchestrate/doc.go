// Package orchestrate drives the two remote operations petpix offers,
// uploading an image and fetching a random one, through their busy and
// result states.
//
// Each orchestrator is single-flight: while a call is in progress, further
// calls of the same kind are rejected without touching the network. Uploads
// and retrievals are guarded independently. Callers never receive an error
// from an orchestrator; every dispatched call settles by publishing exactly
// one notice to the bus, and the outcome is observed through that notice and
// the orchestrator's state.
package orchestrate

// State is a point-in-time view of an orchestrator.
type State struct {
	Busy       bool   `json:"busy"`
	LastResult string `json:"last_result,omitempty"`
}
