// Package notice provides the short-lived, typed user notices that every
// petpix operation reports its outcome through, and the Bus that owns the
// live set of them.
package notice

import "time"

// Kind is the severity of a notice.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
)

// ID identifies a notice for dismissal. Treat it as opaque.
type ID string

// Notice is a single user-facing message. Notices are values; the Bus hands
// out copies and never mutates one after it is published.
type Notice struct {
	ID        ID        `json:"id"`
	Kind      Kind      `json:"kind"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscriber receives the full live set of notices after every change.
// The slice is owned by the subscriber.
type Subscriber func([]Notice)
