package models

import "fmt"

// PeerKind is the kind of entity an [EntityRef] points to.
type PeerKind string

const (
	PeerChannel PeerKind = "channel"
	PeerChat    PeerKind = "chat"
	PeerUser    PeerKind = "user"
)

// EntityRef is an opaque handle to a remote entity, usable for later calls such as join.
type EntityRef struct {
	Kind       PeerKind
	ID         int64
	AccessHash int64
}

// IsZero reports whether the ref was never filled in.
func (r EntityRef) IsZero() bool {
	return r.Kind == "" && r.ID == 0
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s#%d", r.Kind, r.ID)
}

// Candidate is a channel (or other peer) record returned by the remote service.
//
// Username is empty when the entity has no public username.
type Candidate struct {
	Username string
	Title    string
	Ref      EntityRef
}

// DisplayName prefers the @username and falls back to the title.
func (c Candidate) DisplayName() string {
	if c.Username != "" {
		return "@" + c.Username
	}
	return c.Title
}
