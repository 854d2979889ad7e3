// Package errors holds the typed errors shared by sessions and documents.
package errors

import (
	stderr "errors"
	"fmt"

	"github.com/gofrs/uuid"
)

// ErrNilSession is returned when storing a nil session.
var ErrNilSession = stderr.New("can't save nil session")

// UUIDNotFoundError reports a session id with no stored session.
type UUIDNotFoundError struct {
	UUID uuid.UUID
}

func (n *UUIDNotFoundError) Error() string {
	return fmt.Sprintf("UUID %q not found", n.UUID)
}

// NoSessionFoundError reports a context that carries no session id.
type NoSessionFoundError struct{}

func (n *NoSessionFoundError) Error() string {
	return "no session found in context"
}

// IsSessionMissing reports whether err means the caller's session is unknown or gone.
func IsSessionMissing(err error) bool {
	var nf *UUIDNotFoundError
	var ns *NoSessionFoundError
	return stderr.As(err, &nf) || stderr.As(err, &ns)
}
