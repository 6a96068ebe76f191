package types

import "errors"

// ErrImmutable is returned by the snapshot models when anything attempts an
// UPDATE after the initial INSERT. Snapshots are write-once by contract; a
// violation is a programming error, not user input.
var ErrImmutable = errors.New("snapshot records are write-once and cannot be updated")
