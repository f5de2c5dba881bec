//go:build !cgo

package index

import "errors"

// ErrKuzuUnavailable is returned when the binary was built without cgo.
var ErrKuzuUnavailable = errors.New("index: kuzu store requires a cgo build")

// NewKuzuStore reports that KuzuDB is not linked into this build.
func NewKuzuStore() (Store, error) {
	return nil, ErrKuzuUnavailable
}
