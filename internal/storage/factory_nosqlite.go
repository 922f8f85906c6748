//go:build !sqlite

package storage

import (
	"errors"
	"fmt"
)

// ErrSQLiteUnavailable is returned when the binary was built without the sqlite tag.
var ErrSQLiteUnavailable = errors.New("sqlite store not compiled in")

func newSQLiteStore(path string) (Store, error) {
	return nil, fmt.Errorf("%w: cannot open %s; rebuild with -tags sqlite or use -store %s", ErrSQLiteUnavailable, path, KindMemory)
}
