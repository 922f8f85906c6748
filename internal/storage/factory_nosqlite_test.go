//go:build !sqlite

package storage

import (
	"errors"
	"testing"
)

func TestNewStoreSQLiteUnavailableWithoutTag(t *testing.T) {
	_, err := NewStore(KindSQLite, "ipd.db")
	if !errors.Is(err, ErrSQLiteUnavailable) {
		t.Fatalf("expected ErrSQLiteUnavailable, got %v", err)
	}
}
