//go:build !(plan9 || solaris)

package flock

import (
	"path/filepath"
	"testing"
)

func TestTryAcquireFlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hlcolor.db.lock")
	first, err := TryAcquireFlock(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := TryAcquireFlock(path); err != CouldntAcquire {
		t.Errorf("expected CouldntAcquire, got %v", err)
	}
	if err := first.Unlock(); err != nil {
		t.Fatal(err)
	}
	second, err := TryAcquireFlock(path)
	if err != nil {
		t.Fatalf("lock should be free again: %v", err)
	}
	second.Unlock()
}
