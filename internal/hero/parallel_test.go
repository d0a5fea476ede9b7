package hero

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestForEachParallel_VisitsAll(t *testing.T) {
	paths := []string{"a.png", "a.webp", "a.jpg", "b.png", "b.webp"}
	var mu sync.Mutex
	seen := make(map[string]bool)

	err := forEachParallel(paths, 2, func(p string) error {
		mu.Lock()
		seen[p] = true
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("forEachParallel: %v", err)
	}
	if len(seen) != len(paths) {
		t.Errorf("visited %d paths; want %d", len(seen), len(paths))
	}
}

func TestForEachParallel_FirstError(t *testing.T) {
	boom := errors.New("disk full")
	var calls atomic.Int32

	err := forEachParallel([]string{"a.png", "a.webp"}, 1, func(p string) error {
		calls.Add(1)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v; want wrapped %v", err, boom)
	}
	if !strings.Contains(err.Error(), "writing a.png") {
		t.Errorf("err = %q; want the failing path", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("fn called %d times after failure with one worker; want 1", n)
	}
}

func TestForEachParallel_Empty(t *testing.T) {
	called := false
	if err := forEachParallel(nil, 0, func(string) error { called = true; return nil }); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("fn called for empty input")
	}
}
