package memory

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	return s, path
}

func TestSetGetDelete(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	if _, err := s.Get("M"); !errors.Is(err, ErrNoVar) {
		t.Fatalf("expected ErrNoVar, got %v", err)
	}

	if err := s.Set("M", 2.5); err != nil {
		t.Fatalf("setting M: %v", err)
	}
	got, err := s.Get("M")
	if err != nil {
		t.Fatalf("getting M: %v", err)
	}
	if got != 2.5 {
		t.Fatalf("expected 2.5, got %v", got)
	}

	if err := s.Delete("M"); err != nil {
		t.Fatalf("deleting M: %v", err)
	}
	if _, err := s.Get("M"); !errors.Is(err, ErrNoVar) {
		t.Fatalf("expected ErrNoVar after delete, got %v", err)
	}
}

func TestValuesSurviveReopen(t *testing.T) {
	s, path := openTemp(t)
	if err := s.Set("M", math.Pi); err != nil {
		t.Fatalf("setting M: %v", err)
	}
	if err := s.Set("x", -1e-9); err != nil {
		t.Fatalf("setting x: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer s.Close()

	all, err := s.All()
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	want := map[string]float64{"M": math.Pi, "x": -1e-9}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Fatalf("registers mismatch (-want +got):\n%s", diff)
	}
}
