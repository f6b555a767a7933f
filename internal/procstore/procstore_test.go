package procstore

import (
	"os"
	"testing"
)

func TestAcquireAndReleasePID(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.AcquirePID(os.Getpid()); err != nil {
		t.Fatal(err)
	}

	if err := s.ReleasePID(); err != nil {
		t.Fatal(err)
	}
}

func TestAcquirePIDRefusesWhenAlreadyRunning(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.AcquirePID(os.Getpid()); err != nil {
		t.Fatal(err)
	}

	err = s.AcquirePID(os.Getpid())
	if err == nil {
		t.Fatal("expected error on second acquire")
	}
}

func TestAcquirePIDSucceedsAfterStaleRelease(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// A pid unlikely to correspond to a live process.
	if err := s.AcquirePID(999999); err != nil {
		t.Fatal(err)
	}

	if err := s.AcquirePID(os.Getpid()); err != nil {
		t.Fatalf("expected stale pid to be treated as dead, got: %v", err)
	}
}
