// Package procstore is the runtime's persistent config store: a
// BadgerDB-backed key/value store used for the PID guard; the PID
// entry is the only key it holds. It explicitly does NOT store job or
// stage state —
// that is rebuilt from the remote backend on every restart.
package procstore

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

const pidKey = "acp:pid"

// ErrAlreadyRunning is returned by AcquirePID when a PID file is
// already present and its process still appears alive.
var ErrAlreadyRunning = errors.New("acp seller already running")

// Store wraps a BadgerDB database opened at a fixed path under the
// runtime's config directory.
type Store struct {
	db *badger.DB
}

// Open opens (creating if absent) the store at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open config store: %w", err)
	}

	log.Info().Str("path", path).Msg("procstore: config store opened")
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AcquirePID writes pid under the PID key, refusing if a PID is
// already recorded and that process is still alive.
func (s *Store) AcquirePID(pid int) error {
	existing, ok, err := s.readPID()
	if err != nil {
		return err
	}
	if ok && processAlive(existing) {
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, existing)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(pidKey), []byte(strconv.Itoa(pid)))
	})
}

// ReleasePID removes the PID key; called on clean shutdown.
func (s *Store) ReleasePID() error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(pidKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// IsRunning reports whether a recorded PID is present and still alive.
func (s *Store) IsRunning() bool {
	pid, ok, err := s.readPID()
	if err != nil || !ok {
		return false
	}
	return processAlive(pid)
}

func (s *Store) readPID() (int, bool, error) {
	var pid int
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(pidKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			n, err := strconv.Atoi(string(val))
			if err != nil {
				return err
			}
			pid = n
			found = true
			return nil
		})
	})
	if err != nil {
		return 0, false, fmt.Errorf("read pid: %w", err)
	}
	return pid, found, nil
}
