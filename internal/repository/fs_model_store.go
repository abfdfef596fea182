package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	domrepo "github.com/katheedev/crypto-sentiment/internal/domain/repository"
)

// FSModelStore keeps trained classifier artifacts as files named
// <symbol>_<interval>.json under a base directory. Writes go through a temp
// file and rename so a concurrent Load never sees a partial artifact;
// concurrent writers to the same key resolve last-writer-wins.
type FSModelStore struct {
	dir string
}

func NewFSModelStore(dir string) (*FSModelStore, error) {
	if dir == "" {
		dir = "data/models"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	return &FSModelStore{dir: dir}, nil
}

func (s *FSModelStore) Save(symbol string, iv domrepo.Interval, artifact []byte) error {
	tmp, err := os.CreateTemp(s.dir, "model-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(artifact); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(symbol, iv)); err != nil {
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}

func (s *FSModelStore) Load(symbol string, iv domrepo.Interval) ([]byte, bool, error) {
	b, err := os.ReadFile(s.path(symbol, iv))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read artifact: %w", err)
	}
	return b, true, nil
}

func (s *FSModelStore) path(symbol string, iv domrepo.Interval) string {
	name := fmt.Sprintf("%s_%s.json", sanitize(symbol), sanitize(string(iv)))
	return filepath.Join(s.dir, name)
}

// sanitize keeps artifact names flat even for hostile symbol strings.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}

var _ domrepo.ModelStore = (*FSModelStore)(nil)
