package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ngsrerun/internal/errors"
)

// Store persists session snapshots as flat JSON files under the work
// directory so an interrupted review can be resumed after a restart.
type Store struct {
	dir string
}

// NewStore creates the work directory layout if needed.
func NewStore(dir string) (*Store, error) {
	for _, sub := range []string{"sessions", "uploads", "manifests"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create work directory %s", sub)
		}
	}
	return &Store{dir: dir}, nil
}

// Save writes a session snapshot, replacing any previous one.
func (st *Store) Save(s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode session")
	}
	path := st.sessionPath(s.ID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write session snapshot %s", path)
	}
	return nil
}

// Load reads a session snapshot by ID.
func (st *Store) Load(id string) (*Session, error) {
	data, err := os.ReadFile(st.sessionPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("session %s", id))
		}
		return nil, errors.Wrap(err, "failed to read session snapshot")
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "failed to decode session snapshot")
	}
	return &s, nil
}

// Latest returns the most recently updated session snapshot, or nil
// when none exists.
func (st *Store) Latest() (*Session, error) {
	entries, err := os.ReadDir(filepath.Join(st.dir, "sessions"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list session snapshots")
	}

	var latest *Session
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		s, err := st.Load(e.Name()[:len(e.Name())-len(".json")])
		if err != nil {
			continue // a corrupt snapshot should not block startup
		}
		if latest == nil || s.UpdatedAt.After(latest.UpdatedAt) {
			latest = s
		}
	}
	return latest, nil
}

// Delete removes a session snapshot.
func (st *Store) Delete(id string) error {
	if err := os.Remove(st.sessionPath(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to delete session snapshot")
	}
	return nil
}

// UploadPath returns where an uploaded file for a session is stored.
func (st *Store) UploadPath(id, filename string) string {
	return filepath.Join(st.dir, "uploads", id+"_"+filepath.Base(filename))
}

// ManifestPath returns where a generated manifest for a session lands.
func (st *Store) ManifestPath(id, filename string) string {
	return filepath.Join(st.dir, "manifests", id+"_"+filepath.Base(filename))
}

func (st *Store) sessionPath(id string) string {
	return filepath.Join(st.dir, "sessions", filepath.Base(id)+".json")
}
