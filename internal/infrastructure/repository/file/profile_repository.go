package file

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/profile"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// profileRecord is the on-disk shape. Field names match what earlier clients
// wrote so existing files keep loading.
type profileRecord struct {
	First string `json:"first"`
	Last  string `json:"last"`
	Pos   string `json:"pos,omitempty"`
}

// ProfileRepository keeps the single local profile in one JSON file.
type ProfileRepository struct {
	mu   sync.Mutex
	path string
}

var _ profile.Repository = (*ProfileRepository)(nil)

func NewProfileRepository(path string) *ProfileRepository {
	return &ProfileRepository{path: path}
}

func (r *ProfileRepository) Path() string {
	return r.path
}

// Load reports ok=false when no profile has been saved yet.
func (r *ProfileRepository) Load(ctx context.Context) (profile.Profile, bool, error) {
	if err := ctx.Err(); err != nil {
		return profile.Profile{}, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := os.ReadFile(r.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return profile.Profile{}, false, nil
		}
		return profile.Profile{}, false, crerr.Wrapf(err, "read profile file %s", r.path)
	}

	var record profileRecord
	if err := sonic.Unmarshal(raw, &record); err != nil {
		return profile.Profile{}, false, crerr.Wrapf(err, "decode profile file %s", r.path)
	}

	pos, ok := profile.ParsePosition(record.Pos)
	if !ok {
		pos = profile.PositionSkater
	}

	return profile.Profile{
		FirstName: record.First,
		LastName:  record.Last,
		Position:  pos,
	}, true, nil
}

// Save overwrites the stored profile. The file is replaced atomically so a
// crash never leaves a half-written profile behind.
func (r *ProfileRepository) Save(ctx context.Context, p profile.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := sonic.Marshal(profileRecord{
		First: p.FirstName,
		Last:  p.LastName,
		Pos:   p.Position.String(),
	})
	if err != nil {
		return crerr.Wrap(err, "encode profile")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return crerr.Wrapf(err, "create profile dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".profile-*.json")
	if err != nil {
		return crerr.Wrap(err, "create temp profile file")
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return crerr.Wrap(err, "write temp profile file")
	}
	if err := tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		return crerr.Wrap(err, "chmod temp profile file")
	}
	if err := tmp.Close(); err != nil {
		return crerr.Wrap(err, "close temp profile file")
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return crerr.Wrapf(err, "replace profile file %s", r.path)
	}
	return nil
}
