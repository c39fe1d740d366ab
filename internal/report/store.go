package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
)

// ErrNoReports is returned when a directory holds no report of the
// requested kind.
var ErrNoReports = errors.New("no reports found")

const lockName = ".pagescout.lock"

// Store writes reports into Dir. A failed write is retried once in
// FallbackDir.
type Store struct {
	Dir         string
	FallbackDir string
	LockTimeout time.Duration

	now func() time.Time
}

func NewStore(dir string) *Store {
	return &Store{
		Dir:         dir,
		FallbackDir: ".",
		LockTimeout: 10 * time.Second,
		now:         time.Now,
	}
}

// Save writes v as indented JSON under a file name of the given kind and
// returns the path it landed at.
func (s *Store) Save(k Kind, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s report: %w", k, err)
	}
	name := k.FileName(s.now())

	path, err := s.write(s.Dir, name, data)
	if err == nil {
		return path, nil
	}
	if s.FallbackDir == "" || s.FallbackDir == s.Dir {
		return "", err
	}

	path, ferr := s.write(s.FallbackDir, name, data)
	if ferr != nil {
		return "", errors.Join(err, fmt.Errorf("fallback: %w", ferr))
	}
	return path, nil
}

// ScreenshotDir is where runs put their screenshots.
func (s *Store) ScreenshotDir() string {
	return filepath.Join(s.Dir, "screenshots")
}

// GeneratedDir is where generated test files go.
func (s *Store) GeneratedDir() string {
	return filepath.Join(s.Dir, "generated")
}

// Prepare creates the output directory and its subdirectories.
func (s *Store) Prepare() error {
	for _, dir := range []string{s.Dir, s.ScreenshotDir(), s.GeneratedDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func (s *Store) write(dir, name string, data []byte) (string, error) {
	path := filepath.Join(dir, name)
	err := s.withLock(dir, func() error {
		tmp, err := os.CreateTemp(dir, ".tmp-"+name)
		if err != nil {
			return err
		}
		defer os.Remove(tmp.Name())

		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			return err
		}
		if err := tmp.Close(); err != nil {
			return err
		}
		return os.Rename(tmp.Name(), path)
	})
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// withLock runs fn while holding an exclusive lock on dir, so two runs
// sharing an output directory never interleave writes.
func (s *Store) withLock(dir string, fn func() error) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, lockName))
	ctx, cancel := context.WithTimeout(context.Background(), s.LockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquire lock: timed out after %v", s.LockTimeout)
	}
	defer lock.Unlock()

	return fn()
}

// Latest returns the newest report of kind k in dir.
func Latest(dir string, k Kind) (string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", dir, ErrNoReports)
	}
	if err != nil {
		return "", err
	}

	type candidate struct {
		name string
		mod  time.Time
	}
	var found []candidate
	for _, e := range entries {
		if e.IsDir() || !k.Matches(e.Name()) {
			continue
		}
		c := candidate{name: e.Name()}
		if k.byModTime() {
			info, err := e.Info()
			if err != nil {
				continue
			}
			c.mod = info.ModTime()
		}
		found = append(found, c)
	}
	if len(found) == 0 {
		return "", fmt.Errorf("%s reports in %s: %w", k, dir, ErrNoReports)
	}

	sort.Slice(found, func(i, j int) bool {
		if k.byModTime() && !found[i].mod.Equal(found[j].mod) {
			return found[i].mod.After(found[j].mod)
		}
		return found[i].name > found[j].name
	})
	return filepath.Join(dir, found[0].name), nil
}

// Load decodes the report at path into v.
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
