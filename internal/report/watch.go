package report

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports new files of one kind as they appear in a directory.
type Watcher struct {
	fw   *fsnotify.Watcher
	kind Kind
}

func NewWatcher(dir string, k Kind) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{fw: fw, kind: k}, nil
}

// Run calls fn once per new report until ctx is done, then closes the
// watcher. Errors from the underlying watcher end the run.
func (w *Watcher) Run(ctx context.Context, fn func(path string)) error {
	defer w.fw.Close()

	seen := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !w.kind.Matches(filepath.Base(event.Name)) || seen[event.Name] {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				seen[event.Name] = true
				fn(event.Name)
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
	}
}
