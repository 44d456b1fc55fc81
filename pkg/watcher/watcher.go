// Package watcher ingests documents from a directory and keeps watching it
// for new or changed files.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/knowledge"
	"github.com/knolhq/knol/pkg/loader"
)

// settleDelay is how long a file must stay quiet after its last write event
// before it is ingested, so partially-written files are not picked up.
const settleDelay = 500 * time.Millisecond

// Ingestor ingests a single document.
type Ingestor interface {
	Ingest(ctx context.Context, filename string, data []byte) (knowledge.IngestResult, error)
}

// Watcher ingests every supported file in a directory, then watches the
// directory and ingests files as they appear.
type Watcher struct {
	service Ingestor
	dir     string
	logger  *zap.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a watcher over the given directory.
func New(service Ingestor, dir string, logger *zap.Logger) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch target %s is not a directory", dir)
	}

	return &Watcher{
		service: service,
		dir:     dir,
		logger:  logger,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Run ingests the directory's current files, then blocks watching for new
// ones until ctx is cancelled. Individual ingestion failures are logged and
// never stop the watch loop.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.ingestExisting(ctx); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating directory watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	w.logger.Info("watching directory for documents", zap.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !supported(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("directory watch error", zap.Error(err))
		}
	}
}

// ingestExisting ingests every supported file already present in the
// directory, in name order.
func (w *Watcher) ingestExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading watch directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !supported(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		w.ingestFile(ctx, filepath.Join(w.dir, entry.Name()))
	}

	return nil
}

// schedule (re)arms the settle timer for a path. The file is ingested only
// after it stops changing for settleDelay.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}

	w.pending[path] = time.AfterFunc(settleDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.ingestFile(ctx, path)
	})
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		w.logger.Warn("reading watched file failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return
	}

	if _, err := w.service.Ingest(ctx, filepath.Base(path), data); err != nil {
		w.logger.Warn("ingesting watched file failed",
			zap.String("path", path),
			zap.Error(err),
		)
	}
}

// supported reports whether the filename maps to a known document format.
func supported(name string) bool {
	_, err := loader.DetectFormat(name)
	return err == nil
}
