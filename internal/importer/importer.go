// Package importer watches an inbox directory and imports EPUB files
// dropped into it.
package importer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/readleafapp/readleaf-server/internal/domain"
)

// settleDelay is how long a file must be quiet before import. Copies
// into the inbox arrive as a burst of write events; importing on the
// first one would read a half-written file.
var settleDelay = 2 * time.Second

// BookAdder is the catalog surface the importer needs.
type BookAdder interface {
	ImportBook(ctx context.Context, raw []byte, displayName string) (*domain.Book, error)
}

// Importer watches the inbox directory for dropped EPUB files.
type Importer struct {
	inbox   string
	catalog BookAdder
	logger  *slog.Logger

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates an importer watching the given directory, creating it if
// needed.
func New(inbox string, catalog BookAdder, logger *slog.Logger) (*Importer, error) {
	if err := os.MkdirAll(inbox, 0o750); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(inbox); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	return &Importer{
		inbox:   inbox,
		catalog: catalog,
		logger:  logger,
		watcher: watcher,
		pending: make(map[string]*time.Timer),
		done:    make(chan struct{}),
	}, nil
}

// Start begins processing events and sweeps any files already waiting
// in the inbox.
func (i *Importer) Start() {
	i.wg.Add(1)
	go i.loop()

	// Files that were dropped while the server was down.
	entries, err := os.ReadDir(i.inbox)
	if err != nil {
		i.logger.Warn("inbox sweep failed", "error", err)
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() && isEpub(entry.Name()) {
			i.schedule(filepath.Join(i.inbox, entry.Name()))
		}
	}
}

// Stop shuts the watcher down and waits for in-flight imports.
func (i *Importer) Stop() {
	i.stopOnce.Do(func() {
		close(i.done)
		_ = i.watcher.Close()
	})
	i.wg.Wait()
}

func (i *Importer) loop() {
	defer i.wg.Done()

	for {
		select {
		case <-i.done:
			return
		case event, ok := <-i.watcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if isEpub(event.Name) {
				i.schedule(event.Name)
			}
		case err, ok := <-i.watcher.Errors:
			if !ok {
				return
			}
			i.logger.Warn("inbox watcher error", "error", err)
		}
	}
}

// schedule (re)arms the settle timer for a path. Each new event on the
// same file pushes the import back until writes stop.
func (i *Importer) schedule(path string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if timer, ok := i.pending[path]; ok {
		timer.Reset(settleDelay)
		return
	}
	i.pending[path] = time.AfterFunc(settleDelay, func() {
		i.mu.Lock()
		delete(i.pending, path)
		i.mu.Unlock()

		select {
		case <-i.done:
			return
		default:
		}
		i.importFile(path)
	})
}

// importFile reads a settled file, imports it, and removes it from the
// inbox on success. The file is left in place on failure so the user
// can see it was not picked up.
func (i *Importer) importFile(path string) {
	raw, err := os.ReadFile(path) //#nosec G304 -- path comes from the watched inbox
	if err != nil {
		i.logger.Warn("inbox read failed", "path", path, "error", err)
		return
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	book, err := i.catalog.ImportBook(context.Background(), raw, name)
	if err != nil {
		i.logger.Warn("inbox import failed", "path", path, "error", err)
		return
	}

	if err := os.Remove(path); err != nil {
		i.logger.Warn("could not remove imported file", "path", path, "error", err)
	}

	i.logger.Info("imported book from inbox", "path", path, "book_id", book.ID)
}

func isEpub(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".epub")
}
