// Package watcher delivers change signals for a single snapshot file so
// the watch-mode render loop can repaint when the board is edited
// externally. fsnotify is used where it works; remote and FUSE mounts,
// or the FB_FORCE_POLLING environment variable, switch the watch to
// periodic stat polling.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is how often the snapshot is stat-ed in poll mode.
const DefaultPollInterval = 2 * time.Second

// ErrSnapshotRemoved is delivered on Errors when the watched snapshot
// disappears. The watch keeps running; a recreated file resumes normal
// change delivery.
var ErrSnapshotRemoved = errors.New("snapshot file was removed")

// Mode says how changes are being detected.
type Mode int

const (
	ModeNotify Mode = iota // inotify/kqueue via fsnotify
	ModePoll               // periodic os.Stat
)

func (m Mode) String() string {
	if m == ModePoll {
		return "polling"
	}
	return "fsnotify"
}

// Options tunes a Watch. The zero value is usable.
type Options struct {
	Debounce     time.Duration // quiet period before a change signal; DefaultDebounceDuration if zero
	PollInterval time.Duration // stat interval in poll mode; DefaultPollInterval if zero
	ForcePoll    bool          // skip fsnotify even on local filesystems
}

// Watch monitors one snapshot file. Changes arrive on Events, failures
// on Errors; both channels are owned by the Watch and never closed, so
// a consumer loop selects on them until it calls Close.
type Watch struct {
	path   string
	mode   Mode
	fsType FilesystemType

	events chan struct{}
	errs   chan error
	deb    *Debouncer
	cancel context.CancelFunc

	mu        sync.Mutex
	lastMtime time.Time
	lastSize  int64
	closed    bool
}

// Start begins watching the snapshot at path. The file does not have to
// exist yet; its parent directory is watched, so the first write (or an
// atomic rename into place) is seen.
func Start(path string, opts Options) (*Watch, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounceDuration
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	w := &Watch{
		path:   abs,
		fsType: DetectFilesystemType(abs),
		events: make(chan struct{}, 1),
		errs:   make(chan error, 1),
		deb:    NewDebouncer(opts.Debounce),
	}
	if info, err := os.Stat(abs); err == nil {
		w.lastMtime = info.ModTime()
		w.lastSize = info.Size()
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.mode = ModeNotify
	if opts.ForcePoll || envBool("FB_FORCE_POLLING") || envBool("FB_FORCE_POLL") || isRemoteFilesystem(w.fsType) {
		w.mode = ModePoll
	}

	if w.mode == ModeNotify {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			err = fsw.Add(filepath.Dir(abs))
		}
		if err != nil {
			// No inotify for us here. Polling always works.
			if fsw != nil {
				fsw.Close()
			}
			w.mode = ModePoll
		} else {
			go w.runNotify(ctx, fsw)
			return w, nil
		}
	}

	go w.runPoll(ctx, opts.PollInterval)
	return w, nil
}

// Events signals after each debounced change to the snapshot. The
// channel has capacity one; changes during a slow consumer coalesce.
func (w *Watch) Events() <-chan struct{} { return w.events }

// Errors delivers watch failures, including ErrSnapshotRemoved.
func (w *Watch) Errors() <-chan error { return w.errs }

// Mode reports how changes are detected.
func (w *Watch) Mode() Mode { return w.mode }

// Path returns the absolute path being watched.
func (w *Watch) Path() string { return w.path }

// FilesystemType returns the classification that chose the mode.
func (w *Watch) FilesystemType() FilesystemType { return w.fsType }

// Close stops the watch. Events and Errors stay open but quiet, so
// in-flight selects in the consumer loop do not spin. Close is
// idempotent.
func (w *Watch) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.cancel()
	w.deb.Cancel()
}

func (w *Watch) runNotify(ctx context.Context, fsw *fsnotify.Watcher) {
	defer fsw.Close()
	base := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			// The whole directory is watched; ignore siblings.
			if filepath.Base(ev.Name) != base {
				continue
			}
			switch {
			case ev.Op&fsnotify.Remove != 0:
				w.sendError(ErrSnapshotRemoved)
			case ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.deb.Trigger(w.signal)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

func (w *Watch) runPoll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pollOnce()
		}
	}
}

// pollOnce stats the snapshot and signals if the mtime or size moved.
func (w *Watch) pollOnce() {
	info, err := os.Stat(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			w.mu.Lock()
			hadFile := !w.lastMtime.IsZero()
			w.lastMtime = time.Time{}
			w.lastSize = 0
			w.mu.Unlock()
			if hadFile {
				w.sendError(ErrSnapshotRemoved)
			}
		} else {
			w.sendError(err)
		}
		return
	}

	w.mu.Lock()
	changed := info.ModTime().After(w.lastMtime) || info.Size() != w.lastSize
	if changed {
		w.lastMtime = info.ModTime()
		w.lastSize = info.Size()
	}
	w.mu.Unlock()

	if changed {
		w.deb.Trigger(w.signal)
	}
}

func (w *Watch) signal() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}
	select {
	case w.events <- struct{}{}:
	default:
	}
}

func (w *Watch) sendError(err error) {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}
	select {
	case w.errs <- err:
	default:
	}
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
