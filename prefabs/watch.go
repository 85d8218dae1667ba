package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 100 * time.Millisecond

// Change is a prefab or script file that was written, created, renamed or
// removed on disk.
type Change struct {
	Path   string
	Script bool
}

// Watcher reports prefab and script edits. A burst of events for the same
// file is reported once, after the file has been quiet for the debounce
// window.
type Watcher struct {
	watcher  *fsnotify.Watcher
	Events   chan Change
	Errors   chan error
	closeCh  chan struct{}
	once     sync.Once
	debounce time.Duration
}

// WatchDir watches the prefab directory and its scripts folder.
func WatchDir() (*Watcher, error) {
	return NewWatcher(Dir, filepath.Join(Dir, "scripts"))
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	return newWatcher(defaultDebounce, dirs...)
}

func newWatcher(debounce time.Duration, dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher:  w,
		Events:   make(chan Change, 16),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
		debounce: debounce,
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

type settled struct {
	path string
	gen  uint64
}

type pendingChange struct {
	change Change
	gen    uint64
	timer  *time.Timer
}

// run reports a change once its file has been quiet for the debounce
// window, so the last write of a burst is the one that gets reloaded.
func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	pending := make(map[string]*pendingChange)
	fired := make(chan settled)
	var gen uint64
	defer func() {
		for _, p := range pending {
			p.timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			change, ok := classify(event)
			if !ok {
				continue
			}
			gen++
			if p, ok := pending[event.Name]; ok {
				p.timer.Stop()
			}
			key := settled{path: event.Name, gen: gen}
			pending[event.Name] = &pendingChange{
				change: change,
				gen:    gen,
				timer: time.AfterFunc(w.debounce, func() {
					select {
					case fired <- key:
					case <-w.closeCh:
					}
				}),
			}
		case key := <-fired:
			p, ok := pending[key.path]
			if !ok || p.gen != key.gen {
				continue
			}
			delete(pending, key.path)
			select {
			case w.Events <- p.change:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func classify(event fsnotify.Event) (Change, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return Change{}, false
	}
	switch {
	case isSpecFile(event.Name):
		return Change{Path: event.Name}, true
	case isScriptFile(event.Name):
		return Change{Path: event.Name, Script: true}, true
	default:
		return Change{}, false
	}
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}
