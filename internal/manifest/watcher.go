package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher invalidates a discovery cache when contract sources or the
// project manifest change on disk, so the next Discover call sees a fresh
// view without restarting the process.
type Watcher struct {
	root    string
	cache   *Cache
	log     zerolog.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchDirectory starts watching root (and its contracts subtree, when
// present) and invalidates cache on relevant changes. Stop must be called
// to release the underlying watcher.
func WatchDirectory(cache *Cache, root string, log zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(root); err != nil {
		fw.Close()
		return nil, err
	}
	// Contract edits mostly happen below contracts/; watch it when it exists.
	contractsDir := filepath.Join(root, "contracts")
	if info, err := os.Stat(contractsDir); err == nil && info.IsDir() {
		_ = fw.Add(contractsDir)
	}

	w := &Watcher{
		root:    root,
		cache:   cache,
		log:     log,
		watcher: fw,
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Stop closes the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Editors fire bursts of events per save; debounce before invalidating.
	const debounce = 100 * time.Millisecond
	var pending bool
	var last time.Time
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if pending {
					w.invalidate()
				}
				return
			}
			if !w.relevant(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending = true
				last = time.Now()
			}

		case <-ticker.C:
			if pending && time.Since(last) >= debounce {
				w.invalidate()
				pending = false
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the cache just stays warm.
		}
	}
}

// relevant reports whether a change to the named file can affect discovery.
func (w *Watcher) relevant(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ContractExt) || base == ManifestFile
}

func (w *Watcher) invalidate() {
	w.log.Debug().Str("dir", w.root).Msg("directory change detected, invalidating discovery cache")
	w.cache.Invalidate(w.root)
}
