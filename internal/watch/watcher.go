// Package watch detects modifications of the persisted catalog document that
// did not come from the store's own write path, and resynchronizes.
package watch

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ecomm-labs/realtime-catalog/internal/broadcast"
	"github.com/ecomm-labs/realtime-catalog/internal/model"
	"github.com/ecomm-labs/realtime-catalog/internal/obs"
)

// Resyncer is the slice of the catalog store the watcher drives.
type Resyncer interface {
	Resync() (changed bool, err error)
	List() []model.Product
}

// Watcher observes the directory containing the catalog document, filtered to
// that one filename. Write bursts are coalesced in a debounce window before a
// single resync runs; a resync that finds identical content publishes
// nothing, which keeps the store's own writes from echoing back as broadcasts.
type Watcher struct {
	store    Resyncer
	bus      *broadcast.Bus
	filename string
	debounce time.Duration
	fw       *fsnotify.Watcher
	done     chan struct{}
}

// New starts watching the directory of path. The directory must exist.
func New(path string, store Resyncer, bus *broadcast.Bus, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{
		store:    store,
		bus:      bus,
		filename: filepath.Base(path),
		debounce: debounce,
		fw:       fw,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops the watch loop and waits for it to exit.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != w.filename {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-fire:
			timer, fire = nil, nil
			w.resync()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			obs.Logger.Error("watch_error", "error", err)
		}
	}
}

// resync reloads the store and publishes the snapshot when the document
// content actually changed. A failed reload keeps the last known-good state
// and the loop running.
func (w *Watcher) resync() {
	changed, err := w.store.Resync()
	if err != nil {
		obs.Logger.Error("catalog_resync_failed", "error", err)
		return
	}
	if !changed {
		return
	}
	snapshot := w.store.List()
	obs.Logger.Info("catalog_resynced", "products", len(snapshot))
	w.bus.Publish(snapshot)
}
