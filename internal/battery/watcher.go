package battery

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// startWatcher registers an inotify watch on the battery's status file and
// spawns the goroutine that forwards its events to the wake channel. Setup
// failures degrade the battery to timeout-only polling instead of failing
// the whole aggregate.
func (s *State) startWatcher(name string) {
	statusPath := filepath.Join(sysfsRoot, name, "status")

	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.log.Warn("battery watch unavailable, polling only", "battery", name, "err", err)
		return
	}
	if err := w.Add(statusPath); err != nil {
		s.log.Warn("cannot watch battery status, polling only", "battery", name, "err", err)
		_ = w.Close()
		return
	}

	s.watchers = append(s.watchers, w)
	s.wg.Add(1)
	go s.watch(name, w)
}

// watch forwards status-file events until the watcher is closed. The event
// and error channels close when Close tears the watcher down, so the
// goroutine never needs to be cancelled mid-read.
func (s *State) watch(name string, w *fsnotify.Watcher) {
	defer s.wg.Done()

	for {
		select {
		case _, ok := <-w.Events:
			if !ok {
				return
			}
			s.signal()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.log.Warn("battery watch error, polling only", "battery", name, "err", err)
			return
		}
	}
}

// signal wakes the consumer without blocking; a signal already pending is
// enough, bursts of events collapse into one recomputation.
func (s *State) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
