package battery

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned by WaitForUpdate after Close has released the state.
var ErrClosed = errors.New("battery state closed")

// State holds the combined reading across one or more batteries. The scalar
// fields are recomputed by WaitForUpdate and must only be read between calls;
// watcher goroutines never touch them. Concurrent WaitForUpdate calls on one
// State are not supported.
type State struct {
	names    []string
	nowAttr  string
	fullAttr string // empty means capacity-only, full pinned at 100

	Discharging bool
	Full        bool
	Level       int
	EnergyNow   int64
	EnergyFull  int64

	log       *slog.Logger
	wake      chan struct{}
	done      chan struct{}
	watchers  []*fsnotify.Watcher
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New builds the aggregate state for the given battery names and starts one
// status-file watcher per battery. A watcher that cannot be set up is logged
// and skipped; that battery is still aggregated, but only on the timeout
// path of WaitForUpdate.
func New(names []string, logger *slog.Logger) (*State, error) {
	if len(names) == 0 {
		return nil, errors.New("no batteries to watch")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &State{
		names: names,
		log:   logger,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	s.nowAttr, s.fullAttr = resolveAttributes(names[0])

	for _, name := range names {
		s.startWatcher(name)
	}
	return s, nil
}

// WaitForUpdate blocks until a battery status file changes or timeout
// elapses, whichever comes first, then re-reads every battery and recomputes
// the aggregate fields. The timeout doubles as a poll fallback: the caller
// gets a fresh reading each cycle even if no filesystem event ever fires.
//
// When required is true, any unreadable attribute file aborts with an error
// naming the file; otherwise that battery is skipped for this cycle and
// picked up again on the next one. Returns ErrClosed once Close has run.
func (s *State) WaitForUpdate(required bool, timeout time.Duration) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.wake:
	case <-timer.C:
	case <-s.done:
		return ErrClosed
	}

	return s.refresh(required)
}

// refresh recomputes the aggregate from scratch. It never diffs: every wake
// reads whatever is current on disk, so coalesced or lost events cannot
// leave the state stale past one cycle.
func (s *State) refresh(required bool) error {
	s.Discharging = false
	s.Full = true
	s.EnergyNow = 0
	s.EnergyFull = 0

	for _, name := range s.names {
		status, err := readString(filepath.Join(sysfsRoot, name, "status"))
		if err != nil {
			if required {
				return fmt.Errorf("read battery status: %w", err)
			}
			continue
		}

		now, err := readInt(filepath.Join(sysfsRoot, name, s.nowAttr))
		if err != nil {
			if required {
				return fmt.Errorf("read battery charge: %w", err)
			}
			continue
		}

		full := int64(100)
		if s.fullAttr != "" {
			full, err = readInt(filepath.Join(sysfsRoot, name, s.fullAttr))
			if err != nil {
				if required {
					return fmt.Errorf("read battery capacity: %w", err)
				}
				continue
			}
		}

		s.Discharging = s.Discharging || status == statusDischarging
		s.Full = s.Full && status == statusFull
		s.EnergyNow += now
		s.EnergyFull += full
	}

	s.Level = level(s.EnergyNow, s.EnergyFull)
	return nil
}

// level computes the rounded percentage, clamped to [0,100]. A zero or
// negative denominator reports 0 rather than dividing.
func level(now, full int64) int {
	if full <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(now) / float64(full)))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Close shuts the aggregate down: every watch handle is closed, which
// unblocks its goroutine, the goroutines are joined, and any consumer
// blocked in WaitForUpdate is released with ErrClosed. Safe to call more
// than once.
func (s *State) Close() error {
	s.closeOnce.Do(func() {
		for _, w := range s.watchers {
			if err := w.Close(); err != nil {
				s.log.Warn("close battery watch", "err", err)
			}
		}
		s.wg.Wait()
		close(s.done)
	})
	return nil
}
