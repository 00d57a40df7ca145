// Package alert classifies an aggregate battery reading into the state
// ladder the daemon reports on: AC, Discharging, Warning, Critical, Danger
// and Full. The ladder is pure bookkeeping; reading sysfs and sending
// notifications belong to the callers.
package alert

// State is one rung of the battery state ladder.
type State int

const (
	AC State = iota
	Discharging
	Warning
	Critical
	Danger
	Full
)

func (s State) String() string {
	switch s {
	case AC:
		return "ac"
	case Discharging:
		return "discharging"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	case Danger:
		return "danger"
	case Full:
		return "full"
	default:
		return "unknown"
	}
}

// Thresholds are charge percentages; a zero threshold disables that rung.
type Thresholds struct {
	Warning  int
	Critical int
	Danger   int
}

// Classify maps one aggregate reading onto the ladder. Discharging wins
// over full (a battery cannot meaningfully be both), and the lowest
// enabled threshold at or above the level wins among the low rungs.
func Classify(level int, discharging, full bool, th Thresholds) State {
	if discharging {
		switch {
		case th.Danger > 0 && level <= th.Danger:
			return Danger
		case th.Critical > 0 && level <= th.Critical:
			return Critical
		case th.Warning > 0 && level <= th.Warning:
			return Warning
		default:
			return Discharging
		}
	}
	if full {
		return Full
	}
	return AC
}

// Tracker remembers the previous rung so callers act on transitions only.
// The zero value starts at AC, matching a daemon that begins plugged in;
// the first Update reports a transition if the actual state differs.
type Tracker struct {
	last State
}

// Update records the new state and reports whether it changed.
func (t *Tracker) Update(s State) bool {
	if s == t.last {
		return false
	}
	t.last = s
	return true
}

// Last returns the most recently recorded state.
func (t *Tracker) Last() State {
	return t.last
}
