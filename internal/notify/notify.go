// Package notify sends desktop notifications over the session bus using
// the org.freedesktop.Notifications interface.
package notify

import (
	"fmt"

	godbus "github.com/godbus/dbus/v5"
)

const (
	busName     = "org.freedesktop.Notifications"
	objPath     = "/org/freedesktop/Notifications"
	notifyCall  = "org.freedesktop.Notifications.Notify"
	closeCall   = "org.freedesktop.Notifications.CloseNotification"
	neverExpire = int32(0)
)

// Urgency is the freedesktop notification urgency hint.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notifier posts notifications on behalf of one application. Each Send
// replaces the previous notification rather than stacking a new one, so a
// battery draining through several thresholds shows a single updating
// bubble.
type Notifier struct {
	conn    *godbus.Conn
	appName string
	lastID  uint32
}

// New connects to the session bus. Callers on headless systems should
// treat failure as "no notifications", not as fatal.
func New(appName string) (*Notifier, error) {
	conn, err := godbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &Notifier{conn: conn, appName: appName}, nil
}

// Send posts a notification, replacing the previous one from this Notifier.
func (n *Notifier) Send(urgency Urgency, summary, body string) error {
	obj := n.conn.Object(busName, objPath)
	call := obj.Call(notifyCall, 0,
		n.appName,
		n.lastID,
		"",
		summary,
		body,
		[]string{},
		map[string]godbus.Variant{"urgency": godbus.MakeVariant(byte(urgency))},
		neverExpire,
	)
	if call.Err != nil {
		return fmt.Errorf("send notification: %w", call.Err)
	}
	return call.Store(&n.lastID)
}

// Dismiss withdraws the currently displayed notification, if any.
func (n *Notifier) Dismiss() error {
	if n.lastID == 0 {
		return nil
	}
	call := n.conn.Object(busName, objPath).Call(closeCall, 0, n.lastID)
	if call.Err != nil {
		return fmt.Errorf("close notification: %w", call.Err)
	}
	n.lastID = 0
	return nil
}

// Close releases the bus connection.
func (n *Notifier) Close() error {
	return n.conn.Close()
}
