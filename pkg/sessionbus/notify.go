package sessionbus

import (
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsName = "org.freedesktop.Notifications"
	notificationsPath = dbus.ObjectPath("/org/freedesktop/Notifications")
)

// Notifier posts desktop notifications through
// org.freedesktop.Notifications.
type Notifier struct {
	app string
	obj object
}

// NewNotifier returns a notifier sending as app.
func (b *Bus) NewNotifier(app string) *Notifier {
	return &Notifier{app: app, obj: b.conn.Object(notificationsName, notificationsPath)}
}

// Notify shows summary and body for timeout and returns the id the
// server assigned.
func (n *Notifier) Notify(summary, body string, timeout time.Duration) (uint32, error) {
	var id uint32
	call := n.obj.Call(notificationsName+".Notify", 0,
		n.app, uint32(0), "", summary, body,
		[]string{}, map[string]dbus.Variant{}, int32(timeout.Milliseconds()))
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("sending notification: %w", err)
	}
	return id, nil
}
