// Package sessionbus implements media.Provider over the D-Bus session
// bus using the MPRIS interfaces.
package sessionbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/b/mediapanel/pkg/media"
)

const (
	objectPath    = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	rootInterface = "org.mpris.MediaPlayer2"
)

// object is the part of dbus.BusObject a session needs.
type object interface {
	GetProperty(name string) (dbus.Variant, error)
	Call(method string, flags dbus.Flags, args ...any) *dbus.Call
}

// Bus is a media.Provider backed by a session bus connection.
type Bus struct {
	conn *dbus.Conn
}

// Connect opens a private connection to the session bus.
func Connect() (*Bus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}
	return &Bus{conn: conn}, nil
}

// Close closes the bus connection.
func (b *Bus) Close() error {
	return b.conn.Close()
}

// ListSessions returns every name owned on the bus.
func (b *Bus) ListSessions() ([]string, error) {
	var names []string
	if err := b.conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return nil, fmt.Errorf("listing bus names: %w", err)
	}
	return names, nil
}

// Session returns the player owning media.BusPrefix+id. The handle is
// lazy; a vanished player surfaces as errors from its methods.
func (b *Bus) Session(id string) (media.Session, error) {
	return &Session{id: id, obj: b.conn.Object(media.BusPrefix+id, objectPath)}, nil
}

// Session is one MPRIS player.
type Session struct {
	id  string
	obj object
}

func interfaceName(iface string) string {
	if iface == "" {
		return rootInterface
	}
	return rootInterface + "." + iface
}

// Property reads iface.key and returns it with D-Bus wrappers removed.
func (s *Session) Property(iface, key string) (any, error) {
	v, err := s.obj.GetProperty(interfaceName(iface) + "." + key)
	if err != nil {
		return nil, fmt.Errorf("%s: reading %s.%s: %w", s.id, iface, key, err)
	}
	return unwrap(v), nil
}

// Status reads PlaybackStatus.
func (s *Session) Status() (media.Status, error) {
	v, err := s.Property(media.PlayerInterface, "PlaybackStatus")
	if err != nil {
		return media.Stopped, err
	}
	str, _ := v.(string)
	return media.ParseStatus(str), nil
}

// Metadata reads the Metadata map.
func (s *Session) Metadata() (map[string]any, error) {
	v, err := s.Property(media.PlayerInterface, "Metadata")
	if err != nil {
		return nil, err
	}
	md, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: metadata has type %T", s.id, v)
	}
	return md, nil
}

// Send invokes the transport method for cmd.
func (s *Session) Send(cmd media.Command) error {
	method := interfaceName(media.PlayerInterface) + "." + cmd.String()
	if call := s.obj.Call(method, 0); call.Err != nil {
		return fmt.Errorf("%s: %s: %w", s.id, cmd, call.Err)
	}
	return nil
}

// unwrap converts D-Bus values into plain Go values: variants are
// flattened, object paths become strings and maps keyed by string get
// their values unwrapped.
func unwrap(v any) any {
	switch t := v.(type) {
	case dbus.Variant:
		return unwrap(t.Value())
	case dbus.ObjectPath:
		return string(t)
	case map[string]dbus.Variant:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = unwrap(val)
		}
		return out
	case []dbus.Variant:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = unwrap(val)
		}
		return out
	case []dbus.ObjectPath:
		out := make([]string, len(t))
		for i, p := range t {
			out[i] = string(p)
		}
		return out
	default:
		return v
	}
}
