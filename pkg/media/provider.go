package media

// BusPrefix is the namespace of media player session names.
const BusPrefix = "org.mpris.MediaPlayer2."

// PlayerInterface is the property interface holding playback state.
const PlayerInterface = "Player"

// Provider enumerates sessions on the media bus.
type Provider interface {
	// ListSessions returns every name on the bus, including names
	// outside BusPrefix.
	ListSessions() ([]string, error)
	// Session returns a handle for the session id (BusPrefix removed).
	Session(id string) (Session, error)
}

// Session is the capability surface of one playback session.
type Session interface {
	Status() (Status, error)
	// Property reads key on the sub-interface iface ("" for the root
	// interface, "Player" for playback).
	Property(iface, key string) (any, error)
	// Metadata returns the raw, namespaced metadata map.
	Metadata() (map[string]any, error)
	Send(cmd Command) error
}

// BoolProperty reads a boolean property, treating errors and non-bool
// values as false.
func BoolProperty(s Session, iface, key string) bool {
	v, err := s.Property(iface, key)
	if err != nil {
		return false
	}
	b, _ := v.(bool)
	return b
}
