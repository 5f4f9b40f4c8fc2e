package daemon

import (
	"fmt"
	"io"
	"net"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Command names accepted by the server, in help order.
const (
	CmdStart        = "start"
	CmdStop         = "stop"
	CmdRestart      = "restart"
	CmdGetInfo      = "get_info"
	CmdReloadConfig = "reload_config"
	CmdPlayPause    = "play_pause"
	CmdNext         = "next"
	CmdPrevious     = "previous"
	CmdHelp         = "help"
)

// Commands lists every command in the order help prints them.
var Commands = []string{
	CmdStart, CmdStop, CmdRestart, CmdGetInfo, CmdReloadConfig,
	CmdPlayPause, CmdNext, CmdPrevious, CmdHelp,
}

// IsCommand reports whether name is in the command table.
func IsCommand(name string) bool {
	for _, c := range Commands {
		if c == name {
			return true
		}
	}
	return false
}

// NormalizeCommand trims and lowercases a received command.
func NormalizeCommand(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// HelpText is the response to the help command.
func HelpText() string {
	var b strings.Builder
	b.WriteString("Available commands:")
	for _, c := range Commands {
		b.WriteString("\n - ")
		b.WriteString(c)
	}
	return b.String()
}

const (
	// DefaultPort is the loopback TCP port the server listens on.
	DefaultPort = 3000
	// DefaultTimeout bounds how long a client waits for one response.
	DefaultTimeout = 1000 * time.Millisecond
	// PollInterval is how often blocked reads wake up to check for
	// shutdown. It has no protocol meaning.
	PollInterval = time.Second
)

// Request is one command sent by a client.
type Request struct {
	ID      string `cbor:"id"`
	Command string `cbor:"command"`
}

// Response answers the Request with the same ID. Failed marks error
// text (unknown command, timeout, failed reload).
type Response struct {
	ID     string `cbor:"id"`
	Text   string `cbor:"text"`
	Failed bool   `cbor:"failed"`
}

// Endpoint is a network address the server listens on.
type Endpoint struct {
	Network string // "tcp" or "unix"
	Address string
}

// TCPEndpoint returns the loopback endpoint for port.
func TCPEndpoint(port int) Endpoint {
	return Endpoint{Network: "tcp", Address: net.JoinHostPort("127.0.0.1", strconv.Itoa(port))}
}

// UnixEndpoint returns a unix socket endpoint.
func UnixEndpoint(path string) Endpoint {
	return Endpoint{Network: "unix", Address: path}
}

func (e Endpoint) String() string {
	if e.Network == "unix" {
		return e.Address
	}
	return e.Network + "://" + e.Address
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("daemon: cbor encoder: %v", err))
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("daemon: cbor decoder: %v", err))
	}
}

func newEncoder(w io.Writer) *cbor.Encoder { return encMode.NewEncoder(w) }

func newDecoder(r io.Reader) *cbor.Decoder { return decMode.NewDecoder(r) }
