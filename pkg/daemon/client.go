package daemon

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

var (
	// ErrTimeout is returned with the synthesized response when the
	// server does not answer within the client timeout.
	ErrTimeout = errors.New("timed out waiting for response")
	// ErrConnClosed is returned once the server has closed the connection.
	ErrConnClosed = errors.New("connection closed")
)

// Client sends commands over one persistent connection. Calls are
// serialized; a response arriving after its call timed out is dropped.
type Client struct {
	conn    net.Conn
	enc     *cbor.Encoder
	timeout time.Duration

	mu        sync.Mutex
	responses chan Response
	done      chan struct{}
	readErr   error
}

// Dial connects to the server at endpoint. A timeout <= 0 means
// DefaultTimeout.
func Dial(endpoint Endpoint, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	conn, err := net.DialTimeout(endpoint.Network, endpoint.Address, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}
	c := &Client{
		conn:      conn,
		enc:       newEncoder(conn),
		timeout:   timeout,
		responses: make(chan Response, 8),
		done:      make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.done)
	dec := newDecoder(c.conn)
	for {
		var resp Response
		if err := dec.Decode(&resp); err != nil {
			c.readErr = err
			return
		}
		select {
		case c.responses <- resp:
		default:
			// Nobody is waiting for it.
		}
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Call sends command and waits for its response. On timeout it returns
// a failed response describing the timeout together with ErrTimeout;
// the connection stays usable.
func (c *Client) Call(command string) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.NewString()
	c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if err := c.enc.Encode(Request{ID: id, Command: command}); err != nil {
		return Response{}, fmt.Errorf("sending %q: %w", command, err)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	for {
		select {
		case resp := <-c.responses:
			if resp.ID != id {
				continue
			}
			return resp, nil
		case <-c.done:
			return Response{}, fmt.Errorf("%w: %v", ErrConnClosed, c.readErr)
		case <-timer.C:
			return Response{
				ID:     id,
				Text:   fmt.Sprintf("%s: timed out after %dms", command, c.timeout.Milliseconds()),
				Failed: true,
			}, ErrTimeout
		}
	}
}
