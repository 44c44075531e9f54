package sqlclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tuannm99/novakv/internal/sql/executor"
	"github.com/tuannm99/novakv/server/novakvwire"
)

var ErrNilClient = errors.New("sqlclient: nil client")

// ServerError is an error answered by the server. The connection stays
// usable after one, except for Code "frame" caused by an oversized request.
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s error: %s", e.Code, e.Message)
}

// Client talks to one novakv server over one connection. Each statement is
// a full request/response round trip; concurrent callers take turns.
type Client struct {
	conn net.Conn
	mu   sync.Mutex
	id   atomic.Uint64

	rwTimeout time.Duration // zero waits forever
}

func Dial(addr string, timeout time.Duration) (*Client, error) {
	return DialContext(context.Background(), addr, timeout)
}

func DialContext(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	d := net.Dialer{Timeout: timeout}
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: c}, nil
}

// SetRWTimeout bounds each round trip that has no context deadline.
func (c *Client) SetRWTimeout(d time.Duration) {
	if c == nil {
		return
	}
	c.rwTimeout = d
}

func (c *Client) RemoteAddr() string {
	if c == nil || c.conn == nil {
		return ""
	}
	return c.conn.RemoteAddr().String()
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) Exec(sql string) (*executor.Result, error) {
	return c.ExecContext(context.Background(), sql)
}

func (c *Client) ExecContext(ctx context.Context, sql string) (*executor.Result, error) {
	if c == nil || c.conn == nil {
		return nil, ErrNilClient
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := novakvwire.ExecuteRequest{ID: c.id.Add(1), SQL: sql}
	resp, err := c.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}

	switch {
	// frames the server could not decode come back with id 0
	case resp.ID != req.ID && resp.Code != novakvwire.CodeFrame:
		return nil, fmt.Errorf("sqlclient: response id mismatch: got=%d want=%d", resp.ID, req.ID)
	case resp.Error != "":
		return nil, &ServerError{Code: resp.Code, Message: resp.Error}
	case resp.Result == nil:
		return nil, fmt.Errorf("sqlclient: empty response for id %d", req.ID)
	}
	return resp.Result, nil
}

// roundTrip owns the connection for one request and its response.
func (c *Client) roundTrip(ctx context.Context, req novakvwire.ExecuteRequest) (novakvwire.ExecuteResponse, error) {
	var resp novakvwire.ExecuteResponse

	c.mu.Lock()
	defer c.mu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok && c.rwTimeout > 0 {
		deadline = time.Now().Add(c.rwTimeout)
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return resp, err
	}
	// a zero deadline keeps the connection open between statements
	defer func() { _ = c.conn.SetDeadline(time.Time{}) }()

	if err := novakvwire.WriteFrame(c.conn, req); err != nil {
		return resp, fmt.Errorf("sqlclient: send: %w", err)
	}
	if err := novakvwire.ReadFrame(c.conn, &resp); err != nil {
		return resp, fmt.Errorf("sqlclient: receive: %w", err)
	}
	return resp, nil
}
