package sqlclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/tuannm99/novakv/internal/engine"
	"github.com/tuannm99/novakv/internal/record"
	"github.com/tuannm99/novakv/internal/sql/executor"
	"github.com/tuannm99/novakv/internal/testutil"
	"github.com/tuannm99/novakv/server/novakvwire"
)

func startServer(t *testing.T, maxFrame int) string {
	t.Helper()

	db, err := engine.Open("default_table", []record.Column{
		{Name: "id", Schema: record.BoundedString(12)},
		{Name: "counter", Schema: record.IntegerSchema()},
	})
	require.NoError(t, err)

	log := testutil.NewTestLogger(t)
	srv := novakvwire.NewServer(novakvwire.ServerConfig{
		MaxFrameSize: maxFrame,
		Logger:       log,
	}, executor.NewExecutor(db, executor.WithLogger(log)))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ln.Addr().String()
}

func dial(t *testing.T, addr string) *Client {
	t.Helper()
	cli, err := Dial(addr, time.Second)
	require.NoError(t, err)
	cli.SetRWTimeout(5 * time.Second)
	t.Cleanup(func() { _ = cli.Close() })
	return cli
}

func TestClient_InsertAndSelectLoop(t *testing.T) {
	cli := dial(t, startServer(t, 0))

	for i := 0; i < 30; i++ {
		if i%2 == 0 {
			res, err := cli.Exec(fmt.Sprintf("INSERT INTO default_table (id, counter) VALUES('key_%d', 0);", i))
			require.NoError(t, err)
			assert.Equal(t, int64(1), res.AffectedRows)
			continue
		}
		res, err := cli.Exec("SELECT * FROM default_table;")
		require.NoError(t, err)
		assert.LessOrEqual(t, len(res.Rows), executor.DefaultReadLimit)
		assert.Equal(t, (i+1)/2, len(res.Rows))
	}
}

func TestClient_ServerError(t *testing.T) {
	cli := dial(t, startServer(t, 0))

	_, err := cli.Exec("INSERT INTO default_table VALUES ('k', 'not a number')")
	var se *ServerError
	require.True(t, errors.As(err, &se), "got %T: %v", err, err)
	assert.Equal(t, executor.CodeSchema, se.Code)
	assert.Contains(t, se.Error(), "schema error")

	res, err := cli.Exec("SELECT * FROM default_table")
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

func TestClient_OversizedRequest(t *testing.T) {
	cli := dial(t, startServer(t, 256))

	_, err := cli.Exec("SELECT * FROM default_table WHERE id = '" + strings.Repeat("x", 512) + "'")
	var se *ServerError
	require.True(t, errors.As(err, &se), "got %T: %v", err, err)
	assert.Equal(t, novakvwire.CodeFrame, se.Code)

	// the server closed the connection
	_, err = cli.Exec("SELECT * FROM default_table")
	assert.Error(t, err)
}

func TestClient_ConcurrentExecSerializes(t *testing.T) {
	cli := dial(t, startServer(t, 0))

	var g errgroup.Group
	for w := 0; w < 4; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < 10; i++ {
				sql := fmt.Sprintf("INSERT INTO default_table VALUES ('w%d_%d', %d)", w, i, i)
				if _, err := cli.Exec(sql); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	res, err := cli.Exec("SELECT id FROM default_table")
	require.NoError(t, err)
	assert.Len(t, res.Rows, executor.DefaultReadLimit)
}

func TestClient_CancelledContext(t *testing.T) {
	cli := dial(t, startServer(t, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cli.ExecContext(ctx, "SELECT * FROM default_table")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Nil(t *testing.T) {
	var cli *Client
	_, err := cli.Exec("SELECT 1")
	assert.ErrorIs(t, err, ErrNilClient)
	assert.NoError(t, cli.Close())
}

func TestClient_RWTimeout(t *testing.T) {
	// accepts but never answers
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	cli, err := Dial(ln.Addr().String(), time.Second)
	require.NoError(t, err)
	defer func() { _ = cli.Close() }()
	cli.SetRWTimeout(50 * time.Millisecond)

	start := time.Now()
	_, err = cli.Exec("SELECT * FROM default_table")
	require.Error(t, err)

	var ne net.Error
	require.True(t, errors.As(err, &ne), "got %T: %v", err, err)
	assert.True(t, ne.Timeout())
	assert.Less(t, time.Since(start), 2*time.Second)

	conn := <-accepted
	_ = conn.Close()
}
