package novakvwire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tuannm99/novakv/internal/sql/executor"
)

type ServerConfig struct {
	Addr         string
	MaxFrameSize int
	// IdleTimeout closes a connection that sends nothing for this long.
	// Zero keeps connections open until the peer or the server closes them.
	IdleTimeout time.Duration
	Logger      *slog.Logger
}

// Server accepts connections and answers every request frame with one
// response frame carrying the same ID. Requests on one connection are
// handled concurrently, so responses may arrive out of order.
type Server struct {
	cfg ServerConfig
	ex  *executor.Executor
	log *slog.Logger
}

func NewServer(cfg ServerConfig, ex *executor.Executor) *Server {
	if cfg.MaxFrameSize <= 0 {
		cfg.MaxFrameSize = MaxFrameSize
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{cfg: cfg, ex: ex, log: log}
}

// Run listens on cfg.Addr and serves until ctx is done.
func Run(ctx context.Context, cfg ServerConfig, ex *executor.Executor) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return NewServer(cfg, ex).Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then closes ln and
// every open connection and waits for their handlers to return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer func() { _ = ln.Close() }()

	s.log.Info("novakv tcp server listening",
		"addr", ln.Addr().String(),
		"max_frame_size", s.cfg.MaxFrameSize,
		"idle_timeout", s.cfg.IdleTimeout,
	)

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	var g errgroup.Group
	defer func() { _ = g.Wait() }()

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.log.Info("novakv tcp server stopped", "addr", ln.Addr().String())
				return nil
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff *= 2; backoff > time.Second {
				backoff = time.Second
			}
			s.log.Warn("accept failed", "err", err, "retry_in", backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		g.Go(func() error {
			s.handleConn(ctx, conn)
			return nil
		})
	}
}

// connWriter serializes response frames on one connection.
type connWriter struct {
	mu        sync.Mutex
	conn      net.Conn
	limit     int
	writeWait time.Duration
}

func (w *connWriter) write(resp ExecuteResponse) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writeWait > 0 {
		_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeWait))
	}
	err := WriteFrameLimit(w.conn, resp, w.limit)
	if errors.Is(err, ErrFrameTooLarge) {
		// the result does not fit in a frame; report that instead
		return WriteFrameLimit(w.conn, ExecuteResponse{
			ID:    resp.ID,
			Error: err.Error(),
			Code:  CodeFrame,
		}, w.limit)
	}
	return err
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	log := s.log.With("conn", uuid.NewString(), "remote", conn.RemoteAddr().String())
	log.Debug("connection opened")

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })

	w := &connWriter{conn: conn, limit: s.cfg.MaxFrameSize, writeWait: s.cfg.IdleTimeout}
	var inflight sync.WaitGroup
	defer func() {
		inflight.Wait()
		stop()
		_ = conn.Close()
		log.Debug("connection closed")
	}()

	for {
		if s.cfg.IdleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
		}

		var req ExecuteRequest
		err := ReadFrameLimit(conn, &req, s.cfg.MaxFrameSize)
		switch {
		case err == nil:
		case Resyncable(err):
			log.Warn("rejected request frame", "err", err)
			if werr := w.write(ExecuteResponse{Error: err.Error(), Code: CodeFrame}); werr != nil {
				return
			}
			continue
		case errors.Is(err, ErrFrameTooLarge):
			log.Warn("rejected request frame, closing connection", "err", err)
			_ = w.write(ExecuteResponse{Error: err.Error(), Code: CodeFrame})
			return
		case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed), ctx.Err() != nil:
			return
		default:
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				log.Info("closing idle connection", "idle_timeout", s.cfg.IdleTimeout)
			} else {
				log.Debug("read frame failed", "err", err)
			}
			return
		}

		inflight.Add(1)
		go func() {
			defer inflight.Done()
			s.exchange(ctx, log, w, req)
		}()
	}
}

// exchange runs one request and writes its response.
func (s *Server) exchange(ctx context.Context, log *slog.Logger, w *connWriter, req ExecuteRequest) {
	resp := ExecuteResponse{ID: req.ID}
	defer func() {
		if r := recover(); r != nil {
			log.Error("request panicked", "id", req.ID, "panic", r)
			resp = ExecuteResponse{
				ID:    req.ID,
				Error: fmt.Sprintf("internal error: %v", r),
				Code:  executor.CodeInternal,
			}
		}
		if err := w.write(resp); err != nil {
			log.Debug("write response failed", "id", req.ID, "err", err)
		}
	}()

	res, err := s.ex.ExecSQL(ctx, req.SQL)
	if err != nil {
		log.Debug("request failed", "id", req.ID, "err", err)
		resp.Error = err.Error()
		resp.Code = executor.ErrorCode(err)
		return
	}
	resp.Result = res
}
