package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/pathreplay/internal/metrics"
	"github.com/san-kum/pathreplay/internal/provider"
	"github.com/san-kum/pathreplay/internal/replay"
)

const (
	sweepInterval  = time.Minute
	maxMessageSize = 4 << 10
)

type Options struct {
	Provider      provider.Provider
	GridSize      int
	Algorithm     provider.Algorithm
	ObstacleCount int
	SessionTTL    time.Duration
	// PacingFor resolves the play pacing of an algorithm. Nil means no delay.
	PacingFor func(provider.Algorithm) replay.Pacing
	Logger    *slog.Logger
}

type Server struct {
	opts     Options
	sessions *SessionManager
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 10 * time.Minute
	}
	if opts.PacingFor == nil {
		opts.PacingFor = func(provider.Algorithm) replay.Pacing { return replay.Pacing{} }
	}
	logger := opts.Logger.With(slog.String("component", "bridge"))
	return &Server{
		opts:     opts,
		sessions: NewSessionManager(opts.SessionTTL, logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 << 10,
			// local tool; the page may be served from any dev origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (s *Server) Sessions() *SessionManager { return s.sessions }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ListenAndServe serves until ctx is cancelled, sweeping idle sessions in
// the background.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sessions.Run(ctx, sweepInterval)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("bridge listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.sessions.CloseAll()
		return err
	case <-ctx.Done():
	}

	s.sessions.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) newSession(conn *websocket.Conn) (*Session, error) {
	engine := replay.New(
		replay.WithLogger(s.opts.Logger),
		replay.WithObserver(metrics.Exporter{}),
	)
	ctx, cancel := context.WithCancel(context.Background())
	sess := &Session{
		ID:            uuid.New(),
		engine:        engine,
		loader:        provider.NewLoader(s.opts.Provider, engine, s.opts.GridSize, s.opts.Logger),
		conn:          conn,
		algorithm:     s.opts.Algorithm,
		obstacleCount: s.opts.ObstacleCount,
		ctx:           ctx,
		cancel:        cancel,
	}
	if err := sess.loader.Empty(); err != nil {
		cancel()
		return nil, err
	}
	return sess, nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	conn.SetReadLimit(maxMessageSize)

	sess, err := s.newSession(conn)
	if err != nil {
		s.logger.Error("session setup failed", slog.Any("error", err))
		_ = conn.Close()
		return
	}
	s.sessions.add(sess)
	defer s.sessions.Remove(sess.ID)

	log := s.logger.With(slog.String("session", sess.ID.String()))
	log.Info("session opened", slog.String("remote", r.RemoteAddr))

	if err := sess.writeJSON(sessionMessage{Type: MsgSession, SessionID: sess.ID.String(), Algorithm: sess.Algorithm().String()}); err != nil {
		return
	}
	if err := s.sendFrame(sess); err != nil {
		return
	}

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("read failed", slog.Any("error", err))
			}
			log.Info("session closed")
			return
		}
		sess.touch(s.sessions.now())

		if err := s.dispatch(sess, cmd); err != nil {
			log.Debug("command failed", slog.String("command", cmd.Type), slog.Any("error", err))
			if werr := sess.writeJSON(errorMessage{Type: MsgError, Command: cmd.Type, Error: err.Error()}); werr != nil {
				return
			}
		}
	}
}

func (s *Server) dispatch(sess *Session, cmd Command) error {
	e := sess.engine
	switch cmd.Type {
	case CmdEmpty:
		if err := sess.loader.Empty(); err != nil {
			return err
		}
		return s.sendFrame(sess)

	case CmdRegenerate:
		alg := sess.Algorithm()
		if cmd.Algorithm != "" {
			a, err := provider.ParseAlgorithm(cmd.Algorithm)
			if err != nil {
				return err
			}
			alg = a
			sess.setAlgorithm(a)
		}
		n := sess.obstacleCount
		if cmd.ObstacleCount > 0 {
			n = cmd.ObstacleCount
		}
		err := sess.loader.Regenerate(sess.ctx, alg, n)
		if err != nil && !errors.Is(err, provider.ErrEmptyMap) {
			return err
		}
		if ferr := s.sendFrame(sess); ferr != nil {
			return ferr
		}
		return err

	case CmdNext:
		snap, err := e.AdvanceOne()
		if err != nil {
			return err
		}
		return sess.writeJSON(frameOf(snap, e))

	case CmdPlay:
		ch, err := e.PlayToEnd(sess.ctx, s.opts.PacingFor(sess.Algorithm()))
		if err != nil {
			return err
		}
		go s.forward(sess, ch)
		return nil

	case CmdStop:
		e.Stop()
		return s.sendFrame(sess)

	case CmdReset:
		e.Reset()
		return s.sendFrame(sess)

	case CmdAlgorithm:
		a, err := provider.ParseAlgorithm(cmd.Algorithm)
		if err != nil {
			return err
		}
		sess.setAlgorithm(a)
		return nil
	}
	return fmt.Errorf("bridge: unknown command %q", cmd.Type)
}

// forward relays play snapshots until the channel closes. A failed write
// stops the play.
// forward relays play ticks to the session. The done tick is held back until
// the channel closes, which happens only after the engine has released its
// play flag, so a command sent in reply to it is never rejected as in
// progress.
func (s *Server) forward(sess *Session, ch <-chan replay.Snapshot) {
	var final *replay.Snapshot
	for snap := range ch {
		if snap.Done {
			final = &snap
			continue
		}
		if err := sess.writeJSON(frameOf(snap, sess.engine)); err != nil {
			go sess.engine.Stop()
			for range ch {
			}
			return
		}
	}
	if err := sess.engine.Err(); err != nil {
		_ = sess.writeJSON(errorMessage{Type: MsgError, Command: CmdPlay, Error: err.Error()})
		return
	}
	if final != nil {
		_ = sess.writeJSON(frameOf(*final, sess.engine))
	}
}

func (s *Server) sendFrame(sess *Session) error {
	return sess.writeJSON(frameOf(sess.engine.Snapshot(), sess.engine))
}
