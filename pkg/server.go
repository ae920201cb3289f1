package pkg

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/creack/pty"
	petname "github.com/dustinkirkland/golang-petname"
	"github.com/gliderlabs/ssh"
	"github.com/rs/zerolog"
	gossh "golang.org/x/crypto/ssh"

	"github.com/qnkhuat/battlechess/pkg/config"
)

const (
	joinTimeout       = 10 * time.Second
	cleanIdleInterval = 30 * time.Second
)

type Server struct {
	cfg   config.ServerConfig
	match MatchConfig

	mu      sync.Mutex
	Matches map[string]*Match

	nextPlayer atomic.Int64
	ssh        *ssh.Server
	log        zerolog.Logger
}

func NewServer(cfg config.ServerConfig, match MatchConfig, log zerolog.Logger) *Server {
	log = log.With().Str("component", "server").Logger()
	match.Log = log
	return &Server{
		cfg:     cfg,
		match:   match,
		Matches: make(map[string]*Match),
		log:     log,
	}
}

// ListenAndServe accepts game connections on the configured port until ctx
// ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.cfg.Port)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Port, err)
	}
	return s.Serve(ctx, l)
}

func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.log.Info().Str("addr", l.Addr().String()).Msg("Listening")
	go func() {
		<-ctx.Done()
		l.Close()
	}()
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.log.Warn().Err(err).Msg("Failed to accept")
			continue
		}
		go s.HandleConn(conn)
	}
}

// HandleConn expects a MessageJoin as the first line, then serves the
// connection inside its match until it closes.
func (s *Server) HandleConn(conn net.Conn) {
	id := int(s.nextPlayer.Add(1))
	p := NewPlayer(conn, id, s.log)

	conn.SetReadDeadline(time.Now().Add(joinTimeout))
	join, err := s.readJoin(p)
	if err != nil {
		s.log.Debug().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("Rejected connection")
		if b, encErr := Encode(MessageReject{Reason: err.Error()}); encErr == nil {
			conn.Write(b)
		}
		conn.Close()
		return
	}
	conn.SetReadDeadline(time.Time{})

	p.Name = join.Name
	if join.Viewer {
		p.Color = Viewer
	}
	m := s.matchFor(join.MatchId)
	go p.HandleWrite()
	m.AddPlayer(p)
}

func (s *Server) readJoin(p *Player) (*MessageJoin, error) {
	t, err := p.Next()
	if err != nil {
		return nil, err
	}
	msg, err := Decode(t)
	if err != nil {
		return nil, err
	}
	join, ok := msg.(*MessageJoin)
	if !ok {
		return nil, fmt.Errorf("expected %s, got %s", TypeMessageJoin, t.MsgType)
	}
	return join, nil
}

// matchFor returns the match named id, creating it if needed. An empty id
// always creates a new match under a fresh name.
func (s *Server) matchFor(id string) *Match {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.Matches[id]; ok && id != "" {
		return m
	}
	for id == "" {
		id = petname.Generate(2, "-")
		if _, taken := s.Matches[id]; taken {
			id = ""
		}
	}
	m := NewMatch(id, s.match)
	s.Matches[id] = m
	s.log.Info().Str("match", id).Msg("Match created")
	return m
}

func (s *Server) Match(id string) (*Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.Matches[id]
	return m, ok
}

// CleanIdleMatches closes matches nobody has used for the configured idle
// timeout. It runs until ctx ends.
func (s *Server) CleanIdleMatches(ctx context.Context) {
	ticker := time.NewTicker(cleanIdleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanIdle()
		}
	}
}

func (s *Server) cleanIdle() int {
	s.mu.Lock()
	var idle []*Match
	for id, m := range s.Matches {
		if m.Idle(s.cfg.IdleTimeout) {
			idle = append(idle, m)
			delete(s.Matches, id)
		}
	}
	s.mu.Unlock()

	for _, m := range idle {
		s.log.Info().Str("match", m.Id).Msg("Closing idle match")
		m.Close()
	}
	return len(idle)
}

// Close shuts the SSH listener and every match.
func (s *Server) Close() {
	if s.ssh != nil {
		s.ssh.Close()
	}
	s.mu.Lock()
	matches := s.Matches
	s.Matches = make(map[string]*Match)
	s.mu.Unlock()
	for _, m := range matches {
		m.Close()
	}
}

// StartSSH serves the terminal client over SSH: each session runs the client
// binary in a pseudo-terminal connected to this server.
func (s *Server) StartSSH() error {
	srv := &ssh.Server{
		Addr:        s.cfg.SSHPort,
		IdleTimeout: s.cfg.IdleTimeout,
		Handler:     s.sshHandle,
	}
	if s.cfg.HostKeyFile != "" {
		if err := srv.SetOption(ssh.HostKeyFile(s.cfg.HostKeyFile)); err != nil {
			return fmt.Errorf("load host key: %w", err)
		}
	} else {
		signer, err := ephemeralHostKey()
		if err != nil {
			return err
		}
		srv.AddHostKey(signer)
		s.log.Warn().Msg("No SSH host key configured, using an ephemeral key")
	}
	s.ssh = srv

	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("SSH listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.log.Error().Err(err).Msg("SSH server stopped")
		}
	}()
	return nil
}

func ephemeralHostKey() (gossh.Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}
	signer, err := gossh.NewSignerFromKey(priv)
	if err != nil {
		return nil, fmt.Errorf("host key signer: %w", err)
	}
	return signer, nil
}

func (s *Server) sshHandle(sess ssh.Session) {
	log := s.log.With().Str("user", sess.User()).Str("remote", sess.RemoteAddr().String()).Logger()
	ptyReq, winCh, isPty := sess.Pty()
	if !isPty {
		io.WriteString(sess, "non-interactive terminals are not supported\n")
		sess.Exit(1)
		return
	}

	cmdCtx, cancelCmd := context.WithCancel(sess.Context())
	defer cancelCmd()

	args := []string{"--server", s.cfg.Port, "--name", sess.User()}
	if cmd := sess.Command(); len(cmd) > 0 {
		args = append(args, "--match", cmd[0])
	}
	cmd := exec.CommandContext(cmdCtx, s.cfg.ClientBinary, args...)
	cmd.Env = append(sess.Environ(), fmt.Sprintf("TERM=%s", ptyReq.Term))

	f, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(ptyReq.Window.Height),
		Cols: uint16(ptyReq.Window.Width),
	})
	if err != nil {
		io.WriteString(sess, fmt.Sprintf("failed to initialize pseudo-terminal: %s\n", err))
		sess.Exit(1)
		return
	}
	defer f.Close()
	log.Info().Msg("SSH session started")

	go func() {
		for win := range winCh {
			pty.Setsize(f, &pty.Winsize{Rows: uint16(win.Height), Cols: uint16(win.Width)})
		}
	}()

	go func() {
		io.Copy(f, sess)
	}()
	io.Copy(sess, f)

	f.Close()
	if err := cmd.Wait(); err != nil {
		log.Debug().Err(err).Msg("Client exited")
	}
	log.Info().Msg("SSH session ended")
}
