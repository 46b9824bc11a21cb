// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/MKhiriev/go-gatekeeper/internal/app"
	"github.com/MKhiriev/go-gatekeeper/internal/logger"
	"github.com/MKhiriev/go-gatekeeper/internal/store"
	"github.com/awnumar/memguard"
	"github.com/google/uuid"
)

const (
	// DefaultReadTimeout bounds a read step on connections that cannot be
	// read without blocking.
	DefaultReadTimeout = time.Millisecond
	// DefaultWriteTimeout bounds a write on connections that cannot be
	// written without blocking.
	DefaultWriteTimeout = 5 * time.Second
	// DefaultMaxLoginAttempts is the number of failed logins tolerated.
	DefaultMaxLoginAttempts = 2

	readBufferSize   = 1024
	maxLineLength    = 4096
	maxPendingOutput = 64 << 10
)

// nonBlockingIO performs a single read or write attempt that returns
// errWouldBlock instead of waiting.
type nonBlockingIO interface {
	read(buf []byte) (int, error)
	write(p []byte) (int, error)
}

type state int

const (
	stateNew state = iota
	stateUsername
	statePassword
	stateMenu
	stateNewPassword
	stateConfirmPassword
	stateClosed
)

// Options tunes a [Session]. Zero fields take the package defaults.
// The timeouts only apply to connections without non-blocking socket access,
// such as in-memory pipes.
type Options struct {
	MaxLoginAttempts int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxLoginAttempts <= 0 {
		o.MaxLoginAttempts = DefaultMaxLoginAttempts
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
	return o
}

// Session is one accepted client connection and the state of its dialogue.
// It is not safe for concurrent use; the server loop owns it.
type Session struct {
	id     uuid.UUID
	conn   net.Conn
	nb     nonBlockingIO
	store  store.CredentialStore
	opts   Options
	logger *logger.Logger

	state       state
	username    string
	newPassword string
	failures    int

	readBuf  []byte
	input    []byte
	output   []byte
	received int64
}

// New wraps an accepted connection. Nothing is sent until
// [Session.StartAuthentication].
func New(conn net.Conn, credentials store.CredentialStore, opts Options, log *logger.Logger) *Session {
	id := newID()

	return &Session{
		id:      id,
		conn:    conn,
		nb:      newNonBlockingIO(conn),
		store:   credentials,
		opts:    opts.withDefaults(),
		logger:  log.WithFields("conn_id", id.String(), "peer", conn.RemoteAddr().String()),
		state:   stateNew,
		readBuf: make([]byte, readBufferSize),
	}
}

// newID returns a time-ordered identifier so that log entries sort by
// connection age.
func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// ID returns the identifier used to correlate log entries of this session.
func (s *Session) ID() string {
	return s.id.String()
}

// IsConnected reports whether the session is still open.
func (s *Session) IsConnected() bool {
	return s.state != stateClosed
}

// PeerAddr returns the remote address of the connection.
func (s *Session) PeerAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// SendText queues text for the peer and writes as much of it as the socket
// accepts right away. The rest goes out on later steps. A write failure, or a
// peer that lets more than maxPendingOutput bytes pile up, closes the session.
func (s *Session) SendText(text string) error {
	if s.state == stateClosed {
		return ErrClosed
	}

	s.output = append(s.output, text...)
	return s.flush()
}

func (s *Session) flush() error {
	if len(s.output) == 0 {
		return nil
	}

	if s.nb == nil {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout)); err != nil {
			s.fail(err)
			return err
		}
		_, err := s.conn.Write(s.output)
		s.output = s.output[:0]
		if err != nil {
			s.fail(err)
			return err
		}
		return nil
	}

	n, err := s.nb.write(s.output)
	if err != nil && !errors.Is(err, errWouldBlock) {
		s.output = nil
		s.fail(err)
		return err
	}
	s.output = append(s.output[:0], s.output[n:]...)

	if len(s.output) > maxPendingOutput {
		s.logger.Warn().Int("pending", len(s.output)).Msg("dropping session")
		s.output = nil
		s.Close()
		return errSlowPeer
	}
	return nil
}

// StartAuthentication prompts for the username. It has no effect on a
// session that already started.
func (s *Session) StartAuthentication() {
	if s.state != stateNew {
		return
	}

	s.state = stateUsername
	_ = s.SendText(app.PromptUsername)
}

// HandleConnection performs one non-blocking step: it flushes queued output,
// reads whatever the peer has already sent and acts on every complete line.
// A closed peer or a read error closes the session.
func (s *Session) HandleConnection(ctx context.Context) {
	if s.state == stateClosed {
		return
	}
	if err := s.flush(); err != nil {
		return
	}

	n, err := s.read()
	if n > 0 {
		s.received += int64(n)
		s.input = append(s.input, s.readBuf[:n]...)
		memguard.WipeBytes(s.readBuf[:n])

		if lineErr := s.processInput(ctx); lineErr != nil {
			s.logger.Warn().Err(lineErr).Int("buffered", len(s.input)).Msg("dropping session")
			_ = s.SendText(app.MsgLineTooLong)
			s.Close()
			return
		}
	}
	if s.state == stateClosed {
		return
	}

	switch {
	case err == nil, errors.Is(err, errWouldBlock), errors.Is(err, os.ErrDeadlineExceeded):
	case errors.Is(err, io.EOF):
		s.logger.Info().Msg("peer closed the connection")
		s.Close()
	default:
		s.fail(err)
	}
}

func (s *Session) read() (int, error) {
	if s.nb != nil {
		return s.nb.read(s.readBuf)
	}

	if err := s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout)); err != nil {
		return 0, err
	}
	return s.conn.Read(s.readBuf)
}

// Close makes one last attempt to deliver queued output, closes the
// underlying connection and wipes buffered input. It is idempotent.
func (s *Session) Close() error {
	if s.state == stateClosed {
		return nil
	}
	s.state = stateClosed
	s.newPassword = ""
	memguard.WipeBytes(s.input)
	s.input = nil

	if s.nb != nil && len(s.output) > 0 {
		_, _ = s.nb.write(s.output)
	}
	s.output = nil

	s.logger.Info().
		Str("user", s.username).
		Int64("bytes_in", s.received).
		Msg("connection closed")
	return s.conn.Close()
}

func (s *Session) fail(err error) {
	if s.state == stateClosed {
		return
	}
	s.logger.Warn().Err(err).Msg("connection error")
	s.Close()
}

// processInput handles every complete line in the input buffer. The consumed
// bytes are wiped since they may hold a password.
func (s *Session) processInput(ctx context.Context) error {
	for s.state != stateClosed {
		idx := bytes.IndexByte(s.input, '\n')
		if idx < 0 {
			break
		}

		line := strings.TrimSuffix(string(s.input[:idx]), "\r")
		memguard.WipeBytes(s.input[:idx+1])
		s.input = s.input[idx+1:]

		s.handleLine(ctx, line)
	}

	if s.state != stateClosed && len(s.input) > maxLineLength {
		return errLineTooLong
	}

	return nil
}

func (s *Session) handleLine(ctx context.Context, line string) {
	switch s.state {
	case stateUsername:
		s.username = strings.TrimSpace(line)
		s.state = statePassword
		_ = s.SendText(app.PromptPassword)
	case statePassword:
		s.login(ctx, line)
	case stateMenu:
		s.command(strings.TrimSpace(line))
	case stateNewPassword:
		if line == "" {
			s.toMenu(app.MsgEmptyPassword)
			return
		}
		s.newPassword = line
		s.state = stateConfirmPassword
		_ = s.SendText(app.PromptConfirmPassword)
	case stateConfirmPassword:
		s.changePassword(ctx, line)
	}
}

func (s *Session) login(ctx context.Context, password string) {
	ok, err := s.store.Verify(ctx, s.username, password)
	if err != nil {
		s.logger.Err(err).Str("user", s.username).Msg("credential check failed")
	}

	if ok {
		s.failures = 0
		s.logger.Info().Str("user", s.username).Msg("user authenticated")
		s.toMenu(fmt.Sprintf(app.MsgLoggedIn, s.username) + app.MsgMenu)
		return
	}

	s.failures++
	s.logger.Warn().
		Str("user", s.username).
		Int("failures", s.failures).
		Msg("authentication failed")

	if err := s.SendText(app.MsgAuthenticationFailed); err != nil {
		return
	}
	if s.failures >= s.opts.MaxLoginAttempts {
		_ = s.SendText(app.MsgTooManyAttempts)
		s.Close()
		return
	}

	s.username = ""
	s.state = stateUsername
	_ = s.SendText(app.PromptUsername)
}

func (s *Session) command(cmd string) {
	switch strings.ToLower(cmd) {
	case "":
		s.toMenu("")
	case "hello":
		s.toMenu(fmt.Sprintf(app.MsgHello, s.username))
	case "menu":
		s.toMenu(app.MsgMenu)
	case "passwd":
		s.state = stateNewPassword
		_ = s.SendText(app.PromptNewPassword)
	case "exit":
		_ = s.SendText(app.MsgGoodbye)
		s.Close()
	default:
		s.toMenu(app.MsgUnknownCommand)
	}
}

func (s *Session) changePassword(ctx context.Context, confirmation string) {
	password := s.newPassword
	s.newPassword = ""

	if confirmation != password {
		s.toMenu(app.MsgPasswordMismatch)
		return
	}

	if err := s.store.ChangePassword(ctx, s.username, password); err != nil {
		s.logger.Err(err).Str("user", s.username).Msg("password change failed")
		s.toMenu(app.MsgInternalServerError)
		return
	}

	s.logger.Info().Str("user", s.username).Msg("password changed")
	s.toMenu(app.MsgPasswordChanged)
}

// toMenu sends msg followed by the command prompt.
func (s *Session) toMenu(msg string) {
	s.state = stateMenu
	_ = s.SendText(msg + app.PromptCommand)
}
