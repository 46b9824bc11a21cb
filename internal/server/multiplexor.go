// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-gatekeeper/internal/allowlist"
	"github.com/MKhiriev/go-gatekeeper/internal/config"
	"github.com/MKhiriev/go-gatekeeper/internal/logger"
)

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// State is the lifecycle stage of a [Multiplexor].
type State int32

const (
	StateBound State = iota
	StateListening
	StateShutDown
)

func (s State) String() string {
	switch s {
	case StateBound:
		return "bound"
	case StateListening:
		return "listening"
	case StateShutDown:
		return "shut down"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Multiplexor serves many clients from one goroutine. Connections are kept
// in accept order and each gets one [Conn.HandleConnection] call per
// iteration of the loop.
type Multiplexor struct {
	listener *pollListener
	allow    *allowlist.AllowList
	newConn  ConnFactory
	cfg      config.Server
	logger   *logger.Logger

	state   atomic.Int32
	conns   []Conn
	backoff time.Duration
}

// NewMultiplexor loads the allow-list and binds the listening socket. The
// returned multiplexor is in [StateBound].
func NewMultiplexor(cfg config.Server, newConn ConnFactory, logger *logger.Logger) (*Multiplexor, error) {
	allow, err := allowlist.Load(cfg.AllowListFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFatalStartup, err)
	}
	logger.Info().
		Str("file", cfg.AllowListFile).
		Int("addresses", allow.Len()).
		Msg("allow-list loaded")

	listener, err := listen(cfg.Address)
	if err != nil {
		return nil, err
	}

	m := &Multiplexor{
		listener: listener,
		allow:    allow,
		newConn:  newConn,
		cfg:      cfg,
		logger:   logger,
	}
	m.state.Store(int32(StateBound))

	return m, nil
}

// Addr returns the bound address.
func (m *Multiplexor) Addr() net.Addr {
	return m.listener.Addr()
}

// State returns the current lifecycle stage. It is safe to call from any
// goroutine.
func (m *Multiplexor) State() State {
	return State(m.state.Load())
}

// Run serves clients until ctx is cancelled or [Multiplexor.Shutdown] is
// called, and then returns nil. It fails with [ErrNotBound] unless the
// multiplexor is in [StateBound].
func (m *Multiplexor) Run(ctx context.Context) error {
	if !m.state.CompareAndSwap(int32(StateBound), int32(StateListening)) {
		return fmt.Errorf("%w: state is %s", ErrNotBound, m.State())
	}
	m.logger.Info().Str("address", m.Addr().String()).Msg("server started")

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := m.step(ctx); err != nil {
			m.Shutdown()
			m.logger.Info().Int("open_connections", len(m.conns)).Msg("server stopped")
			return nil
		}

		select {
		case <-ctx.Done():
			m.Shutdown()
			m.logger.Info().Int("open_connections", len(m.conns)).Msg("server stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Shutdown closes the listening socket. Open connections are left alone.
// It may be called from any goroutine and more than once.
func (m *Multiplexor) Shutdown() {
	if State(m.state.Swap(int32(StateShutDown))) == StateShutDown {
		return
	}

	if err := m.listener.Close(); err != nil {
		m.logger.Err(err).Msg("closing listener")
	}
}

// step runs one iteration of the loop. It returns net.ErrClosed once the
// listener has been closed.
func (m *Multiplexor) step(ctx context.Context) error {
	conn, err := m.listener.acceptPending()
	switch {
	case err == nil:
		m.backoff = 0
		m.admit(conn)
	case errors.Is(err, errNoPendingConnection):
	case errors.Is(err, net.ErrClosed):
		return net.ErrClosed
	default:
		m.logger.Err(fmt.Errorf("%w: %w", ErrSocket, err)).Msg("accept failed")
		m.pause(ctx)
	}

	m.serveConnections(ctx)
	return nil
}

// admit checks the peer against the allow-list and, if it is listed, wraps
// the socket, greets the client and starts authentication.
func (m *Multiplexor) admit(conn net.Conn) {
	peer := conn.RemoteAddr()
	if !m.allow.Permits(peer) {
		m.logger.Warn().Str("peer", peer.String()).Msg("attempted connection by IP not on allow-list")
		_ = conn.Close()
		return
	}

	c := m.newConn(conn)
	m.conns = append(m.conns, c)
	m.logger.Info().
		Str("conn_id", c.ID()).
		Str("peer", peer.String()).
		Int("active", len(m.conns)).
		Msg("new connection")

	if m.cfg.WelcomeMessage != "" {
		if err := c.SendText(m.cfg.WelcomeMessage); err != nil {
			m.logger.Warn().Err(err).Str("conn_id", c.ID()).Msg("sending welcome message")
			return
		}
	}
	c.StartAuthentication()
}

// serveConnections drops closed connections and steps the rest, keeping
// accept order.
func (m *Multiplexor) serveConnections(ctx context.Context) {
	live := m.conns[:0]
	for _, c := range m.conns {
		if !c.IsConnected() {
			m.logger.Info().Str("conn_id", c.ID()).Msg("connection removed")
			continue
		}

		c.HandleConnection(ctx)
		live = append(live, c)
	}

	clear(m.conns[len(live):])
	m.conns = live
}

// pause sleeps after a failed accept. The delay doubles on every
// consecutive failure up to maxAcceptBackoff.
func (m *Multiplexor) pause(ctx context.Context) {
	if m.backoff == 0 {
		m.backoff = minAcceptBackoff
	} else {
		m.backoff = min(2*m.backoff, maxAcceptBackoff)
	}

	timer := time.NewTimer(m.backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
