// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package httputil

import (
	"net"
	"net/http"
	"time"

	"golang.org/x/net/netutil"
)

const (
	_connectionCount = 400
)

type (
	// ServerConfig is the timeouts of a http server
	ServerConfig struct {
		ReadHeaderTimeout time.Duration
		ReadTimeout       time.Duration
		WriteTimeout      time.Duration
		IdleTimeout       time.Duration
	}

	// ServerOption sets a server timeout
	ServerOption func(*ServerConfig)

	// ListenerOption sets a listener option
	ListenerOption func(*listenerConfig)

	listenerConfig struct {
		ConnectionCount int
	}

	// tcpKeepAliveListener sets TCP keep-alive timeouts on accepted connections, so dead
	// connections eventually go away.
	tcpKeepAliveListener struct {
		*net.TCPListener
	}
)

// DefaultServerConfig is the default timeouts of a http server
var DefaultServerConfig = ServerConfig{
	ReadHeaderTimeout: 2 * time.Second,
	ReadTimeout:       5 * time.Second,
	WriteTimeout:      5 * time.Second,
	IdleTimeout:       120 * time.Second,
}

// ReadHeaderTimeout sets the header read timeout
func ReadHeaderTimeout(d time.Duration) ServerOption {
	return func(cfg *ServerConfig) { cfg.ReadHeaderTimeout = d }
}

// SetTimeout sets the read, write and idle timeouts
func SetTimeout(r, w, i time.Duration) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.ReadTimeout = r
		cfg.WriteTimeout = w
		cfg.IdleTimeout = i
	}
}

// SetConnectionCount sets the maximum number of connections of a listener
func SetConnectionCount(c int) ListenerOption {
	return func(cfg *listenerConfig) { cfg.ConnectionCount = c }
}

// NewServer creates a HTTP server with time out settings.
func NewServer(addr string, handler http.Handler, opts ...ServerOption) *http.Server {
	cfg := DefaultServerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &http.Server{
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		Addr:              addr,
		Handler:           handler,
	}
}

// LimitListener creates a tcp keep-alive listener with 400 maximum connections.
func LimitListener(addr string, opts ...ListenerOption) (net.Listener, error) {
	if addr == "" {
		addr = ":http"
	}
	cfg := listenerConfig{_connectionCount}
	for _, opt := range opts {
		opt(&cfg)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return netutil.LimitListener(tcpKeepAliveListener{ln.(*net.TCPListener)}, cfg.ConnectionCount), nil
}

func (ln tcpKeepAliveListener) Accept() (net.Conn, error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	if err := tc.SetKeepAlive(true); err != nil {
		return nil, err
	}
	if err := tc.SetKeepAlivePeriod(3 * time.Minute); err != nil {
		return nil, err
	}
	return tc, nil
}
