// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package httputil

import (
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	r := require.New(t)
	handler := http.NewServeMux()

	s := NewServer(":9009", handler, ReadHeaderTimeout(time.Second))
	r.Equal(":9009", s.Addr)
	r.Equal(handler, s.Handler)
	r.Equal(time.Second, s.ReadHeaderTimeout)
	r.Equal(DefaultServerConfig.ReadTimeout, s.ReadTimeout)
	r.Equal(DefaultServerConfig.WriteTimeout, s.WriteTimeout)
	r.Equal(DefaultServerConfig.IdleTimeout, s.IdleTimeout)

	s = NewServer(":9009", handler, SetTimeout(time.Second, 2*time.Second, 3*time.Second))
	r.Equal(DefaultServerConfig.ReadHeaderTimeout, s.ReadHeaderTimeout)
	r.Equal(time.Second, s.ReadTimeout)
	r.Equal(2*time.Second, s.WriteTimeout)
	r.Equal(3*time.Second, s.IdleTimeout)
}

func TestLimitListener(t *testing.T) {
	t.Run("missing port", func(t *testing.T) {
		ln, err := LimitListener("myAddress")
		require.EqualError(t, err, "listen tcp: address myAddress: missing port in address")
		require.Nil(t, ln)
	})

	t.Run("caps accepted connections", func(t *testing.T) {
		r := require.New(t)
		ln, err := LimitListener("127.0.0.1:0", SetConnectionCount(1))
		r.NoError(err)
		defer ln.Close()

		accepted := make(chan net.Conn, 2)
		go func() {
			for {
				c, err := ln.Accept()
				if err != nil {
					return
				}
				accepted <- c
			}
		}()

		c1, err := net.Dial("tcp", ln.Addr().String())
		r.NoError(err)
		defer c1.Close()
		first := <-accepted

		c2, err := net.Dial("tcp", ln.Addr().String())
		r.NoError(err)
		defer c2.Close()
		select {
		case <-accepted:
			r.FailNow("second connection accepted above the cap")
		case <-time.After(100 * time.Millisecond):
		}

		r.NoError(first.Close())
		select {
		case c := <-accepted:
			r.NoError(c.Close())
		case <-time.After(2 * time.Second):
			r.FailNow("second connection not accepted after the first closed")
		}
	})
}
