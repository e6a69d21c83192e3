// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package probe

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func startProbe(t *testing.T, opts ...Option) (*Server, string) {
	t.Helper()
	s := New(0, opts...)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	require.NotZero(t, s.Port())
	return s, fmt.Sprintf("http://127.0.0.1:%d", s.Port())
}

func requireCodes(t *testing.T, base string, codes map[string]int) {
	t.Helper()
	for endpoint, code := range codes {
		resp, err := http.Get(base + endpoint)
		require.NoError(t, err)
		require.Equal(t, code, resp.StatusCode, endpoint)
		require.NoError(t, resp.Body.Close())
	}
}

func TestBasicProbe(t *testing.T) {
	s, base := startProbe(t)
	notReady := map[string]int{
		"/liveness":  http.StatusOK,
		"/readiness": http.StatusServiceUnavailable,
		"/health":    http.StatusServiceUnavailable,
	}
	requireCodes(t, base, notReady)

	s.Ready()
	requireCodes(t, base, map[string]int{
		"/liveness":  http.StatusOK,
		"/readiness": http.StatusOK,
		"/health":    http.StatusOK,
		"/metrics":   http.StatusOK,
	})
	s.NotReady()
	requireCodes(t, base, notReady)

	require.NoError(t, s.Stop(context.Background()))
	_, err := http.Get(base + "/liveness")
	require.Error(t, err)
}

func TestReadinessHandler(t *testing.T) {
	s, base := startProbe(t, WithReadinessHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})))
	s.Ready()
	requireCodes(t, base, map[string]int{
		"/liveness":  http.StatusOK,
		"/readiness": http.StatusAccepted,
		"/health":    http.StatusAccepted,
	})
}

func TestReadinessCheck(t *testing.T) {
	var halted atomic.Bool
	s, base := startProbe(t, WithReadinessCheck(func() error {
		if halted.Load() {
			return errors.New("halted")
		}
		return nil
	}))
	s.Ready()
	requireCodes(t, base, map[string]int{"/readiness": http.StatusOK})

	halted.Store(true)
	requireCodes(t, base, map[string]int{
		"/liveness":  http.StatusOK,
		"/readiness": http.StatusServiceUnavailable,
	})
}
