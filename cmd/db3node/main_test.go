// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	r := require.New(t)
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	r.NoError(root.Execute())
	r.Contains(out.String(), "db3node dev (protocol 1")
}

func TestStartCmdBadConfig(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"start", "--config-path", "/nonexistent/config.yaml"})
	require.Error(t, root.Execute())
}
