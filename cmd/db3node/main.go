// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

// Usage:
//
//	db3node start --config-path=./config.yaml
//	db3node version
package main

import (
	"os"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "db3node",
		Short:         "db3 storage node driven by a cometbft consensus engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newStartCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
