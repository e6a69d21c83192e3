// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package itx

import (
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"go.uber.org/zap"
)

// cometLogger feeds cometbft services into zap
type cometLogger struct {
	l *zap.SugaredLogger
}

var _ cmtlog.Logger = (*cometLogger)(nil)

// NewCometLogger returns a cometbft logger writing to l
func NewCometLogger(l *zap.Logger) cmtlog.Logger {
	return &cometLogger{l: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (c *cometLogger) Debug(msg string, keyvals ...interface{}) { c.l.Debugw(msg, keyvals...) }

func (c *cometLogger) Info(msg string, keyvals ...interface{}) { c.l.Infow(msg, keyvals...) }

func (c *cometLogger) Error(msg string, keyvals ...interface{}) { c.l.Errorw(msg, keyvals...) }

func (c *cometLogger) With(keyvals ...interface{}) cmtlog.Logger {
	return &cometLogger{l: c.l.With(keyvals...)}
}
