// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package log

import (
	"encoding/hex"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"go.elastic.co/ecszap"
	"go.uber.org/zap"
)

// GlobalConfig defines the global logger configurations.
type GlobalConfig struct {
	Zap                *zap.Config `json:"zap" yaml:"zap"`
	StderrRedirectFile *string     `json:"stderrRedirectFile" yaml:"stderrRedirectFile"`
	RedirectStdLog     bool        `json:"stdLogRedirect" yaml:"stdLogRedirect"`
	EcsIntegration     bool        `json:"ecsIntegration" yaml:"ecsIntegration"`
}

var (
	_globalCfg        GlobalConfig
	_logMu            sync.RWMutex
	_logServeMux      = http.NewServeMux()
	_subLoggers       map[string]*zap.Logger
	_globalLoggerName = "globalDefault"
)

func init() {
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.DisableStacktrace = true
	zapCfg.Level.SetLevel(zap.InfoLevel)
	l, err := zapCfg.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(l)
	_subLoggers = make(map[string]*zap.Logger)
}

// L is alias of zap.L().
func L() *zap.Logger { return zap.L() }

// S is alias of zap.S().
func S() *zap.SugaredLogger { return zap.S() }

// Logger returns logger of the given name, falling back to the global one.
func Logger(name string) *zap.Logger {
	_logMu.RLock()
	defer _logMu.RUnlock()
	logger, ok := _subLoggers[name]
	if !ok {
		return L()
	}
	return logger
}

// Hex creates a zap field which convert binary to hex.
func Hex(k string, d []byte) zap.Field {
	return zap.String(k, hex.EncodeToString(d))
}

// InitLoggers initializes the global logger and other sub loggers.
func InitLoggers(globalCfg GlobalConfig, subCfgs map[string]GlobalConfig, opts ...zap.Option) error {
	if _, exists := subCfgs[_globalLoggerName]; exists {
		return errors.New("'" + _globalLoggerName + "' is a reserved name for global logger")
	}
	if subCfgs == nil {
		subCfgs = make(map[string]GlobalConfig)
	}
	subCfgs[_globalLoggerName] = globalCfg
	for name, cfg := range subCfgs {
		_logMu.RLock()
		_, exists := _subLoggers[name]
		_logMu.RUnlock()
		if exists {
			return errors.Errorf("duplicate sub logger name: %s", name)
		}
		if cfg.Zap == nil {
			zapCfg := zap.NewProductionConfig()
			cfg.Zap = &zapCfg
		}
		if cfg.StderrRedirectFile != nil {
			cfg.Zap.ErrorOutputPaths = append(cfg.Zap.ErrorOutputPaths, *cfg.StderrRedirectFile)
		}
		buildOpts := append([]zap.Option{}, opts...)
		if cfg.EcsIntegration {
			cfg.Zap.EncoderConfig = ecszap.ECSCompatibleEncoderConfig(cfg.Zap.EncoderConfig)
			buildOpts = append(buildOpts, zap.WrapCore(ecszap.WrapCore))
		}
		logger, err := cfg.Zap.Build(buildOpts...)
		if err != nil {
			return err
		}

		_logMu.Lock()
		if name == _globalLoggerName {
			_globalCfg = cfg
			zap.ReplaceGlobals(logger)
			if cfg.RedirectStdLog {
				zap.RedirectStdLog(logger)
			}
		} else {
			_subLoggers[name] = logger
		}
		_logServeMux.HandleFunc("/"+name, cfg.Zap.Level.ServeHTTP)
		_logMu.Unlock()
	}
	return nil
}

// RegisterLevelConfigMux registers log's level config http mux.
func RegisterLevelConfigMux(root *http.ServeMux) {
	_logMu.Lock()
	root.Handle("/logging/", http.StripPrefix("/logging", _logServeMux))
	_logMu.Unlock()
}

// Sync flushes every logger, ignoring the errors stdout/stderr return on sync.
func Sync() {
	_logMu.RLock()
	defer _logMu.RUnlock()
	for _, l := range _subLoggers {
		_ = l.Sync()
	}
	_ = L().Sync()
}
