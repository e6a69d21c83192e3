// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package db

const (
	// DBBolt is the bolt db type
	DBBolt = "boltdb"
	// DBPebble is the pebble db type
	DBPebble = "pebbledb"
	// DBMemory is the in-memory db type, nothing survives a restart
	DBMemory = "memory"
)

// Config is the config for database
type Config struct {
	DbPath string `yaml:"dbPath"`
	// DBType is the type of the meta database
	DBType string `yaml:"dbType"`
	// NumRetries is the number of retries
	NumRetries uint8 `yaml:"numRetries"`
	// ReadOnly is set db to be opened in read only mode
	ReadOnly bool `yaml:"readOnly"`
}

// DefaultConfig returns the default config
var DefaultConfig = Config{
	DBType:     DBBolt,
	NumRetries: 3,
}
