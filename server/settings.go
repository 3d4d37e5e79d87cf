// File: server/settings.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Settings is the on-disk/environment form of Config, loaded through
// multiconfig so deployments can mix a TOML file and environment
// variables. Settings are read once per LoadSettings call; nothing in
// this package re-reads them when the config file changes.

package server

import (
	"time"

	"github.com/koding/multiconfig"
)

// Settings mirrors Config with loader tags and defaults.
type Settings struct {
	ListenAddr        string `default:":8080"`
	NumWorkers        int    `default:"4"`
	ReadBufferSize    int    `default:"65536"`
	ShutdownTimeoutMs int    `default:"30000"`
	EnableDebug       bool   `default:"true"`
}

// LoadSettings reads Settings from the given file plus the
// environment. An empty path loads tag defaults and environment only.
// The flag loader is deliberately left out so embedders keep their own
// flag sets.
func LoadSettings(path string) (*Settings, error) {
	loaders := []multiconfig.Loader{&multiconfig.TagLoader{}}
	if path != "" {
		loaders = append(loaders, &multiconfig.TOMLLoader{Path: path})
	}
	loaders = append(loaders, &multiconfig.EnvironmentLoader{})

	m := &multiconfig.DefaultLoader{
		Loader:    multiconfig.MultiLoader(loaders...),
		Validator: multiconfig.MultiValidator(&multiconfig.RequiredValidator{}),
	}
	st := new(Settings)
	if err := m.Load(st); err != nil {
		return nil, err
	}
	return st, nil
}

// Config converts loaded settings into a runtime Config.
func (st *Settings) Config() *Config {
	return &Config{
		ListenAddr:      st.ListenAddr,
		NumWorkers:      st.NumWorkers,
		ReadBufferSize:  st.ReadBufferSize,
		ShutdownTimeout: time.Duration(st.ShutdownTimeoutMs) * time.Millisecond,
		EnableDebug:     st.EnableDebug,
	}
}
