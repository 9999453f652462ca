package config

import (
	"errors"
	"fmt"
	"time"

	"dario.cat/mergo"

	"github.com/MKhiriev/go-offline-sync/models"
)

// Defaults applied when no source sets a value.
const (
	defaultSyncInterval   = 30 * time.Second
	defaultSearchDebounce = 2 * time.Second
	defaultReconnect      = 3 * time.Second
	defaultRequestTimeout = 10 * time.Second
	defaultTokenDuration  = 24 * time.Hour
	defaultTokenIssuer    = "go-offline-sync"
)

type configBuilder struct {
	args    []string
	configs []*StructuredConfig
	err     error
}

func newConfigBuilder(args []string) *configBuilder {
	return &configBuilder{
		args:    args,
		configs: make([]*StructuredConfig, 0, 4),
	}
}

func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occurred during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return config, nil
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg, err := parseEnv(nil)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

func (b *configBuilder) withFlags() *configBuilder {
	flagCfg, err := ParseFlags(b.args)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, flagCfg)
	return b
}

func (b *configBuilder) withJSON() *configBuilder {
	var jsonPath string
	for _, cfg := range b.configs {
		if cfg.JSONFilePath != "" {
			jsonPath = cfg.JSONFilePath
		}
	}

	if jsonPath == "" {
		return b
	}

	jsonCfg, err := parseJSON(jsonPath)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	b.configs = append(b.configs, jsonCfg)

	return b
}

// withDefaults prepends a config holding the defaults so every other source
// overrides it.
func (b *configBuilder) withDefaults() *configBuilder {
	defaults := &StructuredConfig{
		App: App{
			TokenIssuer:   defaultTokenIssuer,
			TokenDuration: defaultTokenDuration,
		},
		Server:  Server{RequestTimeout: defaultRequestTimeout},
		Adapter: Adapter{RequestTimeout: defaultRequestTimeout},
		Workers: Workers{
			SyncInterval:      defaultSyncInterval,
			SearchDebounce:    defaultSearchDebounce,
			ReconnectInterval: defaultReconnect,
		},
		Sync: Sync{PageSize: models.DefaultPageSize},
	}

	b.configs = append([]*StructuredConfig{defaults}, b.configs...)
	return b
}
