/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package estatesync

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/backend/ddb"
	"github.com/suparena/estatesync/backend/memory"
	"github.com/suparena/estatesync/config"
)

// BackendFactory opens a connection from the loaded configuration.
type BackendFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (backend.Connection, error)

// backendRegistry is a thread-safe map of backend names to factories.
type backendRegistry struct {
	mu        sync.RWMutex
	factories map[string]BackendFactory
}

var backends = &backendRegistry{factories: make(map[string]BackendFactory)}

func init() {
	_ = RegisterBackend(config.BackendMemory, func(context.Context, *config.Config, *slog.Logger) (backend.Connection, error) {
		return memory.New(), nil
	})
	_ = RegisterBackend(config.BackendDynamoDB, func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (backend.Connection, error) {
		return ddb.New(ctx, ddb.Config{
			Table:     cfg.DynamoDB.Table,
			Region:    cfg.DynamoDB.Region,
			AccessKey: cfg.DynamoDB.AccessKey,
			SecretKey: cfg.DynamoDB.SecretKey,
			Endpoint:  cfg.DynamoDB.Endpoint,
		}, ddb.WithLogger(logger), ddb.WithPollInterval(cfg.DynamoDB.PollInterval, 0))
	})
}

// RegisterBackend makes a factory available under name.
func RegisterBackend(name string, factory BackendFactory) error {
	backends.mu.Lock()
	defer backends.mu.Unlock()

	if _, exists := backends.factories[name]; exists {
		return fmt.Errorf("backend %q already registered", name)
	}
	backends.factories[name] = factory
	return nil
}

// Backends lists the registered backend names.
func Backends() []string {
	backends.mu.RLock()
	defer backends.mu.RUnlock()

	names := make([]string, 0, len(backends.factories))
	for name := range backends.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenBackend opens the backend named by cfg.Backend.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (backend.Connection, error) {
	if logger == nil {
		logger = slog.Default()
	}
	backends.mu.RLock()
	factory, exists := backends.factories[cfg.Backend]
	backends.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("backend %q not registered", cfg.Backend)
	}
	conn, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("opening %s backend: %w", cfg.Backend, err)
	}
	return conn, nil
}
