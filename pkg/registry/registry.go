// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package registry provides device registry backends for the bridge: an
// in-memory map, a CBOR snapshot file and redis.
package registry

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Thermoquad/sspctl/pkg/bridge"
	"github.com/Thermoquad/sspctl/pkg/config"
)

// ErrControlExists is returned by Create for a unit that is already present.
var ErrControlExists = errors.New("control already exists")

// Store is a bridge.Registry whose controls can also be removed.
type Store interface {
	bridge.Registry
	Delete(unit bridge.Unit) error
}

// Open returns the backend selected by cfg.
func Open(cfg config.RegistryConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return NewMemory(), nil
	case config.BackendFile:
		return OpenFile(cfg.Path)
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return NewRedis(client, cfg.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported registry backend: %s", cfg.Backend)
	}
}

func cloneControl(c bridge.Control) bridge.Control {
	c.Options = maps.Clone(c.Options)
	return c
}
