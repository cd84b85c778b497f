// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Thermoquad/sspctl/pkg/bridge"
)

const redisTimeout = 2 * time.Second

// Redis keeps each control in a hash at <prefix>:control:<unit> and the
// set of known units at <prefix>:controls.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a registry on an existing client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) controlKey(unit bridge.Unit) string {
	return fmt.Sprintf("%s:control:%d", r.prefix, int(unit))
}

func (r *Redis) setKey() string {
	return r.prefix + ":controls"
}

func (r *Redis) Get(unit bridge.Unit) (bridge.Control, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	fields, err := r.client.HGetAll(ctx, r.controlKey(unit)).Result()
	if err != nil {
		return bridge.Control{}, fmt.Errorf("redis get %s: %w", r.controlKey(unit), err)
	}
	if len(fields) == 0 {
		return bridge.Control{}, bridge.ErrControlNotFound
	}
	return controlFromHash(unit, fields)
}

func (r *Redis) Exists(unit bridge.Unit) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	n, err := r.client.Exists(ctx, r.controlKey(unit)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", r.controlKey(unit), err)
	}
	return n > 0, nil
}

func (r *Redis) Create(spec bridge.ControlSpec) error {
	ok, err := r.Exists(spec.Unit)
	if err != nil {
		return err
	}
	if ok {
		return ErrControlExists
	}

	fields, err := hashFromControl(bridge.Control{ControlSpec: spec})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.controlKey(spec.Unit), fields)
		pipe.SAdd(ctx, r.setKey(), int(spec.Unit))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis create %s: %w", r.controlKey(spec.Unit), err)
	}
	return nil
}

func (r *Redis) Update(unit bridge.Unit, nValue int, sValue string) error {
	ok, err := r.Exists(unit)
	if err != nil {
		return err
	}
	if !ok {
		return bridge.ErrControlNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	err = r.client.HSet(ctx, r.controlKey(unit),
		"nvalue", nValue,
		"svalue", sValue,
	).Err()
	if err != nil {
		return fmt.Errorf("redis update %s: %w", r.controlKey(unit), err)
	}
	return nil
}

// List returns the controls ordered by unit. Units whose hash has
// disappeared are skipped.
func (r *Redis) List() ([]bridge.Control, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	members, err := r.client.SMembers(ctx, r.setKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list %s: %w", r.setKey(), err)
	}

	var units []bridge.Unit
	for _, m := range members {
		u, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		units = append(units, bridge.Unit(u))
	}
	slices.Sort(units)

	out := make([]bridge.Control, 0, len(units))
	for _, u := range units {
		c, err := r.Get(u)
		if errors.Is(err, bridge.ErrControlNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *Redis) Delete(unit bridge.Unit) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.controlKey(unit))
		pipe.SRem(ctx, r.setKey(), int(unit))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", r.controlKey(unit), err)
	}
	if del.Val() == 0 {
		return bridge.ErrControlNotFound
	}
	return nil
}

func hashFromControl(c bridge.Control) (map[string]any, error) {
	options := "{}"
	if len(c.Options) > 0 {
		data, err := json.Marshal(c.Options)
		if err != nil {
			return nil, fmt.Errorf("encode options: %w", err)
		}
		options = string(data)
	}

	return map[string]any{
		"name":    c.Name,
		"kind":    string(c.Kind),
		"image":   c.Image,
		"options": options,
		"nvalue":  c.NValue,
		"svalue":  c.SValue,
	}, nil
}

func controlFromHash(unit bridge.Unit, fields map[string]string) (bridge.Control, error) {
	c := bridge.Control{
		ControlSpec: bridge.ControlSpec{
			Unit: unit,
			Name: fields["name"],
			Kind: bridge.ControlKind(fields["kind"]),
		},
		SValue: fields["svalue"],
	}

	var err error
	if v := fields["image"]; v != "" {
		if c.Image, err = strconv.Atoi(v); err != nil {
			return bridge.Control{}, fmt.Errorf("control %d: bad image %q", int(unit), v)
		}
	}
	if v := fields["nvalue"]; v != "" {
		if c.NValue, err = strconv.Atoi(v); err != nil {
			return bridge.Control{}, fmt.Errorf("control %d: bad nvalue %q", int(unit), v)
		}
	}
	if v := fields["options"]; v != "" && v != "{}" {
		if err := json.Unmarshal([]byte(v), &c.Options); err != nil {
			return bridge.Control{}, fmt.Errorf("control %d: bad options: %w", int(unit), err)
		}
	}
	return c, nil
}
