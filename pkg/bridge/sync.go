// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Thermoquad/sspctl/pkg/sis"
)

// Sync writes decoded switcher events into the registry controls.
// Writes that would not change a control are skipped.
type Sync struct {
	registry Registry
	log      zerolog.Logger
	writes   uint64
}

// NewSync creates a Sync writing to the given registry.
func NewSync(registry Registry, log zerolog.Logger) *Sync {
	return &Sync{registry: registry, log: log}
}

// Writes returns the number of registry updates issued so far.
func (s *Sync) Writes() uint64 {
	return s.writes
}

// EnsureControls creates every control that the registry does not have yet.
// Existing controls are left untouched.
func (s *Sync) EnsureControls(specs []ControlSpec) error {
	for _, spec := range specs {
		ok, err := s.registry.Exists(spec.Unit)
		if err != nil {
			return fmt.Errorf("check %s control: %w", spec.Unit, err)
		}
		if ok {
			continue
		}
		if err := s.registry.Create(spec); err != nil {
			return fmt.Errorf("create %s control: %w", spec.Unit, err)
		}
		s.log.Info().Int("unit", int(spec.Unit)).Str("name", spec.Name).Msg("control created")
	}
	return nil
}

// Apply pushes one decoded event to its control. It reports whether the
// registry was written. Unrecognized events are ignored.
func (s *Sync) Apply(ev sis.Event) (bool, error) {
	switch ev.Kind {
	case sis.EventInputChanged:
		level := strconv.Itoa(InputLevel(ev.Input))
		return s.push(UnitInput, nil, &level)

	case sis.EventMuteChanged:
		on := 1
		if ev.Muted {
			on = 0
		}
		return s.push(UnitVolume, &on, nil)

	case sis.EventVolumeChanged:
		level := strconv.Itoa(ev.Volume)
		return s.push(UnitVolume, nil, &level)

	default:
		return false, nil
	}
}

// push updates a control. A nil value keeps the control's current one.
// A control that no longer exists is skipped silently.
func (s *Sync) push(unit Unit, nValue *int, sValue *string) (bool, error) {
	current, err := s.registry.Get(unit)
	if errors.Is(err, ErrControlNotFound) {
		s.log.Debug().Int("unit", int(unit)).Msg("control missing, update skipped")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s control: %w", unit, err)
	}

	n := current.NValue
	if nValue != nil {
		n = *nValue
	}
	v := current.SValue
	if sValue != nil {
		v = *sValue
	}

	if n == current.NValue && v == current.SValue {
		return false, nil
	}

	s.log.Info().
		Int("unit", int(unit)).
		Int("nvalue_old", current.NValue).
		Int("nvalue", n).
		Str("svalue_old", current.SValue).
		Str("svalue", v).
		Msg("updating control")

	if err := s.registry.Update(unit, n, v); err != nil {
		return false, fmt.Errorf("update %s control: %w", unit, err)
	}
	s.writes++
	return true, nil
}
