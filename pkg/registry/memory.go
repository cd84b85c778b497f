// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package registry

import (
	"slices"
	"sync"

	"github.com/Thermoquad/sspctl/pkg/bridge"
)

// Memory keeps controls in a map. It is safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	controls map[bridge.Unit]bridge.Control
}

// NewMemory creates an empty registry.
func NewMemory() *Memory {
	return &Memory{controls: make(map[bridge.Unit]bridge.Control)}
}

func (m *Memory) Get(unit bridge.Unit) (bridge.Control, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.controls[unit]
	if !ok {
		return bridge.Control{}, bridge.ErrControlNotFound
	}
	return cloneControl(c), nil
}

func (m *Memory) Exists(unit bridge.Unit) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.controls[unit]
	return ok, nil
}

func (m *Memory) Create(spec bridge.ControlSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.controls[spec.Unit]; ok {
		return ErrControlExists
	}
	m.controls[spec.Unit] = cloneControl(bridge.Control{ControlSpec: spec})
	return nil
}

func (m *Memory) Update(unit bridge.Unit, nValue int, sValue string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.controls[unit]
	if !ok {
		return bridge.ErrControlNotFound
	}
	c.NValue = nValue
	c.SValue = sValue
	m.controls[unit] = c
	return nil
}

// List returns the controls ordered by unit.
func (m *Memory) List() ([]bridge.Control, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]bridge.Control, 0, len(m.controls))
	for _, c := range m.controls {
		out = append(out, cloneControl(c))
	}
	slices.SortFunc(out, func(a, b bridge.Control) int {
		return int(a.Unit) - int(b.Unit)
	})
	return out, nil
}

func (m *Memory) Delete(unit bridge.Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.controls[unit]; !ok {
		return bridge.ErrControlNotFound
	}
	delete(m.controls, unit)
	return nil
}

// replace swaps in a full set of controls.
func (m *Memory) replace(controls []bridge.Control) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.controls = make(map[bridge.Unit]bridge.Control, len(controls))
	for _, c := range controls {
		m.controls[c.Unit] = cloneControl(c)
	}
}
