// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package registry

import (
	"sync"

	"github.com/Thermoquad/sspctl/pkg/bridge"
)

// Op is the kind of registry change.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change describes a successful write. For OpDelete only Control.Unit is set.
type Change struct {
	Op      Op             `json:"op"`
	Control bridge.Control `json:"control"`
}

// Notifier wraps a Store and reports every successful write to its
// subscribers. Subscribers run on the writer's goroutine and must not block.
type Notifier struct {
	Store

	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Change)
}

// NewNotifier wraps store.
func NewNotifier(store Store) *Notifier {
	return &Notifier{Store: store, subs: make(map[int]func(Change))}
}

// Subscribe registers fn and returns a function that removes it.
func (n *Notifier) Subscribe(fn func(Change)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.subs[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *Notifier) Create(spec bridge.ControlSpec) error {
	if err := n.Store.Create(spec); err != nil {
		return err
	}
	n.notify(OpCreate, spec.Unit)
	return nil
}

func (n *Notifier) Update(unit bridge.Unit, nValue int, sValue string) error {
	if err := n.Store.Update(unit, nValue, sValue); err != nil {
		return err
	}
	n.notify(OpUpdate, unit)
	return nil
}

func (n *Notifier) Delete(unit bridge.Unit) error {
	if err := n.Store.Delete(unit); err != nil {
		return err
	}
	n.publish(Change{Op: OpDelete, Control: bridge.Control{ControlSpec: bridge.ControlSpec{Unit: unit}}})
	return nil
}

func (n *Notifier) notify(op Op, unit bridge.Unit) {
	c, err := n.Store.Get(unit)
	if err != nil {
		return
	}
	n.publish(Change{Op: op, Control: c})
}

func (n *Notifier) publish(ch Change) {
	n.mu.RLock()
	subs := make([]func(Change), 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.RUnlock()

	for _, fn := range subs {
		fn(ch)
	}
}
