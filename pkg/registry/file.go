// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/Thermoquad/sspctl/pkg/bridge"
)

const snapshotVersion = 1

// snapshot is the on-disk layout: {1: version, 2: [control, ...]}
type snapshot struct {
	Version  int             `cbor:"1,keyasint"`
	Controls []controlRecord `cbor:"2,keyasint"`
}

type controlRecord struct {
	Unit    int               `cbor:"1,keyasint"`
	Name    string            `cbor:"2,keyasint"`
	Kind    string            `cbor:"3,keyasint"`
	Image   int               `cbor:"4,keyasint,omitempty"`
	Options map[string]string `cbor:"5,keyasint,omitempty"`
	NValue  int               `cbor:"6,keyasint"`
	SValue  string            `cbor:"7,keyasint"`
}

// File is a Memory registry persisted as a CBOR snapshot. The snapshot is
// rewritten after every change.
type File struct {
	mem  *Memory
	path string

	// serializes change+save so snapshots land in order
	mu sync.Mutex
}

// OpenFile loads the snapshot at path. A missing file is an empty registry.
func OpenFile(path string) (*File, error) {
	f := &File{mem: NewMemory(), path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry %s: %w", path, err)
	}

	controls, err := decodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry %s: %w", path, err)
	}
	f.mem.replace(controls)
	return f, nil
}

// Path returns the snapshot location.
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(unit bridge.Unit) (bridge.Control, error) {
	return f.mem.Get(unit)
}

func (f *File) Exists(unit bridge.Unit) (bool, error) {
	return f.mem.Exists(unit)
}

func (f *File) List() ([]bridge.Control, error) {
	return f.mem.List()
}

func (f *File) Create(spec bridge.ControlSpec) error {
	return f.commit(func() error { return f.mem.Create(spec) })
}

func (f *File) Update(unit bridge.Unit, nValue int, sValue string) error {
	return f.commit(func() error { return f.mem.Update(unit, nValue, sValue) })
}

func (f *File) Delete(unit bridge.Unit) error {
	return f.commit(func() error { return f.mem.Delete(unit) })
}

// commit applies change and writes the snapshot. When the snapshot cannot
// be written the change is rolled back, so memory never holds state the
// file does not.
func (f *File) commit(change func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	before, _ := f.mem.List()
	if err := change(); err != nil {
		return err
	}
	if err := f.save(); err != nil {
		f.mem.replace(before)
		return err
	}
	return nil
}

// save writes the snapshot to a temp file and renames it over the old one.
func (f *File) save() error {
	controls, _ := f.mem.List()
	data, err := encodeSnapshot(controls)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace registry: %w", err)
	}
	return nil
}

func encodeSnapshot(controls []bridge.Control) ([]byte, error) {
	snap := snapshot{Version: snapshotVersion}
	for _, c := range controls {
		snap.Controls = append(snap.Controls, controlRecord{
			Unit:    int(c.Unit),
			Name:    c.Name,
			Kind:    string(c.Kind),
			Image:   c.Image,
			Options: c.Options,
			NValue:  c.NValue,
			SValue:  c.SValue,
		})
	}

	data, err := cbor.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode CBOR: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) ([]bridge.Control, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty CBOR payload")
	}

	var snap snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode CBOR: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version: %d", snap.Version)
	}

	controls := make([]bridge.Control, 0, len(snap.Controls))
	for _, r := range snap.Controls {
		controls = append(controls, bridge.Control{
			ControlSpec: bridge.ControlSpec{
				Unit:    bridge.Unit(r.Unit),
				Name:    r.Name,
				Kind:    bridge.ControlKind(r.Kind),
				Image:   r.Image,
				Options: r.Options,
			},
			NValue: r.NValue,
			SValue: r.SValue,
		})
	}
	return controls, nil
}
