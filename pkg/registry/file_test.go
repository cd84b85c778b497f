// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Thermoquad/sspctl/pkg/bridge"
)

func TestFile(t *testing.T) {
	f, err := OpenFile(filepath.Join(t.TempDir(), "controls.cbor"))
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	exerciseStore(t, f)
}

func TestFile_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "controls.cbor")

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	for _, spec := range bridge.DefaultControls([]string{"Off", "TV", "Phono"}) {
		if err := f.Create(spec); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if err := f.Update(bridge.UnitVolume, 1, "65"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	vol, err := reopened.Get(bridge.UnitVolume)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if vol.NValue != 1 || vol.SValue != "65" || vol.Kind != bridge.KindDimmer {
		t.Errorf("volume = %+v", vol)
	}
	in, err := reopened.Get(bridge.UnitInput)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if in.Options["LevelNames"] != "Off|TV|Phono" {
		t.Errorf("LevelNames = %q", in.Options["LevelNames"])
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the snapshot", len(entries))
	}
}

func TestFile_FailedSaveRollsBack(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	path := filepath.Join(dir, "controls.cbor")

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if err := f.Create(bridge.VolumeControlSpec()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := f.Update(bridge.UnitVolume, 1, "40"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// A regular file where the directory should be makes every save fail.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	input := bridge.InputControlSpec([]string{"Off", "TV"})
	if err := f.Create(input); err == nil {
		t.Fatal("Create() error = nil with an unwritable snapshot")
	}
	if ok, _ := f.Exists(bridge.UnitInput); ok {
		t.Error("failed Create left the control in memory")
	}

	if err := f.Update(bridge.UnitVolume, 0, "75"); err == nil {
		t.Fatal("Update() error = nil with an unwritable snapshot")
	}
	vol, err := f.Get(bridge.UnitVolume)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if vol.NValue != 1 || vol.SValue != "40" {
		t.Errorf("failed Update changed volume to (%d, %q)", vol.NValue, vol.SValue)
	}

	if err := f.Delete(bridge.UnitVolume); err == nil {
		t.Fatal("Delete() error = nil with an unwritable snapshot")
	}
	if ok, _ := f.Exists(bridge.UnitVolume); !ok {
		t.Error("failed Delete removed the control from memory")
	}

	// Once the path is writable again, a retry succeeds and is persisted.
	if err := os.Remove(dir); err != nil {
		t.Fatal(err)
	}
	if err := f.Create(input); err != nil {
		t.Fatalf("retried Create() error = %v", err)
	}
	if err := f.Update(bridge.UnitVolume, 0, "75"); err != nil {
		t.Fatalf("retried Update() error = %v", err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	controls, _ := reopened.List()
	if len(controls) != 2 {
		t.Fatalf("snapshot has %d controls, want 2", len(controls))
	}
	if controls[0].SValue != "75" || controls[0].NValue != 0 {
		t.Errorf("persisted volume = (%d, %q), want (0, \"75\")", controls[0].NValue, controls[0].SValue)
	}
}

func TestFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "controls.cbor")
	if err := os.WriteFile(path, []byte{0xff, 0x00, 0x13}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFile(path); err == nil {
		t.Error("OpenFile() error = nil for corrupt snapshot")
	}
}

func TestSnapshot_Version(t *testing.T) {
	data, err := encodeSnapshot(nil)
	if err != nil {
		t.Fatalf("encodeSnapshot() error = %v", err)
	}
	if _, err := decodeSnapshot(data); err != nil {
		t.Errorf("decodeSnapshot() error = %v", err)
	}
	if _, err := decodeSnapshot(nil); err == nil {
		t.Error("decodeSnapshot(nil) error = nil")
	}
}
