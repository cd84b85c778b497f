// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"fmt"
	"strings"
)

// Unit identifies a control in the host registry.
type Unit int

const (
	UnitVolume Unit = 1
	UnitInput  Unit = 2
)

func (u Unit) String() string {
	switch u {
	case UnitVolume:
		return "Volume"
	case UnitInput:
		return "Input"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// Host command names
const (
	CommandSetLevel = "Set Level"
	CommandOn       = "On"
	CommandOff      = "Off"
)

// InputLevelStep is the selector level distance between two inputs:
// level 10 is input 1, level 20 is input 2 and so on.
const InputLevelStep = 10

// ControlKind is the host widget type of a control.
type ControlKind string

const (
	KindDimmer   ControlKind = "dimmer"
	KindSelector ControlKind = "selector"
)

// ControlSpec describes a control to create in the registry.
type ControlSpec struct {
	Unit    Unit              `json:"unit"`
	Name    string            `json:"name"`
	Kind    ControlKind       `json:"kind"`
	Image   int               `json:"image,omitempty"`
	Options map[string]string `json:"options,omitempty"`
}

// Control is a registry entry. NValue is the on/off indicator and SValue the
// level, both in the host's representation.
type Control struct {
	ControlSpec
	NValue int    `json:"nvalue"`
	SValue string `json:"svalue"`
}

// Registry is the host's device registry. Implementations live in package
// registry; Get reports a missing control with ErrControlNotFound.
type Registry interface {
	Get(unit Unit) (Control, error)
	Exists(unit Unit) (bool, error)
	Create(spec ControlSpec) error
	Update(unit Unit, nValue int, sValue string) error
	List() ([]Control, error)
}

// DefaultInputLabels are the selector labels used when none are configured.
// The first option stands for "no input" and is hidden by the host.
const DefaultInputLabels = "Off|1 (digital optical)|2 (digital optical)|3 (digital coax)|4 (ditial coax)|5 (analog)"

// ParseInputLabels splits a "|"-separated selector label list.
func ParseInputLabels(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// VolumeControlSpec returns the Volume control: a dimmer whose on state means
// unmuted and whose level is the volume.
func VolumeControlSpec() ControlSpec {
	return ControlSpec{
		Unit:  UnitVolume,
		Name:  "Volume",
		Kind:  KindDimmer,
		Image: 8,
	}
}

// InputControlSpec returns the Input selector for the given labels.
func InputControlSpec(labels []string) ControlSpec {
	return ControlSpec{
		Unit:  UnitInput,
		Name:  "Input",
		Kind:  KindSelector,
		Image: 5,
		Options: map[string]string{
			"LevelActions":   "",
			"LevelNames":     strings.Join(labels, "|"),
			"LevelOffHidden": "true",
			"SelectorStyle":  "1",
		},
	}
}

// DefaultControls returns both control specs for the given input labels.
func DefaultControls(labels []string) []ControlSpec {
	return []ControlSpec{VolumeControlSpec(), InputControlSpec(labels)}
}

// InputLevel converts an input number to a selector level.
func InputLevel(input int) int {
	return input * InputLevelStep
}

// InputFromLevel converts a selector level to an input number, truncating.
func InputFromLevel(level int) int {
	return level / InputLevelStep
}
