// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

// Snapshot is a copy of a session's state.
type Snapshot struct {
	State      string      `json:"state"`
	Device     DeviceState `json:"device"`
	Statistics Statistics  `json:"statistics"`
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		State:      s.state.String(),
		Device:     s.device,
		Statistics: s.Statistics(),
	}
}

// CommandFunc runs a host command.
type CommandFunc func(unit Unit, command string, level int) (Result, error)

// SnapshotFunc returns the current session state.
type SnapshotFunc func() (Snapshot, error)

// LoopCommands returns a CommandFunc that runs on l. It may be called from
// any goroutine.
func LoopCommands(l *Loop, s *Session) CommandFunc {
	return func(unit Unit, command string, level int) (Result, error) {
		var res Result
		err := l.Call(func() error {
			var err error
			res, err = s.HandleCommand(unit, command, level)
			return err
		})
		return res, err
	}
}

// LoopSnapshot returns a SnapshotFunc that reads s on l. It may be called
// from any goroutine.
func LoopSnapshot(l *Loop, s *Session) SnapshotFunc {
	return func() (Snapshot, error) {
		var snap Snapshot
		err := l.Call(func() error {
			snap = s.Snapshot()
			return nil
		})
		return snap, err
	}
}
