package protocol

import (
	"encoding/json"
	"fmt"
)

// InboundMessage is a message from the player to the session
type InboundMessage struct {
	Command Cmd    `json:"command"`
	Side    string `json:"side,omitempty"`
}

// OutboundMessage is a message from the session to the player
type OutboundMessage struct {
	Command Cmd    `json:"command"`
	View    *View  `json:"view,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Cmd int

const (
	Null Cmd = iota
	Sync
	Choose
	Reset
	Retry
	Update
	Error
)

var CmdNames = map[Cmd]string{
	Null:   "Null",
	Sync:   "Sync",
	Choose: "Choose",
	Reset:  "Reset",
	Retry:  "Retry",
	Update: "Update",
	Error:  "Error",
}

var NameToCmd = map[string]Cmd{
	"Null":   Null,
	"Sync":   Sync,
	"Choose": Choose,
	"Reset":  Reset,
	"Retry":  Retry,
	"Update": Update,
	"Error":  Error,
}

func (c Cmd) String() string {
	if name, ok := CmdNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Cmd(%d)", int(c))
}

// MarshalJSON writes the command name so browsers need not know the numbering
func (c Cmd) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts a command name or its number
func (c *Cmd) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		cmd, ok := NameToCmd[name]
		if !ok {
			return fmt.Errorf("unknown command %q", name)
		}
		*c = cmd
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("command must be a name or a number: %w", err)
	}
	if _, ok := CmdNames[Cmd(n)]; !ok {
		return fmt.Errorf("unknown command %d", n)
	}
	*c = Cmd(n)
	return nil
}
