package commands

import (
	"errors"
	"strings"
)

type Operation int

const (
	DEFAULT = iota
	// Start the mining loop, runs until explicit stop.
	START
	// Restart the in-flight search without leaving the mining loop.
	RESTART
	// Stop mining completely.
	STOP
	// Print ledger status.
	STATUS
	// Run the full chain integrity walk.
	VALIDATE
	// Persist the ledger document to disk.
	SAVE
)

// A command contains an operation and its arguments.
type Command struct {
	Op   Operation
	Args []string
}

func (c Command) IsValid() bool {
	switch c.Op {
	case START, RESTART, STOP, STATUS, VALIDATE, SAVE:
		return len(c.Args) == 0
	default:
		return false
	}
}

// CreateCommand parses one console line into a command.
func CreateCommand(s string) (Command, error) {
	ss := strings.Fields(s)
	if len(ss) == 0 {
		return Command{}, errors.New("command is empty")
	}
	cmd := Command{}
	switch ss[0] {
	case "start":
		cmd.Op = START
	case "restart":
		cmd.Op = RESTART
	case "stop":
		cmd.Op = STOP
	case "status":
		cmd.Op = STATUS
	case "validate":
		cmd.Op = VALIDATE
	case "save":
		cmd.Op = SAVE
	}
	cmd.Args = ss[1:]
	if !cmd.IsValid() {
		return Command{}, errors.New("invalid command")
	}
	return cmd, nil
}

// Create a brand new command with default operation.
func NewDefaultCommand() Command {
	return Command{
		Op: DEFAULT,
	}
}

func (c Command) IsDefault() bool {
	return c.Op == DEFAULT
}
