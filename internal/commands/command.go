// Package commands implements the operations of the command-line tool as
// Command objects run by an Executor.
package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Command is one operation the CLI can run.
type Command interface {
	// Execute performs the operation.
	Execute(ctx context.Context) error

	// GetName returns a short name used in logs.
	GetName() string

	// GetDescription describes what the command will do.
	GetDescription() string

	// CanUndo reports whether Undo can reverse a successful Execute.
	CanUndo() bool

	// Undo reverses the command. Only called when CanUndo returns true.
	Undo(ctx context.Context) error
}

// CommandExecutor runs commands and keeps the undoable ones in a history.
type CommandExecutor struct {
	commandHistory []Command
	maxHistory     int
	logger         *zap.Logger
}

// NewCommandExecutor creates a new command executor.
// maxHistory bounds the history (0 = unlimited).
func NewCommandExecutor(maxHistory int, logger *zap.Logger) *CommandExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandExecutor{maxHistory: maxHistory, logger: logger}
}

// Execute runs a command and adds it to the history.
func (e *CommandExecutor) Execute(ctx context.Context, cmd Command) error {
	e.logger.Debug("executing command",
		zap.String("command", cmd.GetName()),
		zap.String("description", cmd.GetDescription()))

	if err := cmd.Execute(ctx); err != nil {
		return fmt.Errorf("command %s failed: %w", cmd.GetName(), err)
	}

	if cmd.CanUndo() {
		e.addToHistory(cmd)
	}
	return nil
}

// ExecuteAll runs commands in order. When one fails, the undoable commands
// already run by this call are undone newest first.
func (e *CommandExecutor) ExecuteAll(ctx context.Context, commands []Command) error {
	start := len(e.commandHistory)
	for i, cmd := range commands {
		if err := e.Execute(ctx, cmd); err != nil {
			e.rollback(ctx, start)
			return fmt.Errorf("command %d (%s) failed: %w", i, cmd.GetName(), err)
		}
	}
	return nil
}

func (e *CommandExecutor) rollback(ctx context.Context, start int) {
	if start > len(e.commandHistory) {
		start = 0
	}
	for len(e.commandHistory) > start {
		if err := e.Undo(ctx); err != nil {
			e.logger.Error("rollback failed", zap.Error(err))
			return
		}
	}
}

// Undo reverses the most recent undoable command.
func (e *CommandExecutor) Undo(ctx context.Context) error {
	if len(e.commandHistory) == 0 {
		return fmt.Errorf("no commands to undo")
	}

	cmd := e.commandHistory[len(e.commandHistory)-1]
	if err := cmd.Undo(ctx); err != nil {
		return fmt.Errorf("failed to undo command %s: %w", cmd.GetName(), err)
	}
	e.logger.Info("undid command", zap.String("command", cmd.GetName()))

	e.commandHistory = e.commandHistory[:len(e.commandHistory)-1]
	return nil
}

// GetHistory returns a copy of the command history.
func (e *CommandExecutor) GetHistory() []Command {
	history := make([]Command, len(e.commandHistory))
	copy(history, e.commandHistory)
	return history
}

func (e *CommandExecutor) addToHistory(cmd Command) {
	e.commandHistory = append(e.commandHistory, cmd)
	if e.maxHistory > 0 && len(e.commandHistory) > e.maxHistory {
		e.commandHistory = e.commandHistory[len(e.commandHistory)-e.maxHistory:]
	}
}

// BaseCommand provides the name, description and no-undo defaults.
// Embed it in command structs.
type BaseCommand struct {
	name        string
	description string
}

// GetName returns the command name.
func (c *BaseCommand) GetName() string {
	return c.name
}

// GetDescription returns the command description.
func (c *BaseCommand) GetDescription() string {
	return c.description
}

// CanUndo returns false.
func (c *BaseCommand) CanUndo() bool {
	return false
}

// Undo returns an error.
func (c *BaseCommand) Undo(ctx context.Context) error {
	return fmt.Errorf("command %s does not support undo", c.name)
}
