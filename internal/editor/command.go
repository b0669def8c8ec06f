package editor

import (
	"mini-annotator/internal/annotation"
	"mini-annotator/pkg/geometry"
)

// Command is a reversible edit over an annotation collection. Commands
// store only the minimal delta needed to apply and revert themselves, so
// history cost does not grow with collection size.
type Command interface {
	Apply(c *annotation.Collection)
	Revert(c *annotation.Collection)
	Name() string
}

// AddBoxCommand appends a box to the collection.
type AddBoxCommand struct {
	Index int
	Box   annotation.Box
}

func (cmd *AddBoxCommand) Apply(c *annotation.Collection) {
	c.Insert(cmd.Index, cmd.Box)
}

func (cmd *AddBoxCommand) Revert(c *annotation.Collection) {
	c.RemoveAt(cmd.Index)
}

func (cmd *AddBoxCommand) Name() string { return "add box" }

// RemoveBoxCommand deletes the box at an index, remembering it for redo.
type RemoveBoxCommand struct {
	Index int
	Box   annotation.Box
}

func (cmd *RemoveBoxCommand) Apply(c *annotation.Collection) {
	cmd.Box = c.RemoveAt(cmd.Index)
}

func (cmd *RemoveBoxCommand) Revert(c *annotation.Collection) {
	c.Insert(cmd.Index, cmd.Box)
}

func (cmd *RemoveBoxCommand) Name() string { return "delete box" }

// SetBaseCommand sets or replaces the base rectangle of a box.
type SetBaseCommand struct {
	Index int
	Base  geometry.Rect
	prev  *geometry.Rect
}

func (cmd *SetBaseCommand) Apply(c *annotation.Collection) {
	box := c.At(cmd.Index)
	cmd.prev = box.Base
	base := cmd.Base
	box.Base = &base
	c.Replace(cmd.Index, box)
}

func (cmd *SetBaseCommand) Revert(c *annotation.Collection) {
	box := c.At(cmd.Index)
	box.Base = cmd.prev
	c.Replace(cmd.Index, box)
}

func (cmd *SetBaseCommand) Name() string { return "set base" }

// RemoveBaseCommand clears the base rectangle of a box.
type RemoveBaseCommand struct {
	Index int
	prev  *geometry.Rect
}

func (cmd *RemoveBaseCommand) Apply(c *annotation.Collection) {
	box := c.At(cmd.Index)
	cmd.prev = box.Base
	box.Base = nil
	c.Replace(cmd.Index, box)
}

func (cmd *RemoveBaseCommand) Revert(c *annotation.Collection) {
	box := c.At(cmd.Index)
	box.Base = cmd.prev
	c.Replace(cmd.Index, box)
}

func (cmd *RemoveBaseCommand) Name() string { return "remove base" }

// SetLabelCommand changes a box's class label.
type SetLabelCommand struct {
	Index int
	Label string
	prev  string
}

func (cmd *SetLabelCommand) Apply(c *annotation.Collection) {
	box := c.At(cmd.Index)
	cmd.prev = box.Label
	box.Label = cmd.Label
	c.Replace(cmd.Index, box)
}

func (cmd *SetLabelCommand) Revert(c *annotation.Collection) {
	box := c.At(cmd.Index)
	box.Label = cmd.prev
	c.Replace(cmd.Index, box)
}

func (cmd *SetLabelCommand) Name() string { return "set label" }

// SetDispositionCommand records the annotator's verdict on a suggested box.
type SetDispositionCommand struct {
	Index       int
	Disposition annotation.Disposition
	prev        annotation.Disposition
}

func (cmd *SetDispositionCommand) Apply(c *annotation.Collection) {
	box := c.At(cmd.Index)
	if box.Suggestion == nil {
		return
	}
	cmd.prev = box.Suggestion.Disposition
	s := *box.Suggestion
	s.Disposition = cmd.Disposition
	box.Suggestion = &s
	c.Replace(cmd.Index, box)
}

func (cmd *SetDispositionCommand) Revert(c *annotation.Collection) {
	box := c.At(cmd.Index)
	if box.Suggestion == nil {
		return
	}
	s := *box.Suggestion
	s.Disposition = cmd.prev
	box.Suggestion = &s
	c.Replace(cmd.Index, box)
}

func (cmd *SetDispositionCommand) Name() string { return "review suggestion" }

// History is a linear undo/redo log of commands applied to one image's
// collection. It must be reset whenever a different image is loaded;
// stale commands never execute against another image's collection.
type History struct {
	applied  []Command
	reversed []Command
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Execute applies the command and records it. Any pending redo entries
// are discarded: a new edit invalidates the redo branch.
func (h *History) Execute(cmd Command, c *annotation.Collection) {
	cmd.Apply(c)
	h.applied = append(h.applied, cmd)
	h.reversed = h.reversed[:0]
}

// Undo reverts the most recent command. Returns the command undone, or
// nil if the history is empty.
func (h *History) Undo(c *annotation.Collection) Command {
	if len(h.applied) == 0 {
		return nil
	}
	cmd := h.applied[len(h.applied)-1]
	h.applied = h.applied[:len(h.applied)-1]
	cmd.Revert(c)
	h.reversed = append(h.reversed, cmd)
	return cmd
}

// Redo re-applies the most recently undone command, or returns nil.
func (h *History) Redo(c *annotation.Collection) Command {
	if len(h.reversed) == 0 {
		return nil
	}
	cmd := h.reversed[len(h.reversed)-1]
	h.reversed = h.reversed[:len(h.reversed)-1]
	cmd.Apply(c)
	h.applied = append(h.applied, cmd)
	return cmd
}

// CanUndo reports whether there is anything to undo.
func (h *History) CanUndo() bool { return len(h.applied) > 0 }

// CanRedo reports whether there is anything to redo.
func (h *History) CanRedo() bool { return len(h.reversed) > 0 }

// Len returns the number of applied commands.
func (h *History) Len() int { return len(h.applied) }

// Reset clears both stacks. Mandatory on image switch.
func (h *History) Reset() {
	h.applied = h.applied[:0]
	h.reversed = h.reversed[:0]
}
