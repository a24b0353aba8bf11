package script

import (
	"fmt"
	"strings"
)

// Stmt is one executable line of a script. The interpreter dispatches on the
// concrete type, so the set of implementations below is closed.
type Stmt interface {
	stmt()
	// String renders the statement back to script text. The interpreter
	// writes one rendered line to the execution report per statement.
	String() string
}

// CmdParam is a command argument: either a string literal or a reference to
// a variable, resolved against the environment at execution time.
type CmdParam struct {
	Value      string
	IsVariable bool
}

func (p CmdParam) String() string {
	if p.IsVariable {
		return p.Value
	}
	return fmt.Sprintf("%q", p.Value)
}

// Cmd is a single leaf action within a command chain.
type Cmd interface {
	cmd()
	String() string
}

// CmdChain is one script line's "and"-linked commands, evaluated left to
// right with short-circuit semantics.
type CmdChain []Cmd

func (c CmdChain) String() string {
	parts := make([]string, len(c))
	for i, cmd := range c {
		parts[i] = cmd.String()
	}
	return strings.Join(parts, " and ")
}

// -- Statements --

// CommandStmt is a plain command chain line.
type CommandStmt struct {
	Chain CmdChain
}

// IfStmt guards a command chain behind a probe command. The grammar forbids
// nesting, so the condition is always a single leaf command.
type IfStmt struct {
	Condition Cmd
	Then      CmdChain
}

// SaveStmt assigns a literal value to a variable.
type SaveStmt struct {
	Value string
	Name  string
}

// CommentStmt carries a script comment through to the execution report.
type CommentStmt struct {
	Text string
}

// CatchErrStmt is an error-recovery boundary with its attached action chain.
type CatchErrStmt struct {
	Action CmdChain
}

// RetryDoneStmt is inserted into the work queue by the interpreter as part
// of executing try-again. Reaching it means the retry pass completed, so the
// interpreter leaves retry mode. The parser never produces it.
type RetryDoneStmt struct{}

func (*CommandStmt) stmt()   {}
func (*IfStmt) stmt()        {}
func (*SaveStmt) stmt()      {}
func (*CommentStmt) stmt()   {}
func (*CatchErrStmt) stmt()  {}
func (*RetryDoneStmt) stmt() {}

func (s *CommandStmt) String() string { return s.Chain.String() }
func (s *IfStmt) String() string {
	return fmt.Sprintf("if %s then %s", s.Condition.String(), s.Then.String())
}
func (s *SaveStmt) String() string    { return fmt.Sprintf("save %q as %s", s.Value, s.Name) }
func (s *CommentStmt) String() string { return "# " + s.Text }
func (s *CatchErrStmt) String() string {
	return "catch-error: " + s.Action.String()
}
func (s *RetryDoneStmt) String() string { return "(retry complete)" }

// -- Commands --

// LocateCmd resolves a locator and brings the matched element into focus,
// scrolling it into view.
type LocateCmd struct {
	Locator CmdParam
}

// LocateNoScrollCmd is LocateCmd without the scroll-into-view step.
type LocateNoScrollCmd struct {
	Locator CmdParam
}

// TypeCmd clears the focused element and sends the text as keystrokes.
type TypeCmd struct {
	Text CmdParam
}

// ClickCmd clicks the focused element.
type ClickCmd struct{}

// RefreshCmd reloads the current page.
type RefreshCmd struct{}

// TryAgainCmd re-executes the statements recorded since the last
// catch-error boundary. A second failure during the replay ends the run.
type TryAgainCmd struct{}

// ScreenshotCmd captures the page and appends it to the screenshot buffer.
type ScreenshotCmd struct{}

// ReadToCmd reads the focused element's visible text into a variable.
type ReadToCmd struct {
	Name string
}

// URLCmd navigates to the resolved URL.
type URLCmd struct {
	URL CmdParam
}

// PressCmd sends a named key to the focused element.
type PressCmd struct {
	Key CmdParam
}

// ChillCmd suspends execution for the resolved number of seconds.
type ChillCmd struct {
	Seconds CmdParam
}

// SelectCmd chooses an option of the focused select control by its exact
// visible text.
type SelectCmd struct {
	Option CmdParam
}

// DragToCmd drags the focused element onto the element matched by the
// target locator.
type DragToCmd struct {
	Target CmdParam
}

// UploadCmd sends a filesystem path to the focused file input.
type UploadCmd struct {
	Path CmdParam
}

func (*LocateCmd) cmd()         {}
func (*LocateNoScrollCmd) cmd() {}
func (*TypeCmd) cmd()           {}
func (*ClickCmd) cmd()          {}
func (*RefreshCmd) cmd()        {}
func (*TryAgainCmd) cmd()       {}
func (*ScreenshotCmd) cmd()     {}
func (*ReadToCmd) cmd()         {}
func (*URLCmd) cmd()            {}
func (*PressCmd) cmd()          {}
func (*ChillCmd) cmd()          {}
func (*SelectCmd) cmd()         {}
func (*DragToCmd) cmd()         {}
func (*UploadCmd) cmd()         {}

func (c *LocateCmd) String() string         { return "locate " + c.Locator.String() }
func (c *LocateNoScrollCmd) String() string { return "locate-no-scroll " + c.Locator.String() }
func (c *TypeCmd) String() string           { return "type " + c.Text.String() }
func (c *ClickCmd) String() string          { return "click" }
func (c *RefreshCmd) String() string        { return "refresh" }
func (c *TryAgainCmd) String() string       { return "try-again" }
func (c *ScreenshotCmd) String() string     { return "screenshot" }
func (c *ReadToCmd) String() string         { return "read-to " + c.Name }
func (c *URLCmd) String() string            { return "url " + c.URL.String() }
func (c *PressCmd) String() string          { return "press " + c.Key.String() }
func (c *ChillCmd) String() string          { return "chill " + c.Seconds.String() }
func (c *SelectCmd) String() string         { return "select " + c.Option.String() }
func (c *DragToCmd) String() string         { return "drag-to " + c.Target.String() }
func (c *UploadCmd) String() string         { return "upload " + c.Path.String() }
