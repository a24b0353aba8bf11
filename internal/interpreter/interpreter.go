// Package interpreter executes parsed scripts against a browser session.
//
// Execution is a statement-dispatch loop over a work queue with two modes.
// In normal mode every statement runs; a recoverable failure flips the
// interpreter into error-sync mode, where statements are skipped until the
// next catch-error boundary, whose action chain then runs as the recovery.
// The try-again command replays everything recorded since the last boundary;
// a failure during that replay ends the run.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/terrier-cli/internal/browser"
	"github.com/xkilldash9x/terrier-cli/internal/environment"
	"github.com/xkilldash9x/terrier-cli/internal/script"
)

// Options tunes one interpreter instance.
type Options struct {
	// Demo draws a highlight border around the focused element.
	Demo bool
	// Pacing is the delay inserted before every command. It mimics human
	// timing against pages that react badly to machine-speed input.
	Pacing time.Duration
	Logger *zap.Logger
}

// Interpreter executes one script against one browser session. It is not
// safe for concurrent use; the runner gives each script its own instance.
type Interpreter struct {
	browser browser.Browser
	logger  *zap.Logger

	// queue holds pending statements with the next one at the tail.
	queue []script.Stmt

	env     *environment.Environment
	focused browser.Element

	// hadError marks error-sync mode: skip forward to a catch-error
	// boundary instead of executing.
	hadError bool
	// replay records statements since the last catch-error boundary so
	// try-again can re-run them.
	replay []script.Stmt
	// triedAgain marks an in-flight retry; failures while it is set are
	// fatal rather than recoverable.
	triedAgain bool

	logBuf      strings.Builder
	screenshots [][]byte

	demo   bool
	pacing time.Duration
}

// New builds an interpreter over the given statements. The statement slice
// is consumed back to front, so it is stored reversed.
func New(b browser.Browser, stmts []script.Stmt, opts Options) *Interpreter {
	queue := make([]script.Stmt, 0, len(stmts))
	for i := len(stmts) - 1; i >= 0; i-- {
		queue = append(queue, stmts[i])
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Interpreter{
		browser: b,
		logger:  logger.Named("interpreter"),
		queue:   queue,
		env:     environment.New(),
		replay:  []script.Stmt{},
		demo:    opts.Demo,
		pacing:  opts.Pacing,
	}
}

// Log returns the execution report accumulated so far.
func (i *Interpreter) Log() string { return i.logBuf.String() }

// Screenshots returns the PNG captures taken so far, in order.
func (i *Interpreter) Screenshots() [][]byte { return i.screenshots }

func (i *Interpreter) logInfo(msg string) {
	i.logBuf.WriteString("Info: ")
	i.logBuf.WriteString(msg)
	i.logBuf.WriteString("\n")
}

func (i *Interpreter) logError(msg string) {
	i.logBuf.WriteString("Error: ")
	i.logBuf.WriteString(msg)
	i.logBuf.WriteString("\n")
}

// Interpret runs the script to completion. It reports whether the run ended
// in a failed state: an Exit-severity failure, or reaching the end of the
// script while still synchronizing after an error. The returned error is
// non-nil only for infrastructure failures (context cancellation, the
// session dying), never for script-level failures.
func (i *Interpreter) Interpret(ctx context.Context, closeSession bool) (failed bool, err error) {
	// Reset per-run state so an interpreter can be reused across
	// datatable rows.
	i.focused = nil
	i.hadError = false
	i.replay = i.replay[:0]
	i.triedAgain = false

	if closeSession {
		defer func() {
			if cerr := i.browser.Close(ctx); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}

	for {
		stmt, ok := i.pop()
		if !ok {
			break
		}

		if !i.hadError {
			i.logInfo(stmt.String())
		}

		if serr := i.executeStmt(ctx, stmt); serr != nil {
			var scriptErr *ScriptError
			if !errors.As(serr, &scriptErr) {
				return true, serr
			}
			i.logError(scriptErr.Msg)
			if scriptErr.Severity == SeverityExit {
				i.logger.Debug("Ending run on fatal script error.", zap.String("cause", scriptErr.Msg))
				return true, nil
			}
			i.hadError = true
		}
	}

	// Finishing while still looking for a catch-error boundary means the
	// failure was never handled.
	return i.hadError, nil
}

func (i *Interpreter) pop() (script.Stmt, bool) {
	if len(i.queue) == 0 {
		return nil, false
	}
	stmt := i.queue[len(i.queue)-1]
	i.queue = i.queue[:len(i.queue)-1]
	return stmt, true
}

// executeStmt dispatches one statement according to the current mode. Every
// dequeued statement is recorded in the replay buffer exactly once.
func (i *Interpreter) executeStmt(ctx context.Context, stmt script.Stmt) error {
	i.replay = append(i.replay, stmt)

	if i.hadError {
		// Error-sync mode: skip everything except a catch-error
		// boundary, whose action chain is the recovery.
		if ce, ok := stmt.(*script.CatchErrStmt); ok {
			if err := i.executeChain(ctx, ce.Action); err != nil {
				return err
			}
			i.hadError = false
		}
		return nil
	}

	switch s := stmt.(type) {
	case *script.CommandStmt:
		return i.executeChain(ctx, s.Chain)
	case *script.IfStmt:
		return i.executeIf(ctx, s)
	case *script.SaveStmt:
		i.env.Set(s.Name, s.Value)
		return nil
	case *script.CommentStmt:
		// Comments only appear in the report log.
		return nil
	case *script.CatchErrStmt:
		// No error to handle. Drop the recorded statements so a later
		// try-again replays from this boundary, not from the start.
		i.replay = i.replay[:0]
		return nil
	case *script.RetryDoneStmt:
		// The replayed statements all passed; leave retry mode.
		i.triedAgain = false
		return nil
	default:
		return fmt.Errorf("unhandled statement type %T", stmt)
	}
}

// executeIf runs the guarded chain only when the probe command succeeds. A
// failing probe is not an error, whatever its severity.
func (i *Interpreter) executeIf(ctx context.Context, s *script.IfStmt) error {
	if err := i.executeCmd(ctx, s.Condition); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		i.logger.Debug("Condition not met, skipping guarded commands.", zap.String("condition", s.Condition.String()))
		return nil
	}
	return i.executeChain(ctx, s.Then)
}

// executeChain runs the commands of one line left to right, stopping at the
// first failure.
func (i *Interpreter) executeChain(ctx context.Context, chain script.CmdChain) error {
	for _, cmd := range chain {
		if err := i.executeCmd(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}

// failf produces a ScriptError whose severity reflects retry mode: failures
// during a try-again replay are fatal.
func (i *Interpreter) failf(format string, args ...any) *ScriptError {
	severity := SeverityRecoverable
	if i.triedAgain {
		severity = SeverityExit
	}
	return &ScriptError{Msg: fmt.Sprintf(format, args...), Severity: severity}
}

// resolve turns a command parameter into its runtime string value.
func (i *Interpreter) resolve(p script.CmdParam) (string, error) {
	if !p.IsVariable {
		return p.Value, nil
	}
	v, ok := i.env.Get(p.Value)
	if !ok {
		return "", i.failf("Variable %s is not yet defined", p.Value)
	}
	return v, nil
}

// focusedElem returns the element in focus, or an actionable error.
func (i *Interpreter) focusedElem() (browser.Element, error) {
	if i.focused == nil {
		return nil, i.failf("No element currently located. Try using the locate command")
	}
	return i.focused, nil
}

const (
	highlightJS   = `function() { this.style.border = '5px solid purple'; }`
	unhighlightJS = `function() { this.style.border = 'none'; }`
)

// setFocus makes el the focused element, optionally scrolling it into view.
// In demo mode the new element is highlighted and the previous highlight
// removed; a failed un-highlight is ignored since the old handle may simply
// be stale.
func (i *Interpreter) setFocus(ctx context.Context, el browser.Element, scrollIntoView bool) error {
	if scrollIntoView {
		if err := el.ScrollIntoView(ctx); err != nil {
			return i.failf("Error scrolling element into view")
		}
	}

	if i.demo {
		if err := i.browser.ExecuteScript(ctx, highlightJS, el); err != nil {
			return i.failf("Error highlighting element")
		}
		if i.focused != nil {
			_ = i.browser.ExecuteScript(ctx, unhighlightJS, i.focused)
		}
	}

	i.focused = el
	return nil
}

// tryAgain schedules the recorded statements for re-execution. The
// completion marker goes in first so it is dequeued after the replayed
// statements; reaching it clears retry mode.
func (i *Interpreter) tryAgain() {
	i.triedAgain = true

	i.queue = append(i.queue, &script.RetryDoneStmt{})
	for n := len(i.replay) - 1; n >= 0; n-- {
		i.queue = append(i.queue, i.replay[n])
	}
	i.replay = i.replay[:0]
}
