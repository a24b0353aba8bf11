package interpreter

// Severity classifies a script failure by how the interpreter responds.
// Recoverable failures switch execution to error-sync mode, skipping forward
// to the next catch-error boundary. Exit failures end the run immediately.
type Severity int

const (
	SeverityRecoverable Severity = iota
	SeverityExit
)

func (s Severity) String() string {
	switch s {
	case SeverityRecoverable:
		return "recoverable"
	case SeverityExit:
		return "exit"
	default:
		return "unknown"
	}
}

// ScriptError is a failure produced while executing a statement. Everything
// the interpreter raises itself carries one; any other error reaching the
// dispatch loop (context cancellation, a dead browser) aborts the run.
type ScriptError struct {
	Msg      string
	Severity Severity
}

func (e *ScriptError) Error() string { return e.Msg }
