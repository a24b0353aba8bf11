// Package environment holds the variables a script defines and reads during
// a run. Each interpreter owns its own instance; nothing is shared.
package environment

// Environment is a flat name to value store. Script variables are always
// strings.
type Environment struct {
	vars map[string]string
}

// New returns an empty environment.
func New() *Environment {
	return &Environment{vars: make(map[string]string)}
}

// Set stores a value under name, replacing any previous value.
func (e *Environment) Set(name, value string) {
	e.vars[name] = value
}

// Get looks up a variable. The second return reports whether it was defined.
func (e *Environment) Get(name string) (string, bool) {
	v, ok := e.vars[name]
	return v, ok
}
