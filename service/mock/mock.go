// Package mock provides an in-memory implementation of the Systemctl
// interface for testing.
package mock

import (
	"context"
	"strings"
	"sync"
)

// Systemctl records the systemctl commands that would be run, and returns
// canned outputs.
type Systemctl struct {
	mx       sync.Mutex
	commands [][]string
	outputs  map[string]string
	failErr  error
}

// NewSystemctl creates a new mock Systemctl.
func NewSystemctl() *Systemctl {
	return &Systemctl{outputs: map[string]string{}}
}

// Run records the command and returns the canned output for it, if any.
func (s *Systemctl) Run(_ context.Context, args ...string) (string, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.failErr != nil {
		return "", s.failErr
	}
	s.commands = append(s.commands, args)

	return s.outputs[strings.Join(args, " ")], nil
}

// SetOutput sets the output returned for the given command.
func (s *Systemctl) SetOutput(command, output string) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.outputs[command] = output
}

// SetFailError sets the error returned by all subsequent commands.
func (s *Systemctl) SetFailError(err error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.failErr = err
}

// Commands returns the commands run so far.
func (s *Systemctl) Commands() [][]string {
	s.mx.Lock()
	defer s.mx.Unlock()
	out := make([][]string, len(s.commands))
	copy(out, s.commands)

	return out
}
