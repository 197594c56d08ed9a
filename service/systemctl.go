package service

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Systemctl runs systemctl commands. It exists as an interface so that tests
// can run without a systemd host.
type Systemctl interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// ExecSystemctl runs systemctl commands using the systemctl binary.
type ExecSystemctl struct{}

var _ Systemctl = (*ExecSystemctl)(nil)

// Run executes systemctl with the given arguments and returns its combined
// output.
func (s *ExecSystemctl) Run(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "systemctl", args...).CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		if output != "" {
			return output, fmt.Errorf("systemctl %s failed: %s: %w",
				strings.Join(args, " "), output, err)
		}
		return output, fmt.Errorf("systemctl %s failed: %w",
			strings.Join(args, " "), err)
	}

	return output, nil
}
