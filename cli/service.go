package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	actx "go.faceguard.dev/faceguard/app/context"
	aerrors "go.faceguard.dev/faceguard/app/errors"
	svc "go.faceguard.dev/faceguard/service"
)

// The Service command manages the systemd unit that runs the guard service.
type Service struct {
	Install struct {
		Binary string `help:"Path to the faceguard binary the service runs. Defaults to the current executable."`
	} `kong:"cmd,help='Install and enable the systemd unit.'"`
	Uninstall struct{} `kong:"cmd,help='Disable and remove the systemd unit.'"`
	Start     struct{} `kong:"cmd,help='Start the service.'"`
	Stop      struct{} `kong:"cmd,help='Stop the service.'"`
	Status    struct{} `kong:"cmd,help='Show the service status.'"`

	// Sysctl can be replaced in tests.
	Sysctl svc.Systemctl `kong:"-"`
}

// Run the service command.
func (c *Service) Run(kctx *kong.Context, appCtx *actx.Context, cli *CLI) error {
	sysctl := c.Sysctl
	if sysctl == nil {
		sysctl = &svc.ExecSystemctl{}
	}
	mgr := svc.NewManager(sysctl, appCtx.FS, appCtx.Logger)

	switch kctx.Args[1] {
	case "install":
		binary := c.Install.Binary
		if binary == "" {
			var err error
			if binary, err = os.Executable(); err != nil {
				return aerrors.NewWithCause("failed resolving the faceguard binary path", err)
			}
		}

		cfg := appCtx.Config.Service
		workDir := cli.DataDir
		if cfg.WorkingDirectory.Valid {
			workDir = cfg.WorkingDirectory.V
		}
		unit := svc.Unit{
			Description:         "Face Guard access control service",
			BinaryPath:          binary,
			User:                cfg.User.V,
			Group:               cfg.Group.V,
			WorkingDirectory:    workDir,
			StartDelay:          cfg.StartDelay.V,
			RestartDelay:        cfg.RestartDelay.V,
			SupplementaryGroups: cfg.SupplementaryGroups,
		}

		if err := mgr.Install(appCtx.Ctx, unit); err != nil {
			return err
		}
		fmt.Fprintf(appCtx.Stdout, "Installed %s\n", mgr.UnitPath())
	case "uninstall":
		if err := mgr.Uninstall(appCtx.Ctx); err != nil {
			return err
		}
		fmt.Fprintf(appCtx.Stdout, "Uninstalled %s\n", svc.UnitName)
	case "start":
		if err := mgr.Start(appCtx.Ctx); err != nil {
			return err
		}
	case "stop":
		if err := mgr.Stop(appCtx.Ctx); err != nil {
			return err
		}
	case "status":
		status, err := mgr.Status(appCtx.Ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(appCtx.Stdout, 6, 2, 2, ' ', 0)
		fmt.Fprintf(w, "Installed:\t%t\n", status.Exists)
		fmt.Fprintf(w, "Enabled:\t%t\n", status.Enabled)
		fmt.Fprintf(w, "Active:\t%t (%s/%s)\n", status.Active, status.ActiveState, status.SubState)
		if status.PID != 0 {
			fmt.Fprintf(w, "PID:\t%d\n", status.PID)
		}
		if err = w.Flush(); err != nil {
			return aerrors.NewWithCause("failed writing to stdout", err)
		}
	}

	return nil
}
