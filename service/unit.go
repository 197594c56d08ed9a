package service

import (
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Unit describes the systemd unit installed for the guard service.
type Unit struct {
	Description         string
	BinaryPath          string
	User                string
	Group               string
	WorkingDirectory    string
	StartDelay          time.Duration
	RestartDelay        time.Duration
	SupplementaryGroups []string
}

var unitTmpl = template.Must(template.New("unit").
	Funcs(template.FuncMap{
		"join":    strings.Join,
		"seconds": func(d time.Duration) int { return int(d / time.Second) },
	}).
	Parse(`[Unit]
Description={{.Description}}
After=network-online.target
Wants=network-online.target

[Service]
Type=simple
User={{.User}}
Group={{.Group}}
WorkingDirectory={{.WorkingDirectory}}
SupplementaryGroups={{join .SupplementaryGroups " "}}
ExecStartPre=/bin/sleep {{seconds .StartDelay}}
ExecStart={{.BinaryPath}} serve
Restart=on-failure
RestartSec={{seconds .RestartDelay}}
StandardOutput=journal
StandardError=journal

[Install]
WantedBy=multi-user.target
`))

// Render returns the unit file contents.
func (u Unit) Render() (string, error) {
	var b strings.Builder
	if err := unitTmpl.Execute(&b, u); err != nil {
		return "", fmt.Errorf("failed rendering unit file: %w", err)
	}

	return b.String(), nil
}
