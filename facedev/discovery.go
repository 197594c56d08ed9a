package facedev

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// DefaultPort is used when no device can be auto-detected.
const DefaultPort = "/dev/ttyACM0"

// Discover returns the serial ports of candidate camera devices, USB CDC
// ports first. When nothing matches, callers should fall back to
// DefaultPort.
func Discover() ([]string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed enumerating serial ports: %w", err)
	}

	var candidates []string
	for _, port := range ports {
		if !port.IsUSB {
			continue
		}
		candidates = append(candidates, port.Name)
	}
	// The device registers as a CDC ACM modem; prefer those ports.
	for i, name := range candidates {
		if strings.Contains(name, "ttyACM") && i > 0 {
			candidates[0], candidates[i] = candidates[i], candidates[0]
			break
		}
	}

	return candidates, nil
}

// ResolvePort returns the port to use: the explicit one if set, otherwise
// the first discovered candidate, otherwise DefaultPort.
func ResolvePort(explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}

	candidates, err := Discover()
	if err == nil && len(candidates) > 0 {
		return candidates[0], true
	}

	return DefaultPort, false
}
