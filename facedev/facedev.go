// Package facedev is the boundary to the biometric camera device. The
// vendor SDK that drives the camera is an external, separately-built
// collaborator; this package mirrors its call surface so the rest of the
// system never touches it directly, and ships a simulator implementation
// for tests and hardware-less operation.
package facedev

import "context"

// HintFunc receives intermediate feedback during an extraction attempt.
type HintFunc func(Hint)

// Authenticator is the device session used for faceprint extraction and
// host-side matching.
type Authenticator interface {
	// DeviceType returns the connected device family.
	DeviceType() DeviceType

	// EnrolledIDs returns the user IDs enrolled on the device itself.
	EnrolledIDs(ctx context.Context) ([]string, error)

	// ExtractFaceprints captures a face and returns its faceprints. Hints
	// are streamed to onHint (which may be nil) while the attempt runs. A
	// non-Success status with a nil error means the device completed the
	// attempt but no usable face was captured.
	ExtractFaceprints(ctx context.Context, onHint HintFunc) (AuthStatus, *Faceprints, error)

	// MatchFaceprints matches a probe faceprint against an enrolled one on
	// the host, returning the match result and the adaptively updated
	// enrolled faceprints to store back.
	MatchFaceprints(probe, enrolled *Faceprints) (*MatchResult, *Faceprints, error)

	Close() error
}

// Opener opens a device session on the given serial port.
type Opener func(port string) (Authenticator, error)
