// Package sim implements a simulated camera device for tests and for
// running the system without hardware.
package sim

import (
	"context"
	"math"
	"sync"

	"go.faceguard.dev/faceguard/facedev"
)

// DefaultMatchThreshold is the minimum score the simulator considers a
// match.
const DefaultMatchThreshold = 60

// Device is a simulated facedev.Authenticator. Extraction results, hints
// and errors are injectable, and matching is a normalized dot product over
// the adaptive descriptors.
type Device struct {
	mx          sync.Mutex
	deviceType  facedev.DeviceType
	status      facedev.AuthStatus
	prints      *facedev.Faceprints
	hints       []facedev.Hint
	enrolledIDs []string
	threshold   int
	failErr     error // to simulate errors
	closed      bool
}

var _ facedev.Authenticator = (*Device)(nil)

// New returns a new simulated Device that extracts nothing until
// configured with SetExtraction.
func New(opts ...Option) *Device {
	d := &Device{
		deviceType: facedev.DeviceF45x,
		status:     facedev.StatusNoFaceDetected,
		threshold:  DefaultMatchThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open is a facedev.Opener returning a fresh simulated device, ignoring
// the port.
func Open(_ string) (facedev.Authenticator, error) {
	return New(), nil
}

// DeviceType returns the simulated device family.
func (d *Device) DeviceType() facedev.DeviceType {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.deviceType
}

// EnrolledIDs returns the configured on-device user IDs.
func (d *Device) EnrolledIDs(_ context.Context) ([]string, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	if d.failErr != nil {
		return nil, d.failErr
	}
	ids := make([]string, len(d.enrolledIDs))
	copy(ids, d.enrolledIDs)
	return ids, nil
}

// ExtractFaceprints streams the configured hints and returns the
// configured status and faceprints.
func (d *Device) ExtractFaceprints(ctx context.Context, onHint facedev.HintFunc) (
	facedev.AuthStatus, *facedev.Faceprints, error,
) {
	d.mx.Lock()
	status, prints, hints, failErr := d.status, d.prints, d.hints, d.failErr
	d.mx.Unlock()

	if failErr != nil {
		return facedev.StatusDeviceError, nil, failErr
	}
	if err := ctx.Err(); err != nil {
		//nolint:wrapcheck // Callers match on context errors directly.
		return facedev.StatusFailure, nil, err
	}

	if onHint != nil {
		for _, hint := range hints {
			onHint(hint)
		}
	}

	return status, prints, nil
}

// MatchFaceprints matches by normalized dot product over the no-mask
// adaptive descriptors, scaled to [0,100]. The updated faceprints returned
// on success are the enrolled ones unchanged; adaptive descriptor updates
// are a device-firmware concern the simulator doesn't model.
func (d *Device) MatchFaceprints(probe, enrolled *facedev.Faceprints) (
	*facedev.MatchResult, *facedev.Faceprints, error,
) {
	d.mx.Lock()
	threshold, failErr := d.threshold, d.failErr
	d.mx.Unlock()

	if failErr != nil {
		return nil, nil, failErr
	}

	score := similarityScore(probe.AdaptiveNoMask, enrolled.AdaptiveNoMask)
	result := &facedev.MatchResult{Success: score >= threshold, Score: score}
	if !result.Success {
		return result, nil, nil
	}

	updated := *enrolled
	return result, &updated, nil
}

// Close marks the device session as closed.
func (d *Device) Close() error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.closed = true
	return d.failErr
}

// Closed reports whether Close was called.
func (d *Device) Closed() bool {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.closed
}

// SetExtraction configures the result of subsequent ExtractFaceprints calls.
func (d *Device) SetExtraction(status facedev.AuthStatus, prints *facedev.Faceprints, hints ...facedev.Hint) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.status = status
	d.prints = prints
	d.hints = hints
}

// SetFailError makes subsequent device operations fail with err.
func (d *Device) SetFailError(err error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.failErr = err
}

// similarityScore computes the cosine similarity of two descriptors scaled
// to [0,100]; negative similarity clamps to 0. Mismatched or empty
// descriptors score 0.
func similarityScore(a, b []int16) int {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		fa, fb := float64(a[i]), float64(b[i])
		dot += fa * fb
		normA += fa * fa
		normB += fb * fb
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos <= 0 {
		return 0
	}

	return int(math.Round(cos * 100))
}
