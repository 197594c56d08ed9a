package sim

import "go.faceguard.dev/faceguard/facedev"

// Option is a function that allows configuring the simulated Device.
type Option func(*Device)

// WithDeviceType sets the simulated device family.
func WithDeviceType(dt facedev.DeviceType) Option {
	return func(d *Device) {
		d.deviceType = dt
	}
}

// WithExtraction sets the result of ExtractFaceprints calls.
func WithExtraction(status facedev.AuthStatus, prints *facedev.Faceprints, hints ...facedev.Hint) Option {
	return func(d *Device) {
		d.status = status
		d.prints = prints
		d.hints = hints
	}
}

// WithEnrolledIDs sets the user IDs reported as enrolled on the device.
func WithEnrolledIDs(ids ...string) Option {
	return func(d *Device) {
		d.enrolledIDs = ids
	}
}

// WithMatchThreshold sets the minimum score considered a match.
func WithMatchThreshold(threshold int) Option {
	return func(d *Device) {
		d.threshold = threshold
	}
}
