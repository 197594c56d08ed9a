package facedev

import "fmt"

// DeviceType identifies the camera device family.
type DeviceType int

// All known device families.
const (
	DeviceUnknown DeviceType = iota
	DeviceF45x
	DeviceF46x
)

// String implements the fmt.Stringer interface.
func (dt DeviceType) String() string {
	switch dt {
	case DeviceF45x:
		return "F45x"
	case DeviceF46x:
		return "F46x"
	}
	return "unknown"
}

// AuthStatus is the outcome of a faceprint extraction or authentication
// attempt reported by the device.
type AuthStatus int

// All authentication statuses.
const (
	StatusSuccess AuthStatus = iota
	StatusNoFaceDetected
	StatusForbidden
	StatusDeviceError
	StatusFailure
)

// String implements the fmt.Stringer interface.
func (s AuthStatus) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusNoFaceDetected:
		return "NoFaceDetected"
	case StatusForbidden:
		return "Forbidden"
	case StatusDeviceError:
		return "DeviceError"
	}
	return "Failure"
}

// Hint is intermediate feedback streamed by the device during an attempt,
// used to guide the person in front of the camera.
type Hint int

// All hints.
const (
	HintNoFaceDetected Hint = iota
	HintFaceDetected
	HintMaskDetected
	HintLookingAway
	HintSpoofDetected
)

// String implements the fmt.Stringer interface.
func (h Hint) String() string {
	switch h {
	case HintNoFaceDetected:
		return "NoFaceDetected"
	case HintFaceDetected:
		return "FaceDetected"
	case HintMaskDetected:
		return "MaskDetected"
	case HintLookingAway:
		return "LookingAway"
	case HintSpoofDetected:
		return "SpoofDetected"
	}
	return fmt.Sprintf("Hint(%d)", int(h))
}

// Message returns a human-friendly instruction for the hint.
func (h Hint) Message() string {
	switch h {
	case HintNoFaceDetected:
		return "no face detected - please position your face in front of the camera"
	case HintFaceDetected:
		return "face detected - authenticating"
	case HintMaskDetected:
		return "mask detected - please remove mask"
	case HintLookingAway:
		return "please look at the camera"
	case HintSpoofDetected:
		return "spoof attempt detected"
	}
	return h.String()
}

// DescriptorLength is the number of elements in a faceprint descriptor.
const DescriptorLength = 512

// Faceprints is the feature-vector representation of a face, in the
// device's wire layout. The JSON field names match the layout the
// enrollment tooling produces.
type Faceprints struct {
	Version          int     `json:"version"`
	FeaturesType     int     `json:"features_type"`
	Flags            int     `json:"flags"`
	AdaptiveNoMask   []int16 `json:"adaptive_descriptor_nomask"`
	AdaptiveWithMask []int16 `json:"adaptive_descriptor_withmask"`
	Enroll           []int16 `json:"enroll_descriptor"`
}

// MatchResult is the outcome of matching a probe faceprint against an
// enrolled one.
type MatchResult struct {
	Success bool
	// Score is the match confidence in [0,100].
	Score int
}
