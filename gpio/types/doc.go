// Package types contains shared GPIO types and interfaces.
//
// This package only exists to avoid a circular import between the gpio
// implementations and the packages that consume them.
package types
