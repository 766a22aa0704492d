package watchdog

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial devices")
	ErrInvalidConfig    = errors.New("invalid watchdog configuration")

	// Detector lifecycle errors
	ErrDetectorRunning = errors.New("detector is already running")
	ErrDetectorStopped = errors.New("detector has been stopped")

	// USB-related errors
	ErrUSBInfoNotAvailable  = errors.New("USB device information not available")
	ErrUSBResetNotAvailable = errors.New("usbreset utility not available")
)

// EnumerationError reports that the platform port listing could not be
// obtained. It is distinct from an empty snapshot, which means no devices.
type EnumerationError struct {
	Err error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("enumerating serial devices: %v", e.Err)
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}

// IsEnumerationError reports whether err is or wraps an *EnumerationError.
func IsEnumerationError(err error) bool {
	var enumErr *EnumerationError
	return errors.As(err, &enumErr)
}
