//go:build !darwin && !windows && !linux

package clip

// New returns the headless backend: no clipboard support on this platform.
func New() (Backend, error) {
	return Headless(), ErrUnavailable
}
