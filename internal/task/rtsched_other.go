//go:build !linux

package task

import "errors"

// applyScheduling is unsupported outside Linux; callers fall back to
// default scheduling and log a warning, same as a permission failure on
// Linux (spec.md §4.4 step 1, §7 PermissionDenied policy). Affinity and
// priority are reported independently for symmetry with the Linux
// implementation, even though neither is attempted here.
func applyScheduling(priority int, coreMask uint64) (affinityErr, priorityErr error) {
	err := errors.New("real-time scheduling unsupported on this platform")
	return err, err
}
