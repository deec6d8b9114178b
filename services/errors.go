package services

import "errors"

// Attribution outcomes callers are expected to branch on with errors.Is.
// Everything else coming out of a service is a persistence failure and maps
// to a 500 at the edge.
var (
	// ErrValidation: malformed input — caller must fix the request.
	ErrValidation = errors.New("validation failed")

	// ErrUnknownCode: referral code resolves to no affiliate. Expected for
	// typos and fraud probes; not a server fault.
	ErrUnknownCode = errors.New("unknown referral code")

	// ErrDuplicateOrder: the order id was already attributed. The original
	// record is untouched; webhook retries should treat this as success.
	ErrDuplicateOrder = errors.New("duplicate order id")

	// ErrNotFound: generic lookup miss outside attribution.
	ErrNotFound = errors.New("not found")
)
