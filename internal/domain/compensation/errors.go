package compensation

import "errors"

var (
	ErrProfileNotFound     = errors.New("compensation profile not found")
	ErrInvalidCompensation = errors.New("compensation profile violates salary-structure invariants")
	ErrRevisionNotEffective = errors.New("revision effective date must not precede the current profile")
)
