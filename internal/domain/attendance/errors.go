package attendance

import "errors"

var (
	ErrSummaryNotFound    = errors.New("attendance summary not found")
	ErrAlreadyApproved    = errors.New("attendance summary already approved")
	ErrNotApproved        = errors.New("attendance summary is not approved")
	ErrSummaryImmutable   = errors.New("approved attendance summary cannot be modified; reopen it first")
	ErrApproverRequired   = errors.New("approver identity is required")
)
