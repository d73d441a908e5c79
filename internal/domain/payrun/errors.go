package payrun

import "errors"

var (
	ErrPayRunNotFound      = errors.New("pay run not found")
	ErrRecordNotFound      = errors.New("pay run employee record not found")
	ErrDuplicatePeriod     = errors.New("a non-cancelled pay run already exists for this period")
	ErrInvalidTransition   = errors.New("invalid pay run status transition")
	ErrNoEligibleEmployees = errors.New("no eligible employees for this period")
	ErrApproverRequired    = errors.New("approver identity is required")
)
