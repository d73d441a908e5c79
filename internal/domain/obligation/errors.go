package obligation

import "errors"

var (
	ErrAdvanceNotFound     = errors.New("advance not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrObligationNotActive = errors.New("obligation is not in a deductible state")
	ErrOverDeduction       = errors.New("deduction exceeds remaining amount")
	ErrNoRemainingEMIs     = errors.New("loan has no remaining EMIs")
	ErrEMIAlreadyPaid      = errors.New("EMI already recorded for this period")
	ErrEMIAmountMismatch   = errors.New("scheduled EMI amount no longer matches the loan's due amount")
	ErrInvalidTransition   = errors.New("invalid obligation state transition")
)
