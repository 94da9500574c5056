package payroll

import "errors"

var (
	// ErrInvalidInput rejects arithmetically unsound inputs (negative
	// hours, non-positive rates). No record is created.
	ErrInvalidInput = errors.New("invalid payroll input")

	// ErrUnsupportedJurisdiction marks a work state absent from the tax
	// tables. Policy (reject or explicit zero state tax) is the caller's.
	ErrUnsupportedJurisdiction = errors.New("unsupported tax jurisdiction")

	// ErrNegativeNetPay signals a misconfiguration that would drive net
	// pay below zero. The run fails instead of clamping.
	ErrNegativeNetPay = errors.New("net pay would be negative")

	// ErrIncompleteRecord rejects document emission for a record missing
	// required fields. Never retried.
	ErrIncompleteRecord = errors.New("payroll record incomplete")

	// ErrPersistence wraps storage failures during document emission.
	// Transient; the record stays draft and emission may be retried.
	ErrPersistence = errors.New("paystub persistence failed")

	// ErrHallmarkCollision is a fatal configuration error: two records
	// derived the same hallmark serial within a tenant.
	ErrHallmarkCollision = errors.New("hallmark serial collision")

	ErrPeriodNotFound   = errors.New("payroll period not found")
	ErrPeriodIssued     = errors.New("payroll period already issued")
	ErrRecordNotFound   = errors.New("payroll record not found")
	ErrRecordIssued     = errors.New("payroll record already issued")
	ErrOutOfOrderPeriod = errors.New("worker has payroll for a later period")
)
