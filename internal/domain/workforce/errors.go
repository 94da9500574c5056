package workforce

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrWorkerNotFound  = errors.New("worker not found")
	ErrOrderNotFound   = errors.New("garnishment order not found")
	ErrTimesheetLocked = errors.New("timesheet already approved")
)
