package inspection

import "errors"

var (
	ErrEmptySubmission = errors.New("submission contains no data rows")
	ErrInvalidPeriod   = errors.New("period must be formatted as YYYY-MM")
)
