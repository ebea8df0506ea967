package record

import "errors"

var ErrRecordNotFound = errors.New("performance record not found")
