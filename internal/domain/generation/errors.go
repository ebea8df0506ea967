package generation

import "errors"

var (
	ErrRowNotFound     = errors.New("employee not in the loaded roster")
	ErrScopeNotChosen  = errors.New("group and period must be chosen before committing")
	ErrNothingSelected = errors.New("no employees selected for generation")
	ErrSessionNotFound = errors.New("generation session not found")
	ErrSessionNotOwned = errors.New("generation session belongs to another operator")
)
