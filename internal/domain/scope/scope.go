package scope

import (
	"errors"
	"fmt"

	"perftrack/internal/domain/auth"
)

var (
	ErrForbidden = errors.New("operation outside visibility scope")
	ErrNoBranch  = errors.New("principal has no branch assignment")
	ErrNoGroup   = errors.New("principal has no group assignment")
)

// Scope is the visibility predicate derived from a principal. Every list and
// read path must apply it through the same builder; no component may compute
// its own variant.
type Scope struct {
	Role     string
	BranchID string
	GroupID  string
}

func ForUser(user auth.UserContext) Scope {
	return Scope{Role: user.Role, BranchID: user.BranchID, GroupID: user.GroupID}
}

// Filter restricts rows of a table carrying a branch column and an employee
// reference. Admins are unrestricted, managers see their own branch, employees
// see rows belonging to members of their own group. next is the positional
// index of the first SQL placeholder to emit.
func (s Scope) Filter(branchCol, employeeCol string, next int) (string, []any, error) {
	switch s.Role {
	case auth.RoleAdmin:
		return "", nil, nil
	case auth.RoleManager:
		if s.BranchID == "" {
			return "", nil, ErrNoBranch
		}
		return fmt.Sprintf("%s = $%d", branchCol, next), []any{s.BranchID}, nil
	case auth.RoleEmployee:
		if s.GroupID == "" {
			return "", nil, ErrNoGroup
		}
		return fmt.Sprintf("%s IN (SELECT id FROM users WHERE group_id = $%d)", employeeCol, next), []any{s.GroupID}, nil
	}
	return "", nil, ErrForbidden
}

// UserFilter restricts user listings. Managers see managers and employees of
// their own branch, never admins. Employees have no roster visibility at all.
func (s Scope) UserFilter(alias string, next int) (string, []any, error) {
	switch s.Role {
	case auth.RoleAdmin:
		return "", nil, nil
	case auth.RoleManager:
		if s.BranchID == "" {
			return "", nil, ErrNoBranch
		}
		return fmt.Sprintf("%sbranch_id = $%d AND %srole <> $%d", alias, next, alias, next+1),
			[]any{s.BranchID, auth.RoleAdmin}, nil
	}
	return "", nil, ErrForbidden
}

// CanManageRoster gates org-management screens. Rejected before any data access.
func (s Scope) CanManageRoster() error {
	if s.Role == auth.RoleEmployee {
		return ErrForbidden
	}
	return nil
}

// CanUseBranch reports whether the principal may operate on the given branch,
// e.g. when importing inspections or generating records for one of its groups.
func (s Scope) CanUseBranch(branchID string) error {
	switch s.Role {
	case auth.RoleAdmin:
		return nil
	case auth.RoleManager:
		if branchID != "" && branchID == s.BranchID {
			return nil
		}
	}
	return ErrForbidden
}
