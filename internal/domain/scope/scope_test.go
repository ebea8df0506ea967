package scope

import (
	"testing"

	"perftrack/internal/domain/auth"
)

func TestAdminFilterUnrestricted(t *testing.T) {
	s := ForUser(auth.UserContext{Role: auth.RoleAdmin})
	clause, args, err := s.Filter("branch_id", "employee_id", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clause != "" || len(args) != 0 {
		t.Fatalf("expected empty filter for admin, got %q %v", clause, args)
	}
}

func TestManagerFilterRestrictsToBranch(t *testing.T) {
	s := ForUser(auth.UserContext{Role: auth.RoleManager, BranchID: "b1"})
	clause, args, err := s.Filter("r.branch_id", "r.employee_id", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clause != "r.branch_id = $3" {
		t.Fatalf("unexpected clause: %q", clause)
	}
	if len(args) != 1 || args[0] != "b1" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestManagerFilterWithoutBranchFails(t *testing.T) {
	s := ForUser(auth.UserContext{Role: auth.RoleManager})
	if _, _, err := s.Filter("branch_id", "employee_id", 1); err != ErrNoBranch {
		t.Fatalf("expected ErrNoBranch, got %v", err)
	}
}

func TestEmployeeFilterRestrictsToGroupMembers(t *testing.T) {
	s := ForUser(auth.UserContext{Role: auth.RoleEmployee, GroupID: "g9"})
	clause, args, err := s.Filter("q.branch_id", "q.employee_id", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "q.employee_id IN (SELECT id FROM users WHERE group_id = $2)"
	if clause != want {
		t.Fatalf("unexpected clause: %q", clause)
	}
	if len(args) != 1 || args[0] != "g9" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestUserFilterExcludesAdminsForManager(t *testing.T) {
	s := ForUser(auth.UserContext{Role: auth.RoleManager, BranchID: "b1"})
	clause, args, err := s.UserFilter("u.", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clause != "u.branch_id = $1 AND u.role <> $2" {
		t.Fatalf("unexpected clause: %q", clause)
	}
	if len(args) != 2 || args[1] != auth.RoleAdmin {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestEmployeeHasNoRosterAccess(t *testing.T) {
	s := ForUser(auth.UserContext{Role: auth.RoleEmployee, GroupID: "g1"})
	if err := s.CanManageRoster(); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, _, err := s.UserFilter("", 1); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden from user filter, got %v", err)
	}
}

func TestCanUseBranch(t *testing.T) {
	admin := Scope{Role: auth.RoleAdmin}
	if err := admin.CanUseBranch("any"); err != nil {
		t.Fatalf("admin should use any branch: %v", err)
	}
	manager := Scope{Role: auth.RoleManager, BranchID: "b1"}
	if err := manager.CanUseBranch("b1"); err != nil {
		t.Fatalf("manager should use own branch: %v", err)
	}
	if err := manager.CanUseBranch("b2"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for foreign branch, got %v", err)
	}
	employee := Scope{Role: auth.RoleEmployee, GroupID: "g1"}
	if err := employee.CanUseBranch("b1"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for employee, got %v", err)
	}
}
