package org

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"perftrack/internal/domain/auth"
	"perftrack/internal/domain/scope"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListBranches(ctx context.Context, sc scope.Scope) ([]Branch, error) {
	query := "SELECT id, COALESCE(name, ''), COALESCE(code, ''), created_at FROM branches"
	var args []any
	// The branches table has no employee column; managers and employees are
	// narrowed to their own branch directly.
	if sc.Role != auth.RoleAdmin {
		if sc.BranchID == "" {
			return nil, scope.ErrNoBranch
		}
		query += " WHERE id = $1"
		args = append(args, sc.BranchID)
	}
	query += " ORDER BY name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Code, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) CreateBranch(ctx context.Context, name, code string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO branches (name, code)
    VALUES ($1, NULLIF($2, ''))
    RETURNING id
  `, name, code).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateBranch(ctx context.Context, branchID, name, code string) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE branches SET name = $1, code = NULLIF($2, '') WHERE id = $3
  `, name, code, branchID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBranchNotFound
	}
	return nil
}

// DeleteBranch cascades to groups, performance records and inspections via
// foreign keys; employees keep their account with the branch reference cleared.
func (s *Store) DeleteBranch(ctx context.Context, branchID string) error {
	cmd, err := s.DB.Exec(ctx, "DELETE FROM branches WHERE id = $1", branchID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBranchNotFound
	}
	return nil
}

func (s *Store) GetBranch(ctx context.Context, branchID string) (*Branch, error) {
	var b Branch
	err := s.DB.QueryRow(ctx, `
    SELECT id, COALESCE(name, ''), COALESCE(code, ''), created_at FROM branches WHERE id = $1
  `, branchID).Scan(&b.ID, &b.Name, &b.Code, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBranchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) ListGroups(ctx context.Context, sc scope.Scope, branchID string) ([]Group, error) {
	query := `
    SELECT id, branch_id, name, COALESCE(manager_id::text, ''), created_at
    FROM groups
    WHERE 1=1`
	var args []any
	next := 1
	if branchID != "" {
		query += " AND branch_id = $1"
		args = append(args, branchID)
		next++
	}
	// Group listings are roster management: employees are rejected by the
	// handler before the query, managers are pinned to their own branch here.
	if sc.Role == auth.RoleManager {
		if sc.BranchID == "" {
			return nil, scope.ErrNoBranch
		}
		query += fmt.Sprintf(" AND branch_id = $%d", next)
		args = append(args, sc.BranchID)
	}
	query += " ORDER BY name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.BranchID, &g.Name, &g.ManagerID, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	var g Group
	err := s.DB.QueryRow(ctx, `
    SELECT id, branch_id, name, COALESCE(manager_id::text, ''), created_at
    FROM groups WHERE id = $1
  `, groupID).Scan(&g.ID, &g.BranchID, &g.Name, &g.ManagerID, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) CreateGroup(ctx context.Context, branchID, name, managerID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO groups (branch_id, name, manager_id)
    VALUES ($1, $2, NULLIF($3, '')::uuid)
    RETURNING id
  `, branchID, name, managerID).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateGroup(ctx context.Context, groupID, name, managerID string) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE groups SET name = $1, manager_id = NULLIF($2, '')::uuid WHERE id = $3
  `, name, managerID, groupID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	cmd, err := s.DB.Exec(ctx, "DELETE FROM groups WHERE id = $1", groupID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (s *Store) ListEmployees(ctx context.Context, sc scope.Scope, branchID, groupID string) ([]Employee, error) {
	query := `
    SELECT u.id, u.name, u.email, u.role,
           COALESCE(u.branch_id::text, ''), COALESCE(u.group_id::text, ''), u.active
    FROM users u
    WHERE 1=1`
	var args []any
	next := 1
	if branchID != "" {
		query += " AND u.branch_id = $1"
		args = append(args, branchID)
		next++
	}
	if groupID != "" {
		query += fmt.Sprintf(" AND u.group_id = $%d", next)
		args = append(args, groupID)
		next++
	}
	clause, clauseArgs, err := sc.UserFilter("u.", next)
	if err != nil {
		return nil, err
	}
	if clause != "" {
		query += " AND " + clause
		args = append(args, clauseArgs...)
	}
	query += " ORDER BY u.name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.BranchID, &e.GroupID, &e.Active); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GroupRoster returns the active employees of a group, unfiltered by scope:
// callers gate access with Scope.CanUseBranch before loading a roster.
func (s *Store) GroupRoster(ctx context.Context, groupID string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id, u.name, u.email, u.role,
           COALESCE(u.branch_id::text, ''), COALESCE(u.group_id::text, ''), u.active
    FROM users u
    WHERE u.group_id = $1 AND u.active
    ORDER BY u.name
  `, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.BranchID, &e.GroupID, &e.Active); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// EmployeeNamesByBranch returns a name -> id index for inspection
// reconciliation. Matching is exact and case-sensitive; when two employees of
// the branch share a name the first by creation order wins, which mirrors the
// import contract (see the reconciler notes).
func (s *Store) EmployeeNamesByBranch(ctx context.Context, branchID string) (map[string]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT name, id FROM users
    WHERE branch_id = $1 AND active
    ORDER BY created_at
  `, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[string]string)
	for rows.Next() {
		var name, id string
		if err := rows.Scan(&name, &id); err != nil {
			return nil, err
		}
		if _, exists := index[name]; !exists {
			index[name] = id
		}
	}
	return index, rows.Err()
}

func (s *Store) CreateEmployee(ctx context.Context, e Employee, passwordHash string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (name, email, password_hash, role, branch_id, group_id, active)
    VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, NULLIF($6, '')::uuid, $7)
    RETURNING id
  `, e.Name, e.Email, passwordHash, e.Role, e.BranchID, e.GroupID, e.Active).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, employeeID string, e Employee) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE users
    SET name = $1,
        email = $2,
        role = $3,
        branch_id = NULLIF($4, '')::uuid,
        group_id = NULLIF($5, '')::uuid,
        active = $6
    WHERE id = $7
  `, e.Name, e.Email, e.Role, e.BranchID, e.GroupID, e.Active, employeeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) DeleteEmployee(ctx context.Context, employeeID string) error {
	cmd, err := s.DB.Exec(ctx, "DELETE FROM users WHERE id = $1", employeeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}
