package org

import (
	"context"

	"perftrack/internal/domain/scope"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) ListBranches(ctx context.Context, sc scope.Scope) ([]Branch, error) {
	return s.Store.ListBranches(ctx, sc)
}

func (s *Service) GetBranch(ctx context.Context, branchID string) (*Branch, error) {
	return s.Store.GetBranch(ctx, branchID)
}

func (s *Service) CreateBranch(ctx context.Context, name, code string) (string, error) {
	return s.Store.CreateBranch(ctx, name, code)
}

func (s *Service) UpdateBranch(ctx context.Context, branchID, name, code string) error {
	return s.Store.UpdateBranch(ctx, branchID, name, code)
}

func (s *Service) DeleteBranch(ctx context.Context, branchID string) error {
	return s.Store.DeleteBranch(ctx, branchID)
}

func (s *Service) ListGroups(ctx context.Context, sc scope.Scope, branchID string) ([]Group, error) {
	return s.Store.ListGroups(ctx, sc, branchID)
}

func (s *Service) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	return s.Store.GetGroup(ctx, groupID)
}

func (s *Service) CreateGroup(ctx context.Context, branchID, name, managerID string) (string, error) {
	return s.Store.CreateGroup(ctx, branchID, name, managerID)
}

func (s *Service) UpdateGroup(ctx context.Context, groupID, name, managerID string) error {
	return s.Store.UpdateGroup(ctx, groupID, name, managerID)
}

func (s *Service) DeleteGroup(ctx context.Context, groupID string) error {
	return s.Store.DeleteGroup(ctx, groupID)
}

func (s *Service) ListEmployees(ctx context.Context, sc scope.Scope, branchID, groupID string) ([]Employee, error) {
	return s.Store.ListEmployees(ctx, sc, branchID, groupID)
}

func (s *Service) GroupRoster(ctx context.Context, groupID string) ([]Employee, error) {
	return s.Store.GroupRoster(ctx, groupID)
}

func (s *Service) EmployeeNamesByBranch(ctx context.Context, branchID string) (map[string]string, error) {
	return s.Store.EmployeeNamesByBranch(ctx, branchID)
}

func (s *Service) CreateEmployee(ctx context.Context, e Employee, passwordHash string) (string, error) {
	return s.Store.CreateEmployee(ctx, e, passwordHash)
}

func (s *Service) UpdateEmployee(ctx context.Context, employeeID string, e Employee) error {
	return s.Store.UpdateEmployee(ctx, employeeID, e)
}

func (s *Service) DeleteEmployee(ctx context.Context, employeeID string) error {
	return s.Store.DeleteEmployee(ctx, employeeID)
}
