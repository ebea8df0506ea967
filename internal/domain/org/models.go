package org

import "time"

type Branch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Group struct {
	ID        string    `json:"id"`
	BranchID  string    `json:"branchId"`
	Name      string    `json:"name"`
	ManagerID string    `json:"managerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Employee struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	BranchID string `json:"branchId,omitempty"`
	GroupID  string `json:"groupId,omitempty"`
	Active   bool   `json:"active"`
}
