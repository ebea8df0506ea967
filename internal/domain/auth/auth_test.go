package auth

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if err := CheckPassword(hash, "s3cret-pass"); err != nil {
		t.Fatalf("expected password to match: %v", err)
	}
	if err := CheckPassword(hash, "wrong-pass"); err == nil {
		t.Fatal("expected mismatch for wrong password")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	claims := Claims{UserID: "u1", Role: RoleManager, BranchID: "b1", GroupID: "g1"}
	token, err := GenerateToken("secret", claims, time.Hour)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}

	parsed, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if parsed.UserID != "u1" || parsed.Role != RoleManager || parsed.BranchID != "b1" || parsed.GroupID != "g1" {
		t.Fatalf("unexpected claims: %+v", parsed)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, err := GenerateToken("secret-a", Claims{UserID: "u1", Role: RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "u1", Role: RoleAdmin}, -time.Minute)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestRolePermissions(t *testing.T) {
	cases := []struct {
		role       string
		permission string
		want       bool
	}{
		{RoleAdmin, PermOrgWrite, true},
		{RoleAdmin, PermGenerationRun, true},
		{RoleManager, PermOrgWrite, false},
		{RoleManager, PermGenerationRun, true},
		{RoleManager, PermInspectionsImport, true},
		{RoleEmployee, PermRecordsRead, true},
		{RoleEmployee, PermRecordsWrite, false},
		{RoleEmployee, PermGenerationRun, false},
		{"unknown", PermRecordsRead, false},
	}
	for _, tc := range cases {
		if got := HasPermission(tc.role, tc.permission); got != tc.want {
			t.Fatalf("HasPermission(%s, %s) = %v, want %v", tc.role, tc.permission, got, tc.want)
		}
	}
}
