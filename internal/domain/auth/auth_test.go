package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	token, err := GenerateToken(secret, Claims{
		UserID:   "u1",
		TenantID: "t1",
		RoleID:   "r1",
		RoleName: RolePayrollAdmin,
		WorkerID: "w1",
	}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	claims, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.UserID != "u1" || claims.TenantID != "t1" || claims.RoleName != RolePayrollAdmin || claims.WorkerID != "w1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, err := GenerateToken("secret-a", Claims{UserID: "u1"}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("expected parse failure with wrong secret")
	}
}

func TestTokenExpiryEnforced(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "u1"}, -time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected parse failure for expired token")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2-but-longer")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if err := CheckPassword(hash, "hunter2-but-longer"); err != nil {
		t.Fatalf("check error: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch")
	}
}

func TestRolePermissionsCoverage(t *testing.T) {
	for role, perms := range RolePermissions {
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		for _, perm := range perms {
			found := false
			for _, known := range DefaultPermissions {
				if known == perm {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("role %s grants unknown permission %s", role, perm)
			}
		}
	}

	payrollPerms := RolePermissions[RolePayrollAdmin]
	for _, required := range []string{PermPayrollRun, PermPayrollIssue} {
		found := false
		for _, perm := range payrollPerms {
			if perm == required {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("payroll_admin missing %s", required)
		}
	}

	for _, perm := range RolePermissions[RoleWorker] {
		if perm == PermPayrollRun || perm == PermPayrollIssue || perm == PermGarnishmentsWrite {
			t.Fatalf("worker role must not hold %s", perm)
		}
	}
}
