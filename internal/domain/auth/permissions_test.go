package auth

import "testing"

func TestRoleCapabilitiesSubset(t *testing.T) {
	allowed := map[string]struct{}{}
	for _, cap := range DefaultCapabilities {
		allowed[cap] = struct{}{}
	}

	for role, caps := range RoleCapabilities {
		if len(caps) == 0 {
			t.Fatalf("role %s has no capabilities", role)
		}
		for _, cap := range caps {
			if _, ok := allowed[cap]; !ok {
				t.Fatalf("role %s has unknown capability %s", role, cap)
			}
		}
	}
}

func TestDefaultCapabilitiesUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for _, cap := range DefaultCapabilities {
		if _, ok := seen[cap]; ok {
			t.Fatalf("duplicate capability %s", cap)
		}
		seen[cap] = struct{}{}
	}
}

func TestCan(t *testing.T) {
	if !Can(RoleManager, CapRequestsDecide) {
		t.Fatal("manager should decide requests")
	}
	if Can(RoleUser, CapRequestsDecide) {
		t.Fatal("plain user must not decide requests")
	}
	if Can(RoleManager, CapUsersManage) {
		t.Fatal("manager must not manage users")
	}
	if !Can(RoleSuperAdmin, CapUsersManage) {
		t.Fatal("super admin should manage users")
	}
	if Can("UNKNOWN", CapScheduleRead) {
		t.Fatal("unknown role must carry nothing")
	}
}
