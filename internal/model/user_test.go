package model

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"user", RoleUser, false},
		// Unknown roles fail-closed.
		{"manager", "", true},
		{"Admin", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRole(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoleScan(t *testing.T) {
	var r Role
	if err := r.Scan([]byte("admin")); err != nil || r != RoleAdmin {
		t.Errorf("Scan([]byte admin) = %q, %v", r, err)
	}
	if err := r.Scan("superuser"); err == nil {
		t.Error("expected error scanning unknown role")
	}
	if err := r.Scan(42); err == nil {
		t.Error("expected error scanning non-string")
	}
}

func TestIsAdmin(t *testing.T) {
	var nilUser *User
	if nilUser.IsAdmin() {
		t.Error("nil user must not be admin")
	}
	if (&User{Role: RoleUser}).IsAdmin() {
		t.Error("user role must not be admin")
	}
	if !(&User{Role: RoleAdmin}).IsAdmin() {
		t.Error("admin role should be admin")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}
