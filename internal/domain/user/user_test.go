package user

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr error
	}{
		{in: "COMMON", want: RoleCommon},
		{in: "ADMIN", want: RoleAdmin},
		{in: " ADMIN ", want: RoleAdmin},
		{in: "admin", wantErr: ErrUnknownRole},
		{in: "", wantErr: ErrUnknownRole},
		{in: "ROOT", wantErr: ErrUnknownRole},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Fatalf("ParseRole(%q) err=%v, want %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseRole(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewNormalizesEmail(t *testing.T) {
	u := New("  Ana ", "  Ana@X.com ", "hash", RoleCommon)

	if u.Email != "ana@x.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	if u.Name != "Ana" {
		t.Fatalf("name not trimmed: %q", u.Name)
	}
	if u.ID == "" || u.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamps to be set")
	}
}
