package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/opspilot/platform/internal/errors"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input    string
		expected Role
		wantErr  bool
	}{
		{"ADMIN", RoleAdmin, false},
		{"ROLE_OPERATOR", RoleOperator, false},
		{" viewer ", RoleViewer, false},
		{"role_admin", RoleAdmin, false},
		{"SUPERUSER", "", true},
		{"", "", true},
		{"ROLE_", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			role, err := ParseRole(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownRole)
				assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, role)
		})
	}
}

func TestRole_Authority(t *testing.T) {
	assert.Equal(t, "ROLE_ADMIN", RoleAdmin.Authority())
	assert.Equal(t, "ROLE_VIEWER", RoleViewer.Authority())
}

func TestEncodeRoleClaim(t *testing.T) {
	t.Run("single prefix per authority", func(t *testing.T) {
		assert.Equal(t, "ROLE_ADMIN", EncodeRoleClaim([]Role{RoleAdmin}))
	})

	t.Run("deduplicates and skips invalid roles", func(t *testing.T) {
		claim := EncodeRoleClaim([]Role{RoleOperator, Role("ROOT"), RoleOperator, RoleViewer})
		assert.Equal(t, "ROLE_OPERATOR,ROLE_VIEWER", claim)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", EncodeRoleClaim(nil))
	})
}

func TestParseRoleClaim(t *testing.T) {
	tests := []struct {
		name            string
		claim           string
		expectedRoles   []Role
		expectedDropped []string
	}{
		{"single authority", "ROLE_ADMIN", []Role{RoleAdmin}, nil},
		{"bare names", "ADMIN,OPERATOR", []Role{RoleAdmin, RoleOperator}, nil},
		{"whitespace and empty entries", " ROLE_OPERATOR , ,ROLE_VIEWER,", []Role{RoleOperator, RoleViewer}, nil},
		{"unknown entries dropped", "ROLE_ADMIN,ROLE_ROOT", []Role{RoleAdmin}, []string{"ROLE_ROOT"}},
		{"duplicates collapse", "ROLE_ADMIN,ADMIN", []Role{RoleAdmin}, nil},
		{"empty claim falls back to viewer", "", []Role{RoleViewer}, nil},
		{"only separators fall back to viewer", " , ,", []Role{RoleViewer}, nil},
		{"only unknown falls back to viewer", "ROLE_ROOT", []Role{RoleViewer}, []string{"ROLE_ROOT"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roles, dropped := ParseRoleClaim(tt.claim)
			assert.Equal(t, tt.expectedRoles, roles)
			assert.Equal(t, tt.expectedDropped, dropped)
		})
	}
}

func TestRoleClaim_RoundTrip(t *testing.T) {
	for _, roles := range [][]Role{
		{RoleAdmin},
		{RoleOperator},
		{RoleViewer},
		{RoleAdmin, RoleOperator},
	} {
		parsed, dropped := ParseRoleClaim(EncodeRoleClaim(roles))
		assert.Equal(t, roles, parsed)
		assert.Empty(t, dropped)
	}
}

func TestPrincipal(t *testing.T) {
	p := &Principal{Subject: "ana@opspilot.io", Roles: []Role{RoleOperator}}

	assert.True(t, p.HasRole(RoleOperator))
	assert.False(t, p.HasRole(RoleAdmin))
	assert.True(t, p.HasAnyRole(RoleAdmin, RoleOperator))
	assert.False(t, p.HasAnyRole())
	assert.Equal(t, []string{"ROLE_OPERATOR"}, p.Authorities())
	assert.Equal(t, RoleOperator, p.PrimaryRole())

	var nilPrincipal *Principal
	assert.False(t, nilPrincipal.HasAnyRole(RoleViewer))
	assert.Nil(t, nilPrincipal.Authorities())
	assert.Equal(t, RoleViewer, nilPrincipal.PrimaryRole())
}
