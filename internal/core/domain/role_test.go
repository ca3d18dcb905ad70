package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRoles_EditorAndViewerImplyAdmin(t *testing.T) {
	set := ResolveRoles([]string{"editor", "viewer"})

	assert.True(t, set.IsAdmin())
	assert.ElementsMatch(t, []Role{RoleAdmin, RoleEditor, RoleViewer}, set.Slice())
}

func TestResolveRoles_EditorAloneIsNotAdmin(t *testing.T) {
	set := ResolveRoles([]string{"editor"})

	assert.False(t, set.IsAdmin())
	assert.True(t, set.Has(RoleEditor))
}

func TestResolveRoles_IgnoresUnknownLabels(t *testing.T) {
	set := ResolveRoles([]string{"superuser", " Viewer ", ""})

	assert.Equal(t, []Role{RoleViewer}, set.Slice())
}

func TestResolveRoles_ReflectsLabelChanges(t *testing.T) {
	u := &User{Roles: []Role{RoleEditor, RoleViewer}}
	assert.True(t, u.EffectiveRoles().IsAdmin())

	u.Roles = []Role{RoleEditor}
	assert.False(t, u.EffectiveRoles().IsAdmin())
}

func TestNormalizeRoles(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []Role
	}{
		{"empty defaults to user", nil, []Role{RoleUser}},
		{"unknown only defaults to user", []string{"root"}, []Role{RoleUser}},
		{"dedup and lowercase", []string{"EDITOR", "editor", "viewer"}, []Role{RoleEditor, RoleViewer}},
		{"keeps order", []string{"viewer", "admin"}, []Role{RoleViewer, RoleAdmin}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRoles(tt.in))
		})
	}
}
