package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCan(t *testing.T) {
	root := &Caller{UserID: 1, Perfis: []string{PerfilRoot}}
	admin := &Caller{UserID: 2, Perfis: []string{PerfilAdmin}}
	alice := &Caller{UserID: 3, Perfis: []string{"USER"}}

	aliceTarget := Target{UserID: 3, Perfis: []string{"USER"}}
	rootTarget := Target{UserID: 1, Perfis: []string{PerfilRoot}}

	cases := []struct {
		name   string
		caller *Caller
		action Action
		target Target
		want   bool
	}{
		{"nil caller", nil, ReadUser, aliceTarget, false},
		{"self read", alice, ReadUser, aliceTarget, true},
		{"other read", alice, ReadUser, Target{UserID: 2}, false},
		{"admin read", admin, ReadUser, aliceTarget, true},
		{"root counts as admin", root, CreateUser, Target{}, true},
		{"user cannot create", alice, CreateUser, Target{}, false},
		{"self drawer", alice, UseDrawer, aliceTarget, true},
		{"other drawer", alice, UseDrawer, Target{UserID: 9}, false},
		{"admin drawer", admin, UseDrawer, aliceTarget, true},
		{"self update", alice, UpdateUser, aliceTarget, true},
		{"admin update", admin, UpdateUser, aliceTarget, true},
		{"admin cannot update root", admin, UpdateUser, rootTarget, false},
		{"root updates itself", root, UpdateUser, rootTarget, true},
		{"self cannot manage", alice, ManageUser, aliceTarget, false},
		{"admin manages", admin, ManageUser, aliceTarget, true},
		{"user cannot delete", alice, DeleteUser, aliceTarget, false},
		{"admin deletes", admin, DeleteUser, aliceTarget, true},
		{"admin cannot delete root", admin, DeleteUser, rootTarget, false},
		{"root cannot delete itself", root, DeleteUser, rootTarget, false},
		{"unknown action", admin, Action(99), aliceTarget, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Can(tc.caller, tc.action, tc.target))
		})
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret")
	raw, err := tokens.Issue(Caller{UserID: 5, Username: "alice", Perfis: []string{PerfilAdmin}}, time.Hour)
	require.NoError(t, err)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, TokenAccess, claims.Tipo)
	caller := claims.Caller()
	assert.Equal(t, uint(5), caller.UserID)
	assert.Equal(t, "alice", caller.Username)
	assert.True(t, caller.IsAdmin())
}

func TestTokensRejectsExpiredAndForeign(t *testing.T) {
	tokens := NewTokens("test-secret")

	expired, err := tokens.Issue(Caller{UserID: 1}, -time.Minute)
	require.NoError(t, err)
	_, err = tokens.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign, err := NewTokens("other-secret").Issue(Caller{UserID: 1}, time.Hour)
	require.NoError(t, err)
	_, err = tokens.Parse(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensKindsAreNotInterchangeable(t *testing.T) {
	tokens := NewTokens("test-secret")
	caller := Caller{UserID: 3, Username: "bob"}

	access, err := tokens.Issue(caller, time.Hour)
	require.NoError(t, err)
	refresh, err := tokens.IssueRefresh(caller, time.Hour)
	require.NoError(t, err)

	claims, err := tokens.ParseRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenRefresh, claims.Tipo)
	assert.Equal(t, uint(3), claims.UserID)

	_, err = tokens.Parse(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tokens.ParseRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
