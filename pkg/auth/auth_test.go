package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newContext() context.Context {
	return context.Background()
}

func newTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func newVerifier(issuer string) *HMACVerifier {
	v := NewHMACVerifier([]byte("test-secret"), issuer)
	v.now = func() time.Time {
		return newTime("2024-03-10T09:00:00Z")
	}
	return v
}

func TestVerify_RoundTrip(t *testing.T) {
	v := newVerifier("harvestcrm")

	token, err := v.Sign(Actor{ID: 7, Role: RoleStaff}, time.Hour)
	assert.Equal(t, nil, err)

	actor, err := v.Verify(token)
	assert.Equal(t, nil, err)
	assert.Equal(t, Actor{ID: 7, Role: RoleStaff}, actor)
}

func TestVerify_AdminRole(t *testing.T) {
	v := newVerifier("harvestcrm")

	token, err := v.Sign(Actor{ID: 9, Role: RoleAdmin}, time.Hour)
	assert.Equal(t, nil, err)

	actor, err := v.Verify(token)
	assert.Equal(t, nil, err)
	assert.Equal(t, RoleAdmin, actor.Role)
}

func TestVerify_UnknownRoleFallsBackToStaff(t *testing.T) {
	v := newVerifier("harvestcrm")

	token, err := v.Sign(Actor{ID: 9, Role: Role("superuser")}, time.Hour)
	assert.Equal(t, nil, err)

	actor, err := v.Verify(token)
	assert.Equal(t, nil, err)
	assert.Equal(t, RoleStaff, actor.Role)
}

func TestVerify_WrongKey(t *testing.T) {
	v := newVerifier("harvestcrm")
	other := NewHMACVerifier([]byte("other-secret"), "harvestcrm")
	other.now = v.now

	token, err := other.Sign(Actor{ID: 7, Role: RoleStaff}, time.Hour)
	assert.Equal(t, nil, err)

	_, err = v.Verify(token)
	assert.NotEqual(t, nil, err)
}

func TestVerify_WrongIssuer(t *testing.T) {
	v := newVerifier("harvestcrm")
	other := newVerifier("someone-else")

	token, err := other.Sign(Actor{ID: 7, Role: RoleStaff}, time.Hour)
	assert.Equal(t, nil, err)

	_, err = v.Verify(token)
	assert.NotEqual(t, nil, err)
}

func TestVerify_Expired(t *testing.T) {
	v := newVerifier("harvestcrm")

	token, err := v.Sign(Actor{ID: 7, Role: RoleStaff}, time.Hour)
	assert.Equal(t, nil, err)

	v.now = func() time.Time {
		return newTime("2024-03-10T11:00:00Z")
	}
	_, err = v.Verify(token)
	assert.NotEqual(t, nil, err)
}

func TestCanAccess(t *testing.T) {
	staff := Actor{ID: 7, Role: RoleStaff}
	assert.Equal(t, true, staff.CanAccess(7))
	assert.Equal(t, false, staff.CanAccess(8))

	admin := Actor{ID: 1, Role: RoleAdmin}
	assert.Equal(t, true, admin.CanAccess(7))
}

func TestContextRoundTrip(t *testing.T) {
	ctx := ToContext(newContext(), Actor{ID: 7, Role: RoleStaff})
	actor, ok := FromContext(ctx)
	assert.Equal(t, true, ok)
	assert.Equal(t, Actor{ID: 7, Role: RoleStaff}, actor)

	_, ok = FromContext(newContext())
	assert.Equal(t, false, ok)
}
