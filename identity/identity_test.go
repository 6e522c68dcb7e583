package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntries() []Entry {
	return []Entry{
		{APIKey: "employer-admin-key", Identity: Identity{UserName: "admin1", MSPID: EmployerMSP, Role: RoleAdmin}},
		{APIKey: "employer-user-key", Identity: Identity{UserName: "user1", MSPID: EmployerMSP, Role: "member"}},
		{APIKey: "verifier-key", Identity: Identity{UserName: "bank1", MSPID: VerifierMSP, Role: "member"}},
	}
}

func TestNewRegistry(t *testing.T) {
	t.Run("valid entries", func(t *testing.T) {
		r, err := NewRegistry(testEntries())
		require.NoError(t, err)
		assert.Equal(t, 3, r.Len())
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		_, err := NewRegistry(nil, WithLogger(nil))
		require.NoError(t, err)
	})

	t.Run("blank key", func(t *testing.T) {
		_, err := NewRegistry([]Entry{{APIKey: " ", Identity: Identity{UserName: "u", MSPID: EmployerMSP}}})
		assert.ErrorIs(t, err, ErrEmptyAPIKey)
	})

	t.Run("duplicate key", func(t *testing.T) {
		entries := append(testEntries(), Entry{APIKey: "verifier-key", Identity: Identity{UserName: "x", MSPID: VerifierMSP}})
		_, err := NewRegistry(entries)
		assert.ErrorIs(t, err, ErrDuplicateAPIKey)
	})

	t.Run("incomplete identity", func(t *testing.T) {
		_, err := NewRegistry([]Entry{{APIKey: "k", Identity: Identity{UserName: "u"}}})
		assert.ErrorIs(t, err, ErrIncompleteIdentity)
	})
}

func TestRegistry_Resolve(t *testing.T) {
	r, err := NewRegistry(testEntries())
	require.NoError(t, err)

	id, err := r.Resolve("verifier-key")
	require.NoError(t, err)
	assert.Equal(t, "bank1", id.UserName)

	_, err = r.Resolve("nope")
	assert.ErrorIs(t, err, ErrUnknownAPIKey)

	_, err = r.Resolve("")
	assert.ErrorIs(t, err, ErrEmptyAPIKey)
}

func TestRegistry_DoesNotHoldPlainKeys(t *testing.T) {
	r, err := NewRegistry(testEntries())
	require.NoError(t, err)
	for d := range r.byDigest {
		assert.Len(t, d, 64)
		assert.NotContains(t, d, "key")
	}
}

func TestIdentity_AccessLevel(t *testing.T) {
	tests := []struct {
		id       Identity
		want     string
		canWrite bool
		canRead  bool
	}{
		{Identity{MSPID: EmployerMSP, Role: RoleAdmin}, AccessFull, true, true},
		{Identity{MSPID: VerifierMSP, Role: RoleAdmin}, AccessAdmin, false, true},
		{Identity{MSPID: EmployerMSP}, AccessEmployer, true, true},
		{Identity{MSPID: VerifierMSP}, AccessVerifier, false, true},
		{Identity{MSPID: "Org3MSP"}, AccessNone, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.id.AccessLevel())
			assert.Equal(t, tt.canWrite, tt.id.CanWrite())
			assert.Equal(t, tt.canRead, tt.id.CanRead())
		})
	}
}

func TestContextThreading(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	want := Identity{UserName: "bank1", MSPID: VerifierMSP}
	ctx := WithCaller(context.Background(), want)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, want, got)

	caller := got.Caller()
	assert.Equal(t, "bank1", caller.UserID)
	assert.Equal(t, AccessVerifier, caller.AccessLevel)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "****", Mask("abc"))
	assert.Equal(t, "empl****", Mask("employer-admin-key"))
}
