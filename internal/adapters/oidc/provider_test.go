package oidc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityClaims_StandardShape(t *testing.T) {
	claims := identityClaims{
		Sub:        "sub-123",
		GivenName:  "Ada",
		FamilyName: "Lovelace",
		Email:      "ada@example.com",
		Groups:     []string{"engineering"},
	}

	identity := claims.identity()
	assert.Equal(t, "sub-123", identity.UserID)
	assert.Equal(t, "Ada", identity.FirstName)
	assert.Equal(t, "Lovelace", identity.LastName)
	assert.Equal(t, "ada@example.com", identity.Email)
	assert.Equal(t, []string{"engineering"}, identity.Groups)
}

func TestIdentityClaims_ADShapeTakesPrecedence(t *testing.T) {
	claims := identityClaims{
		Sub:            "sub-123",
		SamAccountName: "alovelace",
		Mail:           "ada@corp.example.com",
		MemberOf:       []string{"CN=admins"},
	}

	identity := claims.identity()
	assert.Equal(t, "alovelace", identity.UserID)
	assert.Equal(t, "ada@corp.example.com", identity.Email)
	assert.Equal(t, []string{"CN=admins"}, identity.Groups)
}

func TestIdentityClaims_GroupsFallBackToMemberOf(t *testing.T) {
	claims := identityClaims{
		Sub:      "sub-123",
		Groups:   []string{"primary"},
		MemberOf: []string{"fallback"},
	}
	assert.Equal(t, []string{"primary"}, claims.identity().Groups)

	claims.Groups = nil
	assert.Equal(t, []string{"fallback"}, claims.identity().Groups)
}

func TestRandomToken(t *testing.T) {
	one, err := randomToken(32)
	assert.NoError(t, err)
	assert.Len(t, one, 32)

	two, err := randomToken(32)
	assert.NoError(t, err)
	assert.NotEqual(t, one, two)

	empty, err := randomToken(0)
	assert.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "a", firstNonEmpty("", "a", "b"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
