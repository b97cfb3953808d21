package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
)

func TestStore_StartsAsGuest(t *testing.T) {
	store := NewStore()

	assert.False(t, store.Authenticated())
	assert.Equal(t, domainauth.RoleGuest, store.Current().Role)
}

func TestStore_SetAndClear(t *testing.T) {
	store := NewStore()

	user := domainauth.Identity{UserID: "u1", Email: "u1@example.com"}
	store.Set(user, domainauth.RoleAdmin, []string{"sites:write"})

	require.True(t, store.Authenticated())
	sess := store.Current()
	assert.Equal(t, "u1", sess.User.UserID)
	assert.Equal(t, domainauth.RoleAdmin, sess.Role)
	assert.True(t, sess.Can("sites:write"))

	store.Clear()
	assert.False(t, store.Authenticated())
	assert.Equal(t, domainauth.RoleGuest, store.Current().Role)
	assert.Empty(t, store.Current().Permissions)
}

func TestStore_CurrentReturnsCopy(t *testing.T) {
	store := NewStore()
	store.Set(domainauth.Identity{UserID: "u1"}, domainauth.RoleUser, []string{"sites:read"})

	sess := store.Current()
	sess.Permissions[0] = "mutated"

	assert.Equal(t, []string{"sites:read"}, store.Current().Permissions)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()
	user := domainauth.Identity{UserID: "u1"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Set(user, domainauth.RoleUser, []string{"sites:read"})
		}()
		go func() {
			defer wg.Done()
			_ = store.Current()
			_ = store.Authenticated()
		}()
	}
	wg.Wait()
}
