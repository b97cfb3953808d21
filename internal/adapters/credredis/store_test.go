package credredis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
	"github.com/target/mmk-ui-client/internal/ports"
	"github.com/target/mmk-ui-client/internal/testutil"
)

func TestStore_SaveAndLoad(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store, err := New(client, "test-profile")
	require.NoError(t, err)
	ctx := context.Background()

	expires := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	saved := domainauth.Credentials{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    expires,
	}
	require.NoError(t, store.Save(ctx, saved))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-1", loaded.AccessToken)
	assert.Equal(t, "refresh-1", loaded.RefreshToken)
	assert.WithinDuration(t, expires, loaded.ExpiresAt, time.Second)
}

func TestStore_LoadMissing(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store, err := New(client, "absent-profile")
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, ports.ErrNoCredentials)
}

func TestStore_Delete(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store, err := New(client, "delete-profile")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Credentials{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, store.Delete(ctx))
	require.NoError(t, store.Delete(ctx))

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ports.ErrNoCredentials)
}

func TestStore_ProfilesAreIsolated(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	one, err := New(client, "profile-one")
	require.NoError(t, err)
	two, err := New(client, "profile-two")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, one.Save(ctx, domainauth.Credentials{AccessToken: "a1"}))
	require.NoError(t, two.Save(ctx, domainauth.Credentials{AccessToken: "a2"}))

	first, err := one.Load(ctx)
	require.NoError(t, err)
	second, err := two.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a1", first.AccessToken)
	assert.Equal(t, "a2", second.AccessToken)
}

func TestStore_CustomPrefix(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store, err := NewWithPrefix(client, "prefixed", "mmk-test:")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Credentials{AccessToken: "a"}))

	exists := client.Exists(ctx, "mmk-test:prefixed").Val()
	assert.Equal(t, int64(1), exists)
}

func TestNew_EmptyProfile(t *testing.T) {
	_, err := New(nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile cannot be empty")
}
