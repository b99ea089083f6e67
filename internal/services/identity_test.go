package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yopdevs/platform/backend/internal/models"
)

func TestIdentityResolver_BatchesAndCaches(t *testing.T) {
	env := newTestEnv(profile("ana", "Ana", models.RoleDev), profile("bruno", "Bruno", models.RoleMember))
	ctx := context.Background()

	got, err := env.identities.Resolve(ctx, []string{"ana", "bruno", "ana", "ghost", ""})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "Ana", got["ana"].FullName)
	assert.Equal(t, models.RoleMember, got["bruno"].Role)
	assert.Equal(t, 1, env.profiles.lookups)

	_, err = env.identities.Resolve(ctx, []string{"ana", "bruno"})
	require.NoError(t, err)
	assert.Equal(t, 1, env.profiles.lookups, "second lookup should be served from the cache")
}

func TestIdentityResolver_CacheFailureFallsThrough(t *testing.T) {
	env := newTestEnv(profile("ana", "Ana", models.RoleDev))
	env.cache.getErr = errors.New("redis down")

	got, err := env.identities.Resolve(context.Background(), []string{"ana"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", got["ana"].FullName)
}

func TestIdentityResolver_LookupPlaceholder(t *testing.T) {
	env := newTestEnv()
	env.profiles.batchErr = errors.New("db down")

	identity := env.identities.Lookup(context.Background(), "ghost")
	assert.Equal(t, UnknownUserName, identity.FullName)
	assert.Equal(t, "ghost", identity.ID)
}

func TestIdentityResolver_Invalidate(t *testing.T) {
	env := newTestEnv(profile("ana", "Ana", models.RoleDev))
	ctx := context.Background()

	_, err := env.identities.Resolve(ctx, []string{"ana"})
	require.NoError(t, err)
	require.NoError(t, env.profiles.UpdateProfile(ctx, "ana", map[string]interface{}{"full_name": "Ana Lima"}))
	env.identities.Invalidate(ctx, "ana")

	got, err := env.identities.Resolve(ctx, []string{"ana"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", got["ana"].FullName)
}
