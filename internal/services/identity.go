package services

import (
	"context"

	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/repositories"
	"github.com/yopdevs/platform/backend/pkg/logger"
)

// UnknownUserName is displayed for ids with no profile.
const UnknownUserName = "Unknown user"

// IdentityResolver maps user ids to display identities in batches.
type IdentityResolver struct {
	profiles repositories.ProfileRepository
	cache    repositories.IdentityCache
}

// NewIdentityResolver creates a resolver. cache may be nil.
func NewIdentityResolver(profiles repositories.ProfileRepository, cache repositories.IdentityCache) *IdentityResolver {
	return &IdentityResolver{profiles: profiles, cache: cache}
}

// Resolve returns the identities of the known ids among ids. Unknown ids are
// omitted. Cache failures fall through to the database.
func (r *IdentityResolver) Resolve(ctx context.Context, ids []string) (map[string]models.Identity, error) {
	wanted := uniqueIDs(ids)
	result := make(map[string]models.Identity, len(wanted))
	if len(wanted) == 0 {
		return result, nil
	}

	if r.cache != nil {
		cached, err := r.cache.GetIdentities(ctx, wanted)
		if err != nil {
			logger.Log.WithError(err).Warn("identity cache read failed")
		}
		for id, identity := range cached {
			result[id] = identity
		}
	}

	var missing []string
	for _, id := range wanted {
		if _, ok := result[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return result, nil
	}

	profiles, err := r.profiles.GetProfilesByIDs(ctx, missing)
	if err != nil {
		return result, err
	}
	loaded := make([]models.Identity, 0, len(profiles))
	for i := range profiles {
		identity := profiles[i].ToIdentity()
		result[identity.ID] = identity
		loaded = append(loaded, identity)
	}

	if r.cache != nil && len(loaded) > 0 {
		if err := r.cache.SetIdentities(ctx, loaded); err != nil {
			logger.Log.WithError(err).Warn("identity cache write failed")
		}
	}
	return result, nil
}

// Lookup resolves one id, returning a placeholder when it is unknown or the
// store is unavailable.
func (r *IdentityResolver) Lookup(ctx context.Context, id string) models.Identity {
	found, err := r.Resolve(ctx, []string{id})
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", id).Warn("identity lookup failed")
	}
	if identity, ok := found[id]; ok {
		return identity
	}
	return Placeholder(id)
}

// RequireNotBanned reads userID's profile from the store, skipping the cache,
// and fails with ErrBanned when the account is banned.
func (r *IdentityResolver) RequireNotBanned(ctx context.Context, userID string) error {
	return notBanned(ctx, r.profiles, userID)
}

// Invalidate drops a cached identity after its profile changed.
func (r *IdentityResolver) Invalidate(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.DeleteIdentity(ctx, id); err != nil {
		logger.Log.WithError(err).WithField("user_id", id).Warn("identity cache invalidation failed")
	}
}

// Placeholder is the identity rendered for an unknown user.
func Placeholder(id string) models.Identity {
	return models.Identity{ID: id, FullName: UnknownUserName}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// withIdentity returns found[id] or the placeholder.
func withIdentity(found map[string]models.Identity, id string) models.Identity {
	if identity, ok := found[id]; ok {
		return identity
	}
	return Placeholder(id)
}
