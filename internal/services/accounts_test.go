package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/pkg/email"
)

func TestEnsureAndCompleteProfile(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	p, err := env.profilesSvc.EnsureProfile(ctx, "uid-1", "new@yop.dev")
	require.NoError(t, err)
	assert.Equal(t, models.RolePending, p.Role)

	again, err := env.profilesSvc.EnsureProfile(ctx, "uid-1", "new@yop.dev")
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)

	done, err := env.profilesSvc.CompleteProfile(ctx, "uid-1", "new@yop.dev", &models.CompleteProfileRequest{FullName: " Nina ", Role: models.RoleDev})
	require.NoError(t, err)
	assert.Equal(t, "Nina", done.FullName)
	assert.Equal(t, models.RoleDev, done.Role)

	_, err = env.profilesSvc.CompleteProfile(ctx, "uid-1", "new@yop.dev", &models.CompleteProfileRequest{FullName: "Nina", Role: models.RoleBusiness})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUpdateProfile_SlugConflictAndCacheInvalidation(t *testing.T) {
	env := threeUsers()
	ctx := context.Background()

	// Warm the cache with the old name.
	assert.Equal(t, "Ana", env.identities.Lookup(ctx, "ana").FullName)

	name := "Ana Souza"
	slug := "AnaDev"
	updated, err := env.profilesSvc.UpdateProfile(ctx, "ana", &models.UpdateProfileRequest{FullName: &name, Slug: &slug})
	require.NoError(t, err)
	require.NotNil(t, updated.Slug)
	assert.Equal(t, "anadev", *updated.Slug)
	assert.Equal(t, "Ana Souza", env.identities.Lookup(ctx, "ana").FullName)

	_, err = env.profilesSvc.UpdateProfile(ctx, "bruno", &models.UpdateProfileRequest{Slug: &slug})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = env.profilesSvc.UpdateProfile(ctx, "ghost", &models.UpdateProfileRequest{FullName: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchProfiles(t *testing.T) {
	env := threeUsers()
	found, err := env.profilesSvc.SearchProfiles(context.Background(), "br", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "bruno", found[0].ID)

	empty, err := env.profilesSvc.SearchProfiles(context.Background(), "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

type stubUploader struct {
	url string
	err error
	got string
}

func (s *stubUploader) Upload(_ context.Context, userID, contentType string, r io.Reader) (string, error) {
	b, _ := io.ReadAll(r)
	s.got = userID + ":" + contentType + ":" + string(b)
	return s.url, s.err
}

func TestUploadAvatar(t *testing.T) {
	env := threeUsers()
	ctx := context.Background()

	_, err := env.profilesSvc.UploadAvatar(ctx, "ana", "image/png", strings.NewReader("png"))
	assert.Error(t, err, "storage not configured")

	uploader := &stubUploader{url: "https://storage.googleapis.com/b/avatars/ana/x.png"}
	svc := NewProfileService(env.profiles, env.identities, uploader)
	url, err := svc.UploadAvatar(ctx, "ana", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, uploader.url, url)
	assert.Equal(t, "ana:image/png:png", uploader.got)

	p, err := svc.GetProfile(ctx, "ana")
	require.NoError(t, err)
	require.NotNil(t, p.AvatarURL)
	assert.Equal(t, uploader.url, *p.AvatarURL)
}

func adminEnv() *testEnv {
	return newTestEnv(
		profile("root", "Root", models.RoleAdmin),
		profile("mod", "Mod", models.RoleModerator),
		profile("ana", "Ana", models.RoleDev),
		profile("spam", "Spammer", models.RoleBanned),
	)
}

func TestAdmin_ListProfilesStaffOnly(t *testing.T) {
	env := adminEnv()
	ctx := context.Background()

	ana, _ := env.profiles.GetProfileByID(ctx, "ana")
	_, err := env.admin.ListProfiles(ctx, ana, 1, 20)
	assert.ErrorIs(t, err, ErrForbidden)

	mod, _ := env.profiles.GetProfileByID(ctx, "mod")
	page, err := env.admin.ListProfiles(ctx, mod, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(4), page.Total)
}

func TestAdmin_SetRoleAndBan(t *testing.T) {
	env := adminEnv()
	ctx := context.Background()
	root, _ := env.profiles.GetProfileByID(ctx, "root")
	mod, _ := env.profiles.GetProfileByID(ctx, "mod")

	assert.ErrorIs(t, env.admin.SetRole(ctx, mod, "ana", models.RoleAdmin), ErrForbidden)
	assert.ErrorIs(t, env.admin.SetRole(ctx, root, "root", models.RoleDev), ErrForbidden)
	assert.ErrorIs(t, env.admin.SetRole(ctx, root, "ghost", models.RoleDev), ErrNotFound)
	require.NoError(t, env.admin.SetRole(ctx, root, "ana", models.RoleBusiness))

	assert.ErrorIs(t, env.admin.Ban(ctx, mod, "root"), ErrForbidden)
	assert.ErrorIs(t, env.admin.Ban(ctx, mod, "mod"), ErrForbidden)
	require.NoError(t, env.admin.Ban(ctx, mod, "ana"))

	_, err := env.forum.CreatePost(ctx, "ana", &models.CreatePostRequest{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, ErrBanned)
}

func TestAdmin_BroadcastNews(t *testing.T) {
	env := adminEnv()
	ctx := context.Background()
	root, _ := env.profiles.GetProfileByID(ctx, "root")
	mod, _ := env.profiles.GetProfileByID(ctx, "mod")

	_, err := env.admin.BroadcastNews(ctx, mod, &models.BroadcastNewsRequest{Content: "hi"})
	assert.ErrorIs(t, err, ErrForbidden)

	n, err := env.admin.BroadcastNews(ctx, root, &models.BroadcastNewsRequest{Content: " Version 2 is live ", Link: "/news"})
	require.NoError(t, err)
	assert.Equal(t, 2, n, "banned users and the sender are skipped")

	inbox := env.notifications.forUser("ana")
	require.Len(t, inbox, 1)
	assert.Equal(t, models.KindNews, inbox[0].Type)
	assert.Equal(t, "Version 2 is live", inbox[0].Content)
	assert.Empty(t, env.notifications.forUser("spam"))
	assert.Empty(t, env.notifications.forUser("root"))
}

func TestPortfolio_GetBySlug(t *testing.T) {
	env := adminEnv()
	ctx := context.Background()

	require.NoError(t, env.profiles.UpdateProfile(ctx, "ana", map[string]interface{}{"slug": "anadev"}))
	require.NoError(t, env.profiles.UpdateProfile(ctx, "spam", map[string]interface{}{"slug": "spam"}))
	newProject(t, env, "ana", true)
	newProject(t, env, "ana", false)

	portfolio, err := env.portfolio.GetBySlug(ctx, " AnaDev ")
	require.NoError(t, err)
	assert.Equal(t, "ana", portfolio.Profile.ID)
	assert.Empty(t, portfolio.Profile.Email)
	assert.Len(t, portfolio.Projects, 1, "private projects are hidden")

	_, err = env.portfolio.GetBySlug(ctx, "spam")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.portfolio.GetBySlug(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

type stubMailer struct {
	sent []email.Message
	err  error
}

func (m *stubMailer) Send(msg email.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "queued", nil
}

func TestContact_Submit(t *testing.T) {
	mailer := &stubMailer{}
	svc := NewContactService(mailer, "team@yop.dev")

	receipt, err := svc.Submit(context.Background(), &models.ContactRequest{
		Name:    "Ana",
		Email:   "ana@example.com",
		Subject: "Partnership",
		Message: "Let's talk",
	})
	require.NoError(t, err)
	assert.Equal(t, "queued", receipt)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "team@yop.dev", mailer.sent[0].To)
	assert.Equal(t, "ana@example.com", mailer.sent[0].ReplyTo)
	assert.Equal(t, "[YOP Devs] Partnership", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].Body, "Let's talk")

	mailer.err = errors.New("relay down")
	_, err = svc.Submit(context.Background(), &models.ContactRequest{Email: "a@b.c"})
	assert.ErrorContains(t, err, "relay down")
}
