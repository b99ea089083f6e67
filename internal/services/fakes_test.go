package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yopdevs/platform/backend/internal/events"
	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/realtime"
	"github.com/yopdevs/platform/backend/internal/repositories"
)

// ---- profiles ----

type fakeProfiles struct {
	mu       sync.Mutex
	byID     map[string]*models.Profile
	batchErr error
	lookups  int
}

func newFakeProfiles(profiles ...models.Profile) *fakeProfiles {
	f := &fakeProfiles{byID: map[string]*models.Profile{}}
	for i := range profiles {
		p := profiles[i]
		f.byID[p.ID] = &p
	}
	return f
}

func (f *fakeProfiles) CreateProfile(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[p.ID]; ok {
		return repositories.ErrDuplicate
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProfiles) GetProfileByID(_ context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) GetProfilesByIDs(_ context.Context, ids []string) ([]models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	var out []models.Profile
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProfiles) GetProfileBySlug(_ context.Context, slug string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.Slug != nil && *p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "full_name":
			p.FullName = v.(string)
		case "role":
			p.Role = v.(models.Role)
		case "bio":
			p.Bio = v.(string)
		case "specialties":
			p.Specialties = v.(string)
		case "avatar_url":
			s := v.(string)
			p.AvatarURL = &s
		case "slug":
			if v == nil {
				p.Slug = nil
				continue
			}
			s := v.(string)
			for oid, other := range f.byID {
				if oid != id && other.Slug != nil && *other.Slug == s {
					return repositories.ErrDuplicate
				}
			}
			p.Slug = &s
		}
	}
	return nil
}

func (f *fakeProfiles) SetRole(ctx context.Context, id string, role models.Role) error {
	return f.UpdateProfile(ctx, id, map[string]interface{}{"role": role})
}

func (f *fakeProfiles) SearchProfiles(_ context.Context, query string, limit int) ([]models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(query)
	var out []models.Profile
	for _, p := range f.byID {
		if strings.Contains(strings.ToLower(p.FullName), q) || strings.Contains(strings.ToLower(p.Specialties), q) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeProfiles) ListProfiles(_ context.Context, offset, limit int) ([]models.Profile, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]models.Profile, 0, len(f.byID))
	for _, p := range f.byID {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return []models.Profile{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ---- identity cache ----

type fakeIdentityCache struct {
	mu      sync.Mutex
	entries map[string]models.Identity
	getErr  error
}

func newFakeIdentityCache() *fakeIdentityCache {
	return &fakeIdentityCache{entries: map[string]models.Identity{}}
}

func (c *fakeIdentityCache) GetIdentities(_ context.Context, ids []string) (map[string]models.Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	out := map[string]models.Identity{}
	for _, id := range ids {
		if e, ok := c.entries[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func (c *fakeIdentityCache) SetIdentities(_ context.Context, identities []models.Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, i := range identities {
		c.entries[i.ID] = i
	}
	return nil
}

func (c *fakeIdentityCache) DeleteIdentity(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

// ---- friendships ----

type fakeFriendships struct {
	mu     sync.Mutex
	nextID uint
	rows   []*models.FriendRequest
}

func newFakeFriendships() *fakeFriendships { return &fakeFriendships{} }

func (f *fakeFriendships) CreateFriendRequest(_ context.Context, req *models.FriendRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	low, high := models.CanonicalPair(req.FromID, req.ToID)
	for _, r := range f.rows {
		if r.PairLow == low && r.PairHigh == high && r.Status != models.FriendRequestRejected {
			return repositories.ErrDuplicate
		}
	}
	f.nextID++
	req.ID = f.nextID
	req.Status = models.FriendRequestPending
	req.PairLow, req.PairHigh = low, high
	cp := *req
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeFriendships) GetFriendRequestByID(_ context.Context, id uint) (*models.FriendRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeFriendships) GetOpenRequestBetween(_ context.Context, a, b string) (*models.FriendRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	low, high := models.CanonicalPair(a, b)
	for i := len(f.rows) - 1; i >= 0; i-- {
		r := f.rows[i]
		if r.PairLow == low && r.PairHigh == high && r.Status != models.FriendRequestRejected {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeFriendships) filter(keep func(*models.FriendRequest) bool) []models.FriendRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.FriendRequest
	for _, r := range f.rows {
		if keep(r) {
			out = append(out, *r)
		}
	}
	return out
}

func (f *fakeFriendships) GetPendingIncoming(_ context.Context, userID string) ([]models.FriendRequest, error) {
	return f.filter(func(r *models.FriendRequest) bool {
		return r.ToID == userID && r.Status == models.FriendRequestPending
	}), nil
}

func (f *fakeFriendships) GetPendingOutgoing(_ context.Context, userID string) ([]models.FriendRequest, error) {
	return f.filter(func(r *models.FriendRequest) bool {
		return r.FromID == userID && r.Status == models.FriendRequestPending
	}), nil
}

func (f *fakeFriendships) GetAcceptedFor(_ context.Context, userID string) ([]models.FriendRequest, error) {
	return f.filter(func(r *models.FriendRequest) bool {
		return (r.FromID == userID || r.ToID == userID) && r.Status == models.FriendRequestAccepted
	}), nil
}

func (f *fakeFriendships) UpdateFriendRequestStatus(_ context.Context, id uint, from, to models.FriendRequestStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id && r.Status == from {
			r.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFriendships) DeleteFriendRequest(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeFriendships) accepted(a, b string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	low, high := models.CanonicalPair(a, b)
	for _, r := range f.rows {
		if r.PairLow == low && r.PairHigh == high && r.Status == models.FriendRequestAccepted {
			return true
		}
	}
	return false
}

// ---- messages ----

type fakeMessages struct {
	mu          sync.Mutex
	friendships *fakeFriendships
	clock       *fakeClock
	rows        []models.Message
}

func (f *fakeMessages) CreateIfFriends(_ context.Context, msg *models.Message) error {
	if !f.friendships.accepted(msg.SenderID, msg.ReceiverID) {
		return repositories.ErrNotFriends
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.ID = uint(len(f.rows) + 1)
	msg.CreatedAt = f.clock.Now()
	f.clock.Advance(time.Second)
	f.rows = append(f.rows, *msg)
	return nil
}

func (f *fakeMessages) GetConversation(_ context.Context, a, b string, before uint, limit int) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Message
	for _, m := range f.rows {
		between := (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
		if between && (before == 0 || m.ID < before) {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeMessages) GetLatestPerPeer(_ context.Context, userID string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := map[string]models.Message{}
	for _, m := range f.rows {
		if m.SenderID != userID && m.ReceiverID != userID {
			continue
		}
		low, high := models.CanonicalPair(m.SenderID, m.ReceiverID)
		latest[low+":"+high] = m
	}
	out := make([]models.Message, 0, len(latest))
	for _, m := range latest {
		out = append(out, m)
	}
	return out, nil
}

// ---- notifications ----

type fakeNotifications struct {
	mu   sync.Mutex
	rows []models.Notification
}

func (f *fakeNotifications) CreateNotification(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = primitive.NewObjectID()
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeNotifications) GetNotificationByID(_ context.Context, id string) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID.Hex() == id {
			cp := f.rows[i]
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeNotifications) GetByUserID(_ context.Context, userID string, skip, limit int64) ([]models.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var mine []models.Notification
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			mine = append(mine, f.rows[i])
		}
	}
	total := int64(len(mine))
	if skip >= total {
		return []models.Notification{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return mine[skip:end], total, nil
}

func (f *fakeNotifications) CountUnread(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.rows {
		if r.UserID == userID && !r.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, userID, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID.Hex() == id && f.rows[i].UserID == userID {
			f.rows[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i := range f.rows {
		if f.rows[i].UserID == userID && !f.rows[i].IsRead {
			f.rows[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) CountNotOwned(_ context.Context, userID string, ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	for _, r := range f.rows {
		if want[r.ID.Hex()] && r.UserID != userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) DeleteOwned(_ context.Context, userID string, ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	kept := f.rows[:0]
	var n int64
	for _, r := range f.rows {
		if want[r.ID.Hex()] && r.UserID == userID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return n, nil
}

func (f *fakeNotifications) DeleteAllForUser(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	var n int64
	for _, r := range f.rows {
		if r.UserID == userID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return n, nil
}

func (f *fakeNotifications) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	var n int64
	for _, r := range f.rows {
		if r.IsRead && r.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return n, nil
}

func (f *fakeNotifications) forUser(userID string) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

// ---- forum ----

type fakePosts struct {
	mu   sync.Mutex
	rows []models.Post

	// Set by newTestEnv so listings can rank by engagement.
	likes    *likeSet
	comments *fakeComments
}

func (f *fakePosts) insert(p *models.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, *p)
}

func (f *fakePosts) GetPostByID(_ context.Context, id uint) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			cp := f.rows[i]
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakePosts) GetPosts(ctx context.Context, tag string, order repositories.PostOrder, offset, limit int) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Post
	var ids []uint
	for i := len(f.rows) - 1; i >= 0; i-- {
		if tag == "" || strings.Contains(f.rows[i].Tags, tag) {
			out = append(out, f.rows[i])
			ids = append(ids, f.rows[i].ID)
		}
	}
	var rank map[uint]int64
	switch order {
	case repositories.PostOrderLikes:
		rank = f.likes.counts(ids)
	case repositories.PostOrderComments:
		rank, _ = f.comments.CountByPostIDs(ctx, ids)
	}
	if rank != nil {
		sort.SliceStable(out, func(i, j int) bool { return rank[out[i].ID] > rank[out[j].ID] })
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePosts) GetPostsByAuthor(_ context.Context, authorID string, offset, limit int) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Post
	for _, p := range f.rows {
		if p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePosts) DeletePost(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakePosts) countSince(authorID string, since time.Time) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.rows {
		if p.AuthorID == authorID && !p.CreatedAt.Before(since) {
			n++
		}
	}
	return n
}

type fakeComments struct {
	mu   sync.Mutex
	rows []models.Comment
}

func (f *fakeComments) CreateComment(_ context.Context, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, *c)
	return nil
}

func (f *fakeComments) GetCommentByID(_ context.Context, id uint) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			cp := f.rows[i]
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeComments) GetCommentsByPostID(_ context.Context, postID uint) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Comment
	for _, c := range f.rows {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComments) CountByPostIDs(_ context.Context, postIDs []uint) (map[uint]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[uint]int64{}
	for _, id := range postIDs {
		for _, c := range f.rows {
			if c.PostID == id {
				out[id]++
			}
		}
	}
	return out, nil
}

func (f *fakeComments) DeleteComment(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

// likeSet backs both like fakes: item id -> user ids.
type likeSet struct {
	mu    sync.Mutex
	likes map[uint]map[string]bool
}

func newLikeSet() *likeSet { return &likeSet{likes: map[uint]map[string]bool{}} }

func (s *likeSet) add(item uint, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.likes[item] == nil {
		s.likes[item] = map[string]bool{}
	}
	if s.likes[item][user] {
		return repositories.ErrDuplicate
	}
	s.likes[item][user] = true
	return nil
}

func (s *likeSet) remove(item uint, user string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.likes[item][user] {
		return false
	}
	delete(s.likes[item], user)
	return true
}

func (s *likeSet) counts(ids []uint) map[uint]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[uint]int64{}
	for _, id := range ids {
		if n := len(s.likes[id]); n > 0 {
			out[id] = int64(n)
		}
	}
	return out
}

func (s *likeSet) likedBy(user string, ids []uint) map[uint]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[uint]bool{}
	for _, id := range ids {
		if s.likes[id][user] {
			out[id] = true
		}
	}
	return out
}

type fakeLikes struct{ *likeSet }

func (f fakeLikes) CreateLike(_ context.Context, l *models.Like) error { return f.add(l.PostID, l.UserID) }
func (f fakeLikes) DeleteLike(_ context.Context, postID uint, userID string) (bool, error) {
	return f.remove(postID, userID), nil
}
func (f fakeLikes) CountByPostIDs(_ context.Context, ids []uint) (map[uint]int64, error) {
	return f.counts(ids), nil
}
func (f fakeLikes) LikedPostIDs(_ context.Context, userID string, ids []uint) (map[uint]bool, error) {
	return f.likedBy(userID, ids), nil
}

type fakeCommentLikes struct{ *likeSet }

func (f fakeCommentLikes) CreateCommentLike(_ context.Context, l *models.CommentLike) error {
	return f.add(l.CommentID, l.UserID)
}
func (f fakeCommentLikes) DeleteCommentLike(_ context.Context, commentID uint, userID string) (bool, error) {
	return f.remove(commentID, userID), nil
}
func (f fakeCommentLikes) CountByCommentIDs(_ context.Context, ids []uint) (map[uint]int64, error) {
	return f.counts(ids), nil
}
func (f fakeCommentLikes) LikedCommentIDs(_ context.Context, userID string, ids []uint) (map[uint]bool, error) {
	return f.likedBy(userID, ids), nil
}

// ---- projects ----

type fakeProjects struct {
	mu   sync.Mutex
	rows []models.Project
}

func (f *fakeProjects) insert(p *models.Project) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, *p)
}

func (f *fakeProjects) GetProjectByID(_ context.Context, id uint) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			cp := f.rows[i]
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeProjects) GetPublicProjects(_ context.Context, offset, limit int) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Project
	for _, p := range f.rows {
		if p.IsPublic {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjects) GetProjectsByOwner(_ context.Context, ownerID string, publicOnly bool) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Project
	for _, p := range f.rows {
		if p.OwnerID == ownerID && (!publicOnly || p.IsPublic) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjects) UpdateProjectStatus(_ context.Context, id uint, status models.ProjectStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Status = status
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeProjects) DeleteProject(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeProjects) countSince(ownerID string, since time.Time) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.rows {
		if p.OwnerID == ownerID && !p.CreatedAt.Before(since) {
			n++
		}
	}
	return n
}

type fakeInterests struct {
	mu   sync.Mutex
	rows []models.ProjectInterest
}

func (f *fakeInterests) CreateInterest(_ context.Context, in *models.ProjectInterest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ProjectID == in.ProjectID && r.UserID == in.UserID {
			return repositories.ErrDuplicate
		}
	}
	in.ID = uint(len(f.rows) + 1)
	in.Status = models.InterestPending
	f.rows = append(f.rows, *in)
	return nil
}

func (f *fakeInterests) GetInterestByID(_ context.Context, id uint) (*models.ProjectInterest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			cp := f.rows[i]
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeInterests) GetInterestsByProject(_ context.Context, projectID uint, status models.InterestStatus) ([]models.ProjectInterest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ProjectInterest
	for _, r := range f.rows {
		if r.ProjectID == projectID && (status == "" || r.Status == status) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeInterests) GetInterestsByUser(_ context.Context, userID string) ([]models.ProjectInterest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ProjectInterest
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeInterests) UpdateInterestStatus(_ context.Context, id uint, status models.InterestStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Status = status
			return nil
		}
	}
	return repositories.ErrNotFound
}

// ---- quota ----

type fakeQuota struct {
	mu       sync.Mutex
	posts    *fakePosts
	projects *fakeProjects
}

func (f *fakeQuota) count(kind repositories.QuotaKind, authorID string, since time.Time) int64 {
	if kind == repositories.QuotaProjects {
		return f.projects.countSince(authorID, since)
	}
	return f.posts.countSince(authorID, since)
}

func (f *fakeQuota) CountCreatedSince(_ context.Context, kind repositories.QuotaKind, authorID string, since time.Time) (int64, error) {
	return f.count(kind, authorID, since), nil
}

func (f *fakeQuota) CreateWithinQuota(_ context.Context, kind repositories.QuotaKind, authorID string, since time.Time, limit int, record interface{}) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	used := f.count(kind, authorID, since)
	if used >= int64(limit) {
		return used, repositories.ErrQuotaExceeded
	}
	switch r := record.(type) {
	case *models.Post:
		f.posts.insert(r)
	case *models.Project:
		f.projects.insert(r)
	}
	return used, nil
}

// ---- clock and feed ----

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type publishedEvent struct {
	topic realtime.Topic
	id    string
}

type fakeFeed struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakeFeed) Publish(topic realtime.Topic, id string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{topic: topic, id: id})
}

// ---- wiring ----

type testEnv struct {
	clock         *fakeClock
	profiles      *fakeProfiles
	cache         *fakeIdentityCache
	friendships   *fakeFriendships
	messages      *fakeMessages
	notifications *fakeNotifications
	posts         *fakePosts
	comments      *fakeComments
	likes         fakeLikes
	commentLikes  fakeCommentLikes
	projects      *fakeProjects
	interests     *fakeInterests
	feed          *fakeFeed
	bus           *events.Bus[events.NotificationsChanged]
	changed       []events.NotificationsChanged

	identities    *IdentityResolver
	notifier      *NotificationService
	relationships *RelationshipService
	messaging     *MessagingService
	limiter       *RateLimiter
	engagement    *EngagementService
	forum         *ForumService
	projectsSvc   *ProjectService
	profilesSvc   *ProfileService
	admin         *AdminService
	portfolio     *PortfolioService
}

func profile(id, name string, role models.Role) models.Profile {
	return models.Profile{ID: id, FullName: name, Role: role}
}

func newTestEnv(profiles ...models.Profile) *testEnv {
	env := &testEnv{
		clock:         &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
		profiles:      newFakeProfiles(profiles...),
		cache:         newFakeIdentityCache(),
		friendships:   newFakeFriendships(),
		notifications: &fakeNotifications{},
		posts:         &fakePosts{},
		comments:      &fakeComments{},
		likes:         fakeLikes{newLikeSet()},
		commentLikes:  fakeCommentLikes{newLikeSet()},
		projects:      &fakeProjects{},
		interests:     &fakeInterests{},
		feed:          &fakeFeed{},
		bus:           events.NewBus[events.NotificationsChanged](),
	}
	env.messages = &fakeMessages{friendships: env.friendships, clock: env.clock}
	env.posts.likes = env.likes.likeSet
	env.posts.comments = env.comments
	env.bus.Subscribe(func(ev events.NotificationsChanged) { env.changed = append(env.changed, ev) })

	env.identities = NewIdentityResolver(env.profiles, env.cache)
	env.notifier = NewNotificationService(env.notifications, env.friendships, env.identities, env.bus, nil)
	env.notifier.now = env.clock.Now
	env.relationships = NewRelationshipService(env.friendships, env.identities, env.notifier)
	env.messaging = NewMessagingService(env.messages, env.relationships, env.identities, env.notifier, env.feed, nil)
	env.limiter = NewRateLimiter(&fakeQuota{posts: env.posts, projects: env.projects}, time.UTC, nil).WithClock(env.clock.Now)
	env.engagement = NewEngagementService(env.posts, env.comments, env.likes, env.commentLikes, env.identities, env.notifier, nil)
	env.forum = NewForumService(env.posts, env.comments, env.profiles, env.engagement, env.limiter, env.identities, env.notifier, 5)
	env.projectsSvc = NewProjectService(env.projects, env.interests, env.profiles, env.limiter, env.identities, env.notifier, 3)
	env.profilesSvc = NewProfileService(env.profiles, env.identities, nil)
	env.admin = NewAdminService(env.profiles, env.identities, env.notifier)
	env.portfolio = NewPortfolioService(env.profiles, env.projects)
	return env
}
