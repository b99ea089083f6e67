package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/yopdevs/platform/backend/internal/metrics"
	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/repositories"
)

// Target is the kind of item a like applies to.
type Target string

const (
	TargetPost    Target = "post"
	TargetComment Target = "comment"
)

// Sort orders for post lists.
const (
	SortRecent   = "recent"
	SortLikes    = "likes"
	SortComments = "comments"
)

// Engagement is the aggregate shown next to an item.
type Engagement struct {
	Likes     int64 `json:"likes"`
	Comments  int64 `json:"comments"`
	LikedByMe bool  `json:"liked_by_me"`
}

// EngagementService counts and toggles likes.
type EngagementService struct {
	posts        repositories.PostRepository
	comments     repositories.CommentRepository
	likes        repositories.LikeRepository
	commentLikes repositories.CommentLikeRepository
	identities   *IdentityResolver
	notifier     Notifier
	metrics      *metrics.Metrics
}

// NewEngagementService creates an EngagementService
func NewEngagementService(
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	likes repositories.LikeRepository,
	commentLikes repositories.CommentLikeRepository,
	identities *IdentityResolver,
	notifier Notifier,
	m *metrics.Metrics,
) *EngagementService {
	return &EngagementService{
		posts:        posts,
		comments:     comments,
		likes:        likes,
		commentLikes: commentLikes,
		identities:   identities,
		notifier:     notifier,
		metrics:      m,
	}
}

// Counts returns likes, comments and the viewer's like state for every id.
// Ids with no activity map to a zero Engagement.
func (s *EngagementService) Counts(ctx context.Context, target Target, ids []uint, viewer string) (map[uint]Engagement, error) {
	out := make(map[uint]Engagement, len(ids))
	for _, id := range ids {
		out[id] = Engagement{}
	}
	if len(ids) == 0 {
		return out, nil
	}

	var (
		likes, comments map[uint]int64
		liked           map[uint]bool
		err             error
	)
	switch target {
	case TargetPost:
		if likes, err = s.likes.CountByPostIDs(ctx, ids); err != nil {
			return nil, fmt.Errorf("failed to count likes: %w", err)
		}
		if comments, err = s.comments.CountByPostIDs(ctx, ids); err != nil {
			return nil, fmt.Errorf("failed to count comments: %w", err)
		}
		if liked, err = s.likes.LikedPostIDs(ctx, viewer, ids); err != nil {
			return nil, fmt.Errorf("failed to load likes: %w", err)
		}
	case TargetComment:
		if likes, err = s.commentLikes.CountByCommentIDs(ctx, ids); err != nil {
			return nil, fmt.Errorf("failed to count likes: %w", err)
		}
		if liked, err = s.commentLikes.LikedCommentIDs(ctx, viewer, ids); err != nil {
			return nil, fmt.Errorf("failed to load likes: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown like target %q", target)
	}

	for _, id := range ids {
		out[id] = Engagement{Likes: likes[id], Comments: comments[id], LikedByMe: liked[id]}
	}
	return out, nil
}

// ToggleLike removes userID's like on the item if present, otherwise adds it.
// It returns the item's engagement after the toggle, adjusted from the tally
// read before the write.
func (s *EngagementService) ToggleLike(ctx context.Context, target Target, itemID uint, userID string) (Engagement, error) {
	if err := s.identities.RequireNotBanned(ctx, userID); err != nil {
		return Engagement{}, err
	}

	var (
		ownerID string
		postID  uint
	)
	switch target {
	case TargetPost:
		post, err := s.posts.GetPostByID(ctx, itemID)
		if err != nil {
			return Engagement{}, notFoundOr(err, "failed to load post")
		}
		ownerID, postID = post.AuthorID, post.ID
	case TargetComment:
		comment, err := s.comments.GetCommentByID(ctx, itemID)
		if err != nil {
			return Engagement{}, notFoundOr(err, "failed to load comment")
		}
		ownerID, postID = comment.AuthorID, comment.PostID
	default:
		return Engagement{}, fmt.Errorf("unknown like target %q", target)
	}

	before, err := s.Counts(ctx, target, []uint{itemID}, userID)
	if err != nil {
		return Engagement{}, err
	}
	board := NewBoard(before)

	removed, err := s.unlike(ctx, target, itemID, userID)
	if err != nil {
		return Engagement{}, fmt.Errorf("failed to remove like: %w", err)
	}
	if removed {
		s.metrics.LikeToggled(string(target), false)
		return board.Apply(itemID, false), nil
	}

	if err := s.like(ctx, target, itemID, userID); err != nil {
		// A concurrent toggle already inserted the row.
		if errors.Is(err, repositories.ErrDuplicate) {
			return board.Apply(itemID, true), nil
		}
		return Engagement{}, fmt.Errorf("failed to add like: %w", err)
	}
	s.metrics.LikeToggled(string(target), true)

	kind := models.KindLike
	if target == TargetComment {
		kind = models.KindCommentLike
	}
	notifyBestEffort(ctx, s.notifier, NewNotification{
		UserID:     ownerID,
		Kind:       kind,
		Content:    "Someone liked your " + string(target),
		FromUserID: userID,
		Link:       "/forum/" + strconv.FormatUint(uint64(postID), 10),
		Metadata:   map[string]interface{}{"target": string(target), "item_id": itemID},
	})
	return board.Apply(itemID, true), nil
}

func (s *EngagementService) unlike(ctx context.Context, target Target, itemID uint, userID string) (bool, error) {
	if target == TargetComment {
		return s.commentLikes.DeleteCommentLike(ctx, itemID, userID)
	}
	return s.likes.DeleteLike(ctx, itemID, userID)
}

func (s *EngagementService) like(ctx context.Context, target Target, itemID uint, userID string) error {
	if target == TargetComment {
		return s.commentLikes.CreateCommentLike(ctx, &models.CommentLike{CommentID: itemID, UserID: userID})
	}
	return s.likes.CreateLike(ctx, &models.Like{PostID: itemID, UserID: userID})
}

// Board is the locally loaded engagement of a screen. Toggles adjust the
// loaded counts by one without re-reading the store, so the board can drift
// from storage if another session toggles concurrently.
type Board struct {
	mu     sync.Mutex
	counts map[uint]Engagement
}

// NewBoard starts a board from loaded counts.
func NewBoard(counts map[uint]Engagement) *Board {
	b := &Board{counts: make(map[uint]Engagement, len(counts))}
	for id, e := range counts {
		b.counts[id] = e
	}
	return b
}

// Apply records the outcome of a toggle on id and returns the new tally.
func (b *Board) Apply(id uint, liked bool) Engagement {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := b.counts[id]
	if liked != e.LikedByMe {
		if liked {
			e.Likes++
		} else if e.Likes > 0 {
			e.Likes--
		}
		e.LikedByMe = liked
	}
	b.counts[id] = e
	return e
}

// Get returns the tally of id.
func (b *Board) Get(id uint) Engagement {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts[id]
}

// SortPosts orders posts in place: recent (default), likes or comments. Ties
// keep the newest first.
func SortPosts(posts []models.PostView, order string) {
	newer := func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) }
	var less func(i, j int) bool
	switch order {
	case SortLikes:
		less = func(i, j int) bool {
			if posts[i].Likes != posts[j].Likes {
				return posts[i].Likes > posts[j].Likes
			}
			return newer(i, j)
		}
	case SortComments:
		less = func(i, j int) bool {
			if posts[i].Comments != posts[j].Comments {
				return posts[i].Comments > posts[j].Comments
			}
			return newer(i, j)
		}
	default:
		less = newer
	}
	sort.SliceStable(posts, less)
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
