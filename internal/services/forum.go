package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/repositories"
)

// ForumService manages posts and comments.
type ForumService struct {
	posts       repositories.PostRepository
	comments    repositories.CommentRepository
	profiles    repositories.ProfileRepository
	engagement  *EngagementService
	limiter     *RateLimiter
	identities  *IdentityResolver
	notifier    Notifier
	postsPerDay int
}

// NewForumService creates a ForumService
func NewForumService(
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	profiles repositories.ProfileRepository,
	engagement *EngagementService,
	limiter *RateLimiter,
	identities *IdentityResolver,
	notifier Notifier,
	postsPerDay int,
) *ForumService {
	return &ForumService{
		posts:       posts,
		comments:    comments,
		profiles:    profiles,
		engagement:  engagement,
		limiter:     limiter,
		identities:  identities,
		notifier:    notifier,
		postsPerDay: postsPerDay,
	}
}

// PostQuota reports the author's remaining daily posts.
func (s *ForumService) PostQuota(ctx context.Context, authorID string) (Decision, error) {
	return s.limiter.CheckAndCount(ctx, authorID, repositories.QuotaPosts, s.postsPerDay)
}

// CreatePost publishes a post within the author's daily quota.
func (s *ForumService) CreatePost(ctx context.Context, authorID string, req *models.CreatePostRequest) (*models.Post, error) {
	if _, err := activeProfile(ctx, s.profiles, authorID); err != nil {
		return nil, err
	}
	title, err := trimmed(req.Title)
	if err != nil {
		return nil, err
	}
	content, err := trimmed(req.Content)
	if err != nil {
		return nil, err
	}
	post := &models.Post{
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		Tags:      strings.TrimSpace(req.Tags),
		CreatedAt: s.limiter.Now(),
	}
	if _, err := s.limiter.Create(ctx, authorID, repositories.QuotaPosts, s.postsPerDay, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts returns a page of posts with authors and engagement, ordered by
// sortBy across all pages.
func (s *ForumService) ListPosts(ctx context.Context, viewer, tag, sortBy string, page, limit int) ([]models.PostView, error) {
	page, limit = normalizePage(page, limit)
	posts, err := s.posts.GetPosts(ctx, tag, repositories.PostOrder(sortBy), (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	views, err := s.postViews(ctx, viewer, posts)
	if err != nil {
		return nil, err
	}
	SortPosts(views, sortBy)
	return views, nil
}

// GetPost returns a post with its comments.
func (s *ForumService) GetPost(ctx context.Context, viewer string, id uint) (*models.PostView, []models.CommentView, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, "failed to load post")
	}
	views, err := s.postViews(ctx, viewer, []models.Post{*post})
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.ListComments(ctx, viewer, id)
	if err != nil {
		return nil, nil, err
	}
	return &views[0], comments, nil
}

// DeletePost removes a post. Authors delete their own; staff delete any.
func (s *ForumService) DeletePost(ctx context.Context, actorID string, id uint) error {
	actor, err := activeProfile(ctx, s.profiles, actorID)
	if err != nil {
		return err
	}
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "failed to load post")
	}
	if !canModerate(actor, post.AuthorID) {
		return ErrForbidden
	}
	if err := s.posts.DeletePost(ctx, id); err != nil {
		return notFoundOr(err, "failed to delete post")
	}
	return nil
}

// AddComment replies to a post and notifies its author.
func (s *ForumService) AddComment(ctx context.Context, authorID string, postID uint, req *models.CreateCommentRequest) (*models.Comment, error) {
	if _, err := activeProfile(ctx, s.profiles, authorID); err != nil {
		return nil, err
	}
	content, err := trimmed(req.Content)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err, "failed to load post")
	}

	comment := &models.Comment{PostID: postID, AuthorID: authorID, Content: content}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	notifyBestEffort(ctx, s.notifier, NewNotification{
		UserID:     post.AuthorID,
		Kind:       models.KindForumReply,
		Content:    "New reply on " + post.Title,
		FromUserID: authorID,
		Link:       "/forum/" + strconv.FormatUint(uint64(postID), 10),
		Metadata:   map[string]interface{}{"post_id": postID, "comment_id": comment.ID},
	})
	return comment, nil
}

// ListComments returns a post's comments, oldest first.
func (s *ForumService) ListComments(ctx context.Context, viewer string, postID uint) ([]models.CommentView, error) {
	comments, err := s.comments.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	ids := make([]uint, len(comments))
	authors := make([]string, len(comments))
	for i := range comments {
		ids[i] = comments[i].ID
		authors[i] = comments[i].AuthorID
	}
	counts, err := s.engagement.Counts(ctx, TargetComment, ids, viewer)
	if err != nil {
		return nil, err
	}
	found, err := s.identities.Resolve(ctx, authors)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve authors: %w", err)
	}

	views := make([]models.CommentView, len(comments))
	for i := range comments {
		e := counts[comments[i].ID]
		views[i] = models.CommentView{
			Comment:   comments[i],
			Author:    withIdentity(found, comments[i].AuthorID),
			Likes:     e.Likes,
			LikedByMe: e.LikedByMe,
		}
	}
	return views, nil
}

// DeleteComment removes a comment. Authors delete their own; staff delete any.
func (s *ForumService) DeleteComment(ctx context.Context, actorID string, id uint) error {
	actor, err := activeProfile(ctx, s.profiles, actorID)
	if err != nil {
		return err
	}
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "failed to load comment")
	}
	if !canModerate(actor, comment.AuthorID) {
		return ErrForbidden
	}
	if err := s.comments.DeleteComment(ctx, id); err != nil {
		return notFoundOr(err, "failed to delete comment")
	}
	return nil
}

func (s *ForumService) postViews(ctx context.Context, viewer string, posts []models.Post) ([]models.PostView, error) {
	ids := make([]uint, len(posts))
	authors := make([]string, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		authors[i] = posts[i].AuthorID
	}
	counts, err := s.engagement.Counts(ctx, TargetPost, ids, viewer)
	if err != nil {
		return nil, err
	}
	found, err := s.identities.Resolve(ctx, authors)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve authors: %w", err)
	}

	views := make([]models.PostView, len(posts))
	for i := range posts {
		e := counts[posts[i].ID]
		views[i] = models.PostView{
			Post:      posts[i],
			Author:    withIdentity(found, posts[i].AuthorID),
			Likes:     e.Likes,
			Comments:  e.Comments,
			LikedByMe: e.LikedByMe,
		}
	}
	return views, nil
}
