package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/yopdevs/platform/backend/internal/events"
	"github.com/yopdevs/platform/backend/internal/metrics"
	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/repositories"
	"github.com/yopdevs/platform/backend/pkg/logger"
)

// NewNotification is the input of Notify.
type NewNotification struct {
	UserID     string
	Kind       models.NotificationKind
	Content    string
	FromUserID string
	Link       string
	Metadata   map[string]interface{}
}

// Notifier creates notifications for other users.
type Notifier interface {
	Notify(ctx context.Context, n NewNotification) (*models.Notification, error)
}

// DisplayRecord is a notification ready to show.
type DisplayRecord struct {
	ID        string                  `json:"id"`
	Kind      models.NotificationKind `json:"type"`
	Label     string                  `json:"label"`
	Icon      string                  `json:"icon"`
	Link      string                  `json:"link,omitempty"`
	IsRead    bool                    `json:"is_read"`
	CreatedAt time.Time               `json:"created_at"`
	Origin    *models.Identity        `json:"origin,omitempty"`
	IsFriend  bool                    `json:"is_friend"`
}

// NotificationPage is one page of a rendered feed.
type NotificationPage struct {
	Items  []DisplayRecord `json:"items"`
	Total  int64           `json:"total"`
	Unread int64           `json:"unread"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

type notificationTemplate struct {
	// format receives the origin name. Empty means the stored content is
	// always shown.
	format string
	icon   string
}

var notificationTemplates = map[models.NotificationKind]notificationTemplate{
	models.KindChat:           {format: "%s sent you a message", icon: "message"},
	models.KindLike:           {format: "%s liked your post", icon: "heart"},
	models.KindCommentLike:    {format: "%s liked your comment", icon: "heart"},
	models.KindForumReply:     {format: "%s replied to your post", icon: "reply"},
	models.KindInterest:       {format: "%s is interested in your project", icon: "briefcase"},
	models.KindFriendRequest:  {format: "%s sent you a friend request", icon: "user-plus"},
	models.KindFriendAccepted: {format: "%s accepted your friend request", icon: "user-check"},
	models.KindNews:           {icon: "megaphone"},
	models.KindOther:          {icon: "bell"},
}

// chatLinkPattern extracts the peer id from a chat deep link.
var chatLinkPattern = regexp.MustCompile(`^/(?:messages|chat)/([^/?#]+)`)

// NotificationService owns the notification feed.
type NotificationService struct {
	repo        repositories.NotificationRepository
	friendships repositories.FriendshipRepository
	identities  *IdentityResolver
	bus         *events.Bus[events.NotificationsChanged]
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewNotificationService creates a NotificationService
func NewNotificationService(
	repo repositories.NotificationRepository,
	friendships repositories.FriendshipRepository,
	identities *IdentityResolver,
	bus *events.Bus[events.NotificationsChanged],
	m *metrics.Metrics,
) *NotificationService {
	return &NotificationService{
		repo:        repo,
		friendships: friendships,
		identities:  identities,
		bus:         bus,
		metrics:     m,
		now:         time.Now,
	}
}

// OriginID finds who caused n: from_user_id, then metadata sender_id, then
// metadata from_user_id, then for chat notifications the peer in the link.
func OriginID(n *models.Notification) string {
	if n.FromUserID != nil && *n.FromUserID != "" {
		return *n.FromUserID
	}
	if id := n.MetadataString("sender_id"); id != "" {
		return id
	}
	if id := n.MetadataString("from_user_id"); id != "" {
		return id
	}
	if n.Type == models.KindChat && n.Link != nil {
		if m := chatLinkPattern.FindStringSubmatch(*n.Link); m != nil {
			return m[1]
		}
	}
	return ""
}

// Render turns notifications into display records for viewer. Origins and the
// viewer's friends are each loaded once for the whole batch.
func (s *NotificationService) Render(ctx context.Context, viewer string, notifications []models.Notification) []DisplayRecord {
	origins := make([]string, len(notifications))
	for i := range notifications {
		origins[i] = OriginID(&notifications[i])
	}

	identities, err := s.identities.Resolve(ctx, origins)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to resolve notification origins")
	}
	friends, err := friendSet(ctx, s.friendships, viewer)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to load friends for notification badges")
	}

	records := make([]DisplayRecord, 0, len(notifications))
	for i := range notifications {
		n := &notifications[i]
		kind := models.ParseNotificationKind(string(n.Type))
		tmpl := notificationTemplates[kind]

		rec := DisplayRecord{
			ID:        n.ID.Hex(),
			Kind:      kind,
			Label:     n.Content,
			Icon:      tmpl.icon,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		}

		originID := origins[i]
		if identity, ok := identities[originID]; ok {
			origin := identity
			rec.Origin = &origin
			if tmpl.format != "" && identity.FullName != "" {
				rec.Label = fmt.Sprintf(tmpl.format, identity.FullName)
			}
		}
		if originID != "" {
			_, rec.IsFriend = friends[originID]
		}

		switch {
		case n.Link != nil && *n.Link != "":
			rec.Link = *n.Link
		case kind == models.KindChat && originID != "":
			rec.Link = "/messages/" + originID
		case kind == models.KindFriendRequest || kind == models.KindFriendAccepted:
			rec.Link = "/friends"
		}
		records = append(records, rec)
	}
	return records
}

// List returns one rendered page of the user's feed, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, page, limit int) (*NotificationPage, error) {
	page, limit = normalizePage(page, limit)
	items, total, err := s.repo.GetByUserID(ctx, userID, int64((page-1)*limit), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return &NotificationPage{
		Items:  s.Render(ctx, userID, items),
		Total:  total,
		Unread: unread,
		Page:   page,
		Limit:  limit,
	}, nil
}

// UnreadCount returns the badge count.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	ok, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if !ok {
		if _, err := s.ownedBy(ctx, userID, id); err != nil {
			if errors.Is(err, ErrDeletePermission) {
				return ErrForbidden
			}
			return err
		}
	}
	s.publishChanged(ctx, userID, "read")
	return nil
}

// MarkAllRead marks the whole feed as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	s.publishChanged(ctx, userID, "read_all")
	return n, nil
}

// DeleteOne deletes one notification owned by userID. A notification owned by
// someone else is never touched and yields ErrDeletePermission.
func (s *NotificationService) DeleteOne(ctx context.Context, userID, id string) error {
	if _, err := s.ownedBy(ctx, userID, id); err != nil {
		return err
	}
	if _, err := s.repo.DeleteOwned(ctx, userID, []string{id}); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	s.publishChanged(ctx, userID, "deleted")
	return nil
}

// DeleteSelected deletes the given notifications. If any of them belongs to
// another user nothing is deleted.
func (s *NotificationService) DeleteSelected(ctx context.Context, userID string, ids []string) (int64, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	foreign, err := s.repo.CountNotOwned(ctx, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to check notification ownership: %w", err)
	}
	if foreign > 0 {
		return 0, ErrDeletePermission
	}
	n, err := s.repo.DeleteOwned(ctx, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}
	s.publishChanged(ctx, userID, "deleted")
	return n, nil
}

// DeleteAll clears the user's feed.
func (s *NotificationService) DeleteAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}
	s.publishChanged(ctx, userID, "cleared")
	return n, nil
}

// Notify stores a notification for n.UserID. Notifications a user would
// send to themselves are skipped and return nil.
func (s *NotificationService) Notify(ctx context.Context, n NewNotification) (*models.Notification, error) {
	if n.UserID == "" || (n.FromUserID != "" && n.FromUserID == n.UserID) {
		return nil, nil
	}
	kind := models.ParseNotificationKind(string(n.Kind))

	record := &models.Notification{
		UserID:    n.UserID,
		Type:      kind,
		Content:   n.Content,
		Metadata:  n.Metadata,
		CreatedAt: s.now(),
	}
	if n.FromUserID != "" {
		from := n.FromUserID
		record.FromUserID = &from
	}
	if n.Link != "" {
		link := n.Link
		record.Link = &link
	}

	if err := s.repo.CreateNotification(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	s.metrics.NotificationCreated(string(kind))
	s.publishChanged(ctx, n.UserID, "created")
	return record, nil
}

// PruneRead deletes read notifications older than retention.
func (s *NotificationService) PruneRead(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteReadBefore(ctx, s.now().Add(-retention))
}

func (s *NotificationService) ownedBy(ctx context.Context, userID, id string) (*models.Notification, error) {
	n, err := s.repo.GetNotificationByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load notification: %w", err)
	}
	if n.UserID != userID {
		return nil, ErrDeletePermission
	}
	return n, nil
}

func (s *NotificationService) publishChanged(ctx context.Context, userID, reason string) {
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Warn("failed to count unread notifications")
		unread = -1
	}
	s.bus.Publish(events.NotificationsChanged{UserID: userID, Unread: unread, Reason: reason})
}

// notifyBestEffort sends a derived notification and logs failures. The
// primary write already succeeded, so the caller is not failed.
func notifyBestEffort(ctx context.Context, notifier Notifier, n NewNotification) {
	if notifier == nil {
		return
	}
	if _, err := notifier.Notify(ctx, n); err != nil {
		logger.Log.WithError(err).
			WithField("user_id", n.UserID).
			WithField("type", n.Kind).
			Warn("failed to create notification")
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
