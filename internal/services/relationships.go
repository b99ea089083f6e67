package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/repositories"
)

// RelationshipService manages friend requests and derives friend sets.
type RelationshipService struct {
	repo       repositories.FriendshipRepository
	identities *IdentityResolver
	notifier   Notifier
}

// NewRelationshipService creates a RelationshipService
func NewRelationshipService(repo repositories.FriendshipRepository, identities *IdentityResolver, notifier Notifier) *RelationshipService {
	return &RelationshipService{repo: repo, identities: identities, notifier: notifier}
}

// friendSet is the set of users linked to userID by an accepted edge.
func friendSet(ctx context.Context, repo repositories.FriendshipRepository, userID string) (map[string]struct{}, error) {
	edges, err := repo.GetAcceptedFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(edges))
	for i := range edges {
		set[edges[i].Other(userID)] = struct{}{}
	}
	return set, nil
}

// FriendsOf returns the ids of userID's accepted friends.
func (s *RelationshipService) FriendsOf(ctx context.Context, userID string) (map[string]struct{}, error) {
	set, err := friendSet(ctx, s.repo, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}
	return set, nil
}

// IsFriend reports whether an accepted edge links a and b.
func (s *RelationshipService) IsFriend(ctx context.Context, a, b string) (bool, error) {
	req, err := s.repo.GetOpenRequestBetween(ctx, a, b)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load relationship: %w", err)
	}
	return req.Status == models.FriendRequestAccepted, nil
}

// Friends returns the identities of userID's friends sorted by name.
func (s *RelationshipService) Friends(ctx context.Context, userID string) ([]models.Identity, error) {
	set, err := s.FriendsOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	found, err := s.identities.Resolve(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve friends: %w", err)
	}
	friends := make([]models.Identity, 0, len(ids))
	for _, id := range ids {
		friends = append(friends, withIdentity(found, id))
	}
	sort.Slice(friends, func(i, j int) bool { return friends[i].FullName < friends[j].FullName })
	return friends, nil
}

// PendingIncoming lists the requests waiting for userID's answer, each joined
// with the sender's identity.
func (s *RelationshipService) PendingIncoming(ctx context.Context, userID string) ([]models.IncomingRequest, error) {
	requests, err := s.repo.GetPendingIncoming(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load friend requests: %w", err)
	}
	senders := make([]string, len(requests))
	for i := range requests {
		senders[i] = requests[i].FromID
	}
	found, err := s.identities.Resolve(ctx, senders)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve senders: %w", err)
	}
	out := make([]models.IncomingRequest, len(requests))
	for i := range requests {
		out[i] = models.IncomingRequest{FriendRequest: requests[i], From: withIdentity(found, requests[i].FromID)}
	}
	return out, nil
}

// PendingOutgoing lists the requests userID sent that are still pending.
func (s *RelationshipService) PendingOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	requests, err := s.repo.GetPendingOutgoing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sent requests: %w", err)
	}
	return requests, nil
}

// HasPendingOutgoing reports whether from has a pending request to to.
func (s *RelationshipService) HasPendingOutgoing(ctx context.Context, from, to string) (bool, error) {
	req, err := s.repo.GetOpenRequestBetween(ctx, from, to)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load relationship: %w", err)
	}
	return req.Status == models.FriendRequestPending && req.FromID == from, nil
}

// Status describes how viewer relates to other.
func (s *RelationshipService) Status(ctx context.Context, viewer, other string) (models.RelationshipStatus, error) {
	req, err := s.repo.GetOpenRequestBetween(ctx, viewer, other)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.RelationshipNone, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load relationship: %w", err)
	}
	switch {
	case req.Status == models.FriendRequestAccepted:
		return models.RelationshipFriends, nil
	case req.FromID == viewer:
		return models.RelationshipPendingOutgoing, nil
	default:
		return models.RelationshipPendingIncoming, nil
	}
}

// SendRequest creates a pending request from -> to. It fails when any pending
// or accepted edge already links the pair, in either direction.
func (s *RelationshipService) SendRequest(ctx context.Context, from, to string) (*models.FriendRequest, error) {
	if from == to {
		return nil, ErrSelfRequest
	}
	if err := s.identities.RequireNotBanned(ctx, from); err != nil {
		return nil, err
	}

	found, err := s.identities.Resolve(ctx, []string{to})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipient: %w", err)
	}
	if _, ok := found[to]; !ok {
		return nil, ErrNotFound
	}

	if _, err := s.repo.GetOpenRequestBetween(ctx, from, to); err == nil {
		return nil, ErrRequestExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to load relationship: %w", err)
	}

	req := &models.FriendRequest{FromID: from, ToID: to}
	if err := s.repo.CreateFriendRequest(ctx, req); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrRequestExists
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	notifyBestEffort(ctx, s.notifier, NewNotification{
		UserID:     to,
		Kind:       models.KindFriendRequest,
		Content:    "You received a new friend request",
		FromUserID: from,
		Link:       "/friends",
		Metadata:   map[string]interface{}{"request_id": req.ID},
	})
	return req, nil
}

// Accept moves a pending request to accepted. Only the recipient may do it.
// Accepting an already accepted request is a no-op.
func (s *RelationshipService) Accept(ctx context.Context, requestID uint, actor string) (*models.FriendRequest, error) {
	req, changed, err := s.respond(ctx, requestID, actor, models.FriendRequestAccepted)
	if err != nil {
		return nil, err
	}
	if changed {
		notifyBestEffort(ctx, s.notifier, NewNotification{
			UserID:     req.FromID,
			Kind:       models.KindFriendAccepted,
			Content:    "Your friend request was accepted",
			FromUserID: actor,
			Link:       "/messages/" + actor,
		})
	}
	return req, nil
}

// Reject moves a pending request to rejected. Only the recipient may do it.
// Rejecting an already rejected request is a no-op.
func (s *RelationshipService) Reject(ctx context.Context, requestID uint, actor string) (*models.FriendRequest, error) {
	req, _, err := s.respond(ctx, requestID, actor, models.FriendRequestRejected)
	return req, err
}

func (s *RelationshipService) respond(ctx context.Context, requestID uint, actor string, target models.FriendRequestStatus) (*models.FriendRequest, bool, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, false, err
	}
	if req.ToID != actor {
		return nil, false, ErrNotRecipient
	}
	if req.Status == target {
		return req, false, nil
	}
	if req.Status.IsTerminal() {
		return nil, false, ErrRequestResolved
	}

	ok, err := s.repo.UpdateFriendRequestStatus(ctx, requestID, models.FriendRequestPending, target)
	if err != nil {
		return nil, false, fmt.Errorf("failed to update friend request: %w", err)
	}
	if !ok {
		// Someone resolved it between the read and the update.
		current, err := s.load(ctx, requestID)
		if err != nil {
			return nil, false, err
		}
		if current.Status == target {
			return current, false, nil
		}
		return nil, false, ErrRequestResolved
	}
	req.Status = target
	return req, true, nil
}

// Cancel withdraws a pending request. Only its sender may do it.
func (s *RelationshipService) Cancel(ctx context.Context, requestID uint, actor string) error {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return err
	}
	if req.FromID != actor {
		return ErrForbidden
	}
	if req.Status != models.FriendRequestPending {
		return ErrRequestResolved
	}
	if err := s.repo.DeleteFriendRequest(ctx, requestID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to cancel friend request: %w", err)
	}
	return nil
}

// Unfriend removes the accepted edge between userID and friendID.
func (s *RelationshipService) Unfriend(ctx context.Context, userID, friendID string) error {
	req, err := s.repo.GetOpenRequestBetween(ctx, userID, friendID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load relationship: %w", err)
	}
	if req.Status != models.FriendRequestAccepted {
		return ErrNotFound
	}
	if err := s.repo.DeleteFriendRequest(ctx, req.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	return nil
}

func (s *RelationshipService) load(ctx context.Context, requestID uint) (*models.FriendRequest, error) {
	req, err := s.repo.GetFriendRequestByID(ctx, requestID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load friend request: %w", err)
	}
	return req, nil
}
