package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/yopdevs/platform/backend/internal/metrics"
	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/realtime"
	"github.com/yopdevs/platform/backend/internal/repositories"
)

// Reasons a send is refused.
const (
	BlockedNotFriends = "not_friends"
	BlockedSelf       = "self"
)

var blockedExplanations = map[string]string{
	BlockedNotFriends: "You can only message people who are your friends. Send a friend request and wait until it is accepted.",
	BlockedSelf:       "You cannot send messages to yourself.",
}

// SendResult reports the outcome of a send. A refused send is not an error;
// Blocked names the missing precondition.
type SendResult struct {
	Sent        bool            `json:"sent"`
	Message     *models.Message `json:"message,omitempty"`
	Blocked     string          `json:"blocked,omitempty"`
	Explanation string          `json:"explanation,omitempty"`
}

// Publisher pushes rows onto the realtime change feed.
type Publisher interface {
	Publish(topic realtime.Topic, id string, payload interface{})
}

// MessagingService sends and lists direct messages between friends.
type MessagingService struct {
	messages      repositories.MessageRepository
	relationships *RelationshipService
	identities    *IdentityResolver
	notifier      Notifier
	feed          Publisher
	metrics       *metrics.Metrics
}

// NewMessagingService creates a MessagingService
func NewMessagingService(
	messages repositories.MessageRepository,
	relationships *RelationshipService,
	identities *IdentityResolver,
	notifier Notifier,
	feed Publisher,
	m *metrics.Metrics,
) *MessagingService {
	return &MessagingService{
		messages:      messages,
		relationships: relationships,
		identities:    identities,
		notifier:      notifier,
		feed:          feed,
		metrics:       m,
	}
}

// CanSend reports whether sender may message receiver: they differ and an
// accepted friendship links them.
func (s *MessagingService) CanSend(ctx context.Context, sender, receiver string) (bool, error) {
	blocked, err := s.gate(ctx, sender, receiver)
	return blocked == "", err
}

func (s *MessagingService) gate(ctx context.Context, sender, receiver string) (string, error) {
	if sender == receiver {
		return BlockedSelf, nil
	}
	friends, err := s.relationships.IsFriend(ctx, sender, receiver)
	if err != nil {
		return "", err
	}
	if !friends {
		return BlockedNotFriends, nil
	}
	return "", nil
}

// Send stores a message when the gate allows it. On refusal nothing is
// written and the result explains why.
func (s *MessagingService) Send(ctx context.Context, sender, receiver, content string) (*SendResult, error) {
	content, err := trimmed(content)
	if err != nil {
		return nil, err
	}
	if err := s.identities.RequireNotBanned(ctx, sender); err != nil {
		return nil, err
	}
	blocked, err := s.gate(ctx, sender, receiver)
	if err != nil {
		return nil, err
	}
	if blocked != "" {
		return s.refuse(blocked), nil
	}

	msg := &models.Message{SenderID: sender, ReceiverID: receiver, Content: content}
	if err := s.messages.CreateIfFriends(ctx, msg); err != nil {
		if errors.Is(err, repositories.ErrNotFriends) {
			return s.refuse(BlockedNotFriends), nil
		}
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	s.metrics.GateDecision("allowed")

	if s.feed != nil {
		s.feed.Publish(realtime.ConversationTopic(sender, receiver), strconv.FormatUint(uint64(msg.ID), 10), msg)
	}
	notifyBestEffort(ctx, s.notifier, NewNotification{
		UserID:     receiver,
		Kind:       models.KindChat,
		Content:    "You have a new message",
		FromUserID: sender,
		Link:       "/messages/" + sender,
		Metadata:   map[string]interface{}{"message_id": msg.ID},
	})

	return &SendResult{Sent: true, Message: msg}, nil
}

func (s *MessagingService) refuse(blocked string) *SendResult {
	s.metrics.GateDecision(blocked)
	return &SendResult{Blocked: blocked, Explanation: blockedExplanations[blocked]}
}

// Conversation returns the messages between viewer and peer in creation
// order. before pages backwards by message id.
func (s *MessagingService) Conversation(ctx context.Context, viewer, peer string, before uint, limit int) ([]models.Message, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	messages, err := s.messages.GetConversation(ctx, viewer, peer, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return messages, nil
}

// Conversations lists viewer's friends with the last message exchanged,
// most recent conversation first. Friends without messages come last.
func (s *MessagingService) Conversations(ctx context.Context, viewer string) ([]models.ConversationSummary, error) {
	friends, err := s.relationships.FriendsOf(ctx, viewer)
	if err != nil {
		return nil, err
	}
	latest, err := s.messages.GetLatestPerPeer(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversations: %w", err)
	}

	last := make(map[string]models.Message, len(latest))
	for _, m := range latest {
		peer := m.ReceiverID
		if peer == viewer {
			peer = m.SenderID
		}
		last[peer] = m
	}

	ids := make([]string, 0, len(friends))
	for id := range friends {
		ids = append(ids, id)
	}
	found, err := s.identities.Resolve(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve conversation peers: %w", err)
	}

	out := make([]models.ConversationSummary, 0, len(ids))
	for _, id := range ids {
		summary := models.ConversationSummary{Peer: withIdentity(found, id)}
		if m, ok := last[id]; ok {
			msg := m
			summary.LastMessage = &msg
			summary.UpdatedAt = m.CreatedAt
		}
		out = append(out, summary)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].Peer.FullName < out[j].Peer.FullName
	})
	return out, nil
}
