package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/realtime"
)

func TestCanSend_IffAcceptedEitherDirection(t *testing.T) {
	env := threeUsers()
	ctx := context.Background()

	check := func(a, b string) bool {
		ok, err := env.messaging.CanSend(ctx, a, b)
		require.NoError(t, err)
		return ok
	}

	assert.False(t, check("ana", "bruno"))
	assert.False(t, check("ana", "ana"))

	req, err := env.relationships.SendRequest(ctx, "bruno", "ana")
	require.NoError(t, err)
	assert.False(t, check("ana", "bruno"), "pending is not enough")

	_, err = env.relationships.Accept(ctx, req.ID, "ana")
	require.NoError(t, err)
	assert.True(t, check("ana", "bruno"))
	assert.True(t, check("bruno", "ana"))
	assert.False(t, check("ana", "carla"))

	require.NoError(t, env.relationships.Unfriend(ctx, "ana", "bruno"))
	assert.False(t, check("bruno", "ana"))
}

func TestSend_AnaBrunoScenario(t *testing.T) {
	env := newTestEnv(profile("1", "Ana", models.RoleDev), profile("2", "Bruno", models.RoleDev))
	ctx := context.Background()

	res, err := env.messaging.Send(ctx, "1", "2", "Oi Bruno")
	require.NoError(t, err)
	assert.False(t, res.Sent)
	assert.Equal(t, BlockedNotFriends, res.Blocked)
	assert.NotEmpty(t, res.Explanation)
	assert.Empty(t, env.messages.rows, "a refused send must not write a message")

	req, err := env.relationships.SendRequest(ctx, "1", "2")
	require.NoError(t, err)
	_, err = env.relationships.Accept(ctx, req.ID, "2")
	require.NoError(t, err)

	res, err = env.messaging.Send(ctx, "1", "2", "Oi Bruno")
	require.NoError(t, err)
	require.True(t, res.Sent)
	res, err = env.messaging.Send(ctx, "2", "1", "Oi Ana")
	require.NoError(t, err)
	require.True(t, res.Sent)

	for _, viewer := range []string{"1", "2"} {
		peer := "2"
		if viewer == "2" {
			peer = "1"
		}
		conv, err := env.messaging.Conversation(ctx, viewer, peer, 0, 50)
		require.NoError(t, err)
		require.Len(t, conv, 2)
		assert.Equal(t, "Oi Bruno", conv[0].Content)
		assert.Equal(t, "Oi Ana", conv[1].Content)
		assert.True(t, conv[0].CreatedAt.Before(conv[1].CreatedAt))
	}
}

func TestSend_SelfIsBlocked(t *testing.T) {
	env := threeUsers()
	res, err := env.messaging.Send(context.Background(), "ana", "ana", "hi me")
	require.NoError(t, err)
	assert.Equal(t, BlockedSelf, res.Blocked)
}

func TestSend_PublishesAndNotifies(t *testing.T) {
	env := threeUsers()
	ctx := context.Background()

	req, err := env.relationships.SendRequest(ctx, "ana", "bruno")
	require.NoError(t, err)
	_, err = env.relationships.Accept(ctx, req.ID, "bruno")
	require.NoError(t, err)

	res, err := env.messaging.Send(ctx, "bruno", "ana", "  hello  ")
	require.NoError(t, err)
	require.True(t, res.Sent)
	assert.Equal(t, "hello", res.Message.Content)

	require.Len(t, env.feed.events, 1)
	assert.Equal(t, realtime.ConversationTopic("ana", "bruno"), env.feed.events[0].topic)

	var chat []models.Notification
	for _, n := range env.notifications.forUser("ana") {
		if n.Type == models.KindChat {
			chat = append(chat, n)
		}
	}
	require.Len(t, chat, 1)
	assert.Equal(t, "/messages/bruno", *chat[0].Link)
}

func TestConversations_NewestFirst(t *testing.T) {
	env := threeUsers()
	ctx := context.Background()

	for _, other := range []string{"bruno", "carla"} {
		req, err := env.relationships.SendRequest(ctx, "ana", other)
		require.NoError(t, err)
		_, err = env.relationships.Accept(ctx, req.ID, other)
		require.NoError(t, err)
	}

	_, err := env.messaging.Send(ctx, "ana", "bruno", "first")
	require.NoError(t, err)
	_, err = env.messaging.Send(ctx, "carla", "ana", "second")
	require.NoError(t, err)

	summaries, err := env.messaging.Conversations(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "carla", summaries[0].Peer.ID)
	assert.Equal(t, "second", summaries[0].LastMessage.Content)
	assert.Equal(t, "bruno", summaries[1].Peer.ID)
}

func TestSend_BlankContentRejected(t *testing.T) {
	env := threeUsers()
	ctx := context.Background()
	req, err := env.relationships.SendRequest(ctx, "ana", "bruno")
	require.NoError(t, err)
	_, err = env.relationships.Accept(ctx, req.ID, "bruno")
	require.NoError(t, err)

	for _, content := range []string{"", "   ", "\n\t "} {
		_, err := env.messaging.Send(ctx, "ana", "bruno", content)
		assert.ErrorIs(t, err, ErrBlankContent, "content %q", content)
	}
	assert.Empty(t, env.messages.rows)
	assert.Empty(t, env.feed.events)
}

func TestSend_BannedSenderRejected(t *testing.T) {
	env := threeUsers()
	ctx := context.Background()
	req, err := env.relationships.SendRequest(ctx, "ana", "bruno")
	require.NoError(t, err)
	_, err = env.relationships.Accept(ctx, req.ID, "bruno")
	require.NoError(t, err)
	require.NoError(t, env.profiles.SetRole(ctx, "ana", models.RoleBanned))

	_, err = env.messaging.Send(ctx, "ana", "bruno", "hello")
	assert.ErrorIs(t, err, ErrBanned)
	assert.Empty(t, env.messages.rows)

	res, err := env.messaging.Send(ctx, "bruno", "ana", "still there?")
	require.NoError(t, err)
	assert.True(t, res.Sent, "messages to a banned account are not blocked")
}
