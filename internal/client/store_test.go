package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/models"
)

func wireMsg(id, sender, receiver int64, content string, at time.Time) models.Message {
	return models.Message{ID: id, SenderID: sender, ReceiverID: receiver, Content: content, CreatedAt: at}
}

func TestOptimisticEntryRetiredByConfirmation(t *testing.T) {
	store := NewStore(1)
	store.OpenConversation(2, nil)

	optimistic := store.AppendOptimistic("tok", 2, "hello")
	require.True(t, optimistic.IsTemp())

	displayed := store.Displayed()
	require.Len(t, displayed, 1)
	assert.Equal(t, TempIDPrefix+"tok", displayed[0].ID)

	store.ApplyConfirmation(TempIDPrefix+"tok", 42)

	displayed = store.Displayed()
	require.Len(t, displayed, 1)
	assert.Equal(t, "42", displayed[0].ID)
	assert.False(t, displayed[0].IsTemp())
}

func TestTempAndConfirmedNeverBothVisible(t *testing.T) {
	store := NewStore(1)
	store.AppendOptimistic("tok", 2, "hello")

	// The message lands in a refetch before the confirmation arrives. The
	// temp id strips to its correlation token, which can never collide with
	// a server id, so the optimistic entry survives until its ack.
	now := time.Now()
	store.OpenConversation(2, []models.Message{wireMsg(42, 1, 2, "hello", now)})
	store.ApplyConfirmation(TempIDPrefix+"tok", 42)

	displayed := store.Displayed()
	require.Len(t, displayed, 1)
	assert.Equal(t, "42", displayed[0].ID)
}

func TestLiveSetSurvivesConversationSwitch(t *testing.T) {
	store := NewStore(1)
	now := time.Now()

	store.OpenConversation(2, nil)
	store.ApplyReceive(wireMsg(10, 2, 1, "from two", now))

	store.OpenConversation(3, nil)
	store.ApplyReceive(wireMsg(11, 3, 1, "from three", now.Add(time.Second)))

	displayed := store.Displayed()
	require.Len(t, displayed, 1)
	assert.Equal(t, "11", displayed[0].ID)

	// Switching back, the earlier live message is still there.
	store.OpenConversation(2, nil)
	displayed = store.Displayed()
	require.Len(t, displayed, 1)
	assert.Equal(t, "10", displayed[0].ID)
}

func TestApplyReceiveDeduplicatesByID(t *testing.T) {
	store := NewStore(1)
	store.OpenConversation(2, nil)
	now := time.Now()

	store.ApplyReceive(wireMsg(5, 2, 1, "once", now))
	store.ApplyReceive(wireMsg(5, 2, 1, "once", now))

	require.Len(t, store.Displayed(), 1)
}

func TestHistoryReplacedWholesaleOnRefetch(t *testing.T) {
	store := NewStore(1)
	now := time.Now()

	store.OpenConversation(2, []models.Message{wireMsg(1, 2, 1, "old page", now)})
	store.SetHistory([]models.Message{
		wireMsg(2, 2, 1, "new page a", now.Add(time.Second)),
		wireMsg(3, 1, 2, "new page b", now.Add(2*time.Second)),
	})

	assert.Equal(t, []string{"2", "3"}, ids(store.Displayed()))
}

func TestResetClearsEverything(t *testing.T) {
	store := NewStore(1)
	store.OpenConversation(2, []models.Message{wireMsg(1, 2, 1, "x", time.Now())})
	store.AppendOptimistic("tok", 2, "y")

	store.Reset()

	assert.Nil(t, store.Displayed())
	assert.Zero(t, store.ActivePeer())
}
