package delivery

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Deliverer = (*Recorder)(nil)

func TestRecorder_RecordsMessages(t *testing.T) {
	r := NewRecorder()

	err := r.Deliver(context.Background(), Message{
		To:      "parent@example.com",
		Subject: "Weekly newsletter",
		Body:    "This week we explored fractions.",
	})
	require.NoError(t, err)

	sent := r.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Weekly newsletter", sent[0].Subject)
}

func TestRecorder_RequiresRecipient(t *testing.T) {
	r := NewRecorder()
	err := r.Deliver(context.Background(), Message{Subject: "No recipient"})
	assert.Error(t, err)
	assert.Empty(t, r.Sent())
}

func TestRecorder_SentReturnsSnapshot(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.Deliver(context.Background(), Message{To: "a@example.com"}))

	snapshot := r.Sent()
	snapshot[0].To = "tampered"

	assert.Equal(t, "a@example.com", r.Sent()[0].To)
}

func TestRecorder_ConcurrentDelivery(t *testing.T) {
	r := NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Deliver(context.Background(), Message{To: "parent@example.com"})
		}()
	}
	wg.Wait()

	assert.Len(t, r.Sent(), 20)
}
