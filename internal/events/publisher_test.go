package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoChannel_PublishEnvelope(t *testing.T) {
	pub, ch := NewGoChannel(nil)
	defer pub.Close()

	msgs, err := ch.Subscribe(context.Background(), TopicAttemptSubmitted)
	require.NoError(t, err)

	e := New(TopicAttemptSubmitted, AttemptSubmitted{AttemptID: "a1", QuizID: "q1", UserID: "u1", Score: 2, MaxScore: 3})
	require.NoError(t, pub.Publish(context.Background(), e))

	select {
	case msg := <-msgs:
		msg.Ack()
		assert.Equal(t, e.ID, msg.UUID)
		assert.Equal(t, TopicAttemptSubmitted, msg.Metadata.Get("event_type"))

		var got struct {
			ID         string           `json:"id"`
			Type       string           `json:"type"`
			OccurredAt time.Time        `json:"occurred_at"`
			Data       AttemptSubmitted `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, e.ID, got.ID)
		assert.Equal(t, TopicAttemptSubmitted, got.Type)
		assert.False(t, got.OccurredAt.IsZero())
		assert.Equal(t, 2, got.Data.Score)
		assert.Equal(t, "q1", got.Data.QuizID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestGoChannel_NoSubscribers(t *testing.T) {
	pub, _ := NewGoChannel(nil)
	defer pub.Close()
	assert.NoError(t, pub.Publish(context.Background(), New(TopicQuizGenerated, QuizGenerated{QuizID: "q"})))
}

func TestNewFromConfig(t *testing.T) {
	p, err := NewFromConfig(Config{Publisher: "noop"}, nil)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, p)

	p, err = NewFromConfig(Config{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &WatermillPublisher{}, p)
	p.Close()

	p, err = NewFromConfig(Config{Publisher: "carrier-pigeon"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &WatermillPublisher{}, p)
	p.Close()

	_, err = NewFromConfig(Config{Publisher: KindKafka}, nil)
	assert.Error(t, err, "kafka without brokers must fail")
}

func TestRecorder(t *testing.T) {
	var r Recorder
	ctx := context.Background()
	require.NoError(t, r.Publish(ctx, New(TopicQuizGenerated, nil)))
	require.NoError(t, r.Publish(ctx, New(TopicAttemptSubmitted, nil)))
	require.NoError(t, r.Publish(ctx, New(TopicQuizGenerated, nil)))

	assert.Len(t, r.Events(), 3)
	assert.Len(t, r.OfType(TopicQuizGenerated), 2)
	assert.Empty(t, r.OfType("other"))
}
