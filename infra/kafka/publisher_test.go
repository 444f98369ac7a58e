package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	kgo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cardjinho/Instagram-v0/domain"
)

type fakeWriter struct {
	msgs   []kgo.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kgo.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{w: w}
	at := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	ev := domain.Event{Type: domain.EventLikeCreated, ActorID: "u-alice", SubjectID: "p-1", At: at}

	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "p-1", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "like.created", string(msg.Headers[0].Value))

	var got domain.Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, ev, got)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_WriteError(t *testing.T) {
	p := &Publisher{w: &fakeWriter{err: errors.New("leader not available")}}
	err := p.Publish(context.Background(), domain.Event{Type: domain.EventPostCreated})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post.created")
}

func TestNewPublisher_Validates(t *testing.T) {
	_, err := NewPublisher(nil, "t")
	require.Error(t, err)
	_, err = NewPublisher([]string{"localhost:9092"}, "")
	require.Error(t, err)
}

func TestPublisher_Integration(t *testing.T) {
	brokers := os.Getenv("INSTATERM_TEST_KAFKA")
	if brokers == "" {
		t.Skip("INSTATERM_TEST_KAFKA not set")
	}
	p, err := NewPublisher(strings.Split(brokers, ","), "instaterm.test")
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	require.NoError(t, p.Publish(ctx, domain.Event{Type: domain.EventFollowCreated, ActorID: "a", SubjectID: "b", At: time.Now().UTC()}))
}
