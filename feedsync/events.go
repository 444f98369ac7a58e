package feedsync

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Cardjinho/Instagram-v0/domain"
)

const (
	publishTimeout  = 5 * time.Second
	maxQueuedEvents = 256
)

// outbox hands events to the publisher in order on a single background
// goroutine, which exits once the queue is empty.
type outbox struct {
	mu      sync.Mutex
	queue   []domain.Event
	running bool
	wg      sync.WaitGroup
}

// publish queues an activity event. It never blocks on the broker, so a
// confirmed mutation is not held in flight by event delivery.
func (s *Synchronizer) publish(typ domain.EventType, subjectID string) {
	if s.events == nil {
		return
	}
	ev := domain.Event{Type: typ, ActorID: s.viewer.ID, SubjectID: subjectID, At: s.now()}

	s.out.mu.Lock()
	defer s.out.mu.Unlock()
	if len(s.out.queue) >= maxQueuedEvents {
		s.log.Warn("event queue full, dropping event", zap.String("type", string(typ)), zap.String("subject", subjectID))
		return
	}
	s.out.queue = append(s.out.queue, ev)
	if !s.out.running {
		s.out.running = true
		s.out.wg.Add(1)
		go s.drainEvents()
	}
}

func (s *Synchronizer) drainEvents() {
	defer s.out.wg.Done()
	for {
		s.out.mu.Lock()
		if len(s.out.queue) == 0 {
			s.out.running = false
			s.out.mu.Unlock()
			return
		}
		ev := s.out.queue[0]
		s.out.queue = s.out.queue[1:]
		s.out.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := s.events.Publish(ctx, ev)
		cancel()
		if err != nil {
			s.log.Warn("publishing event failed", zap.String("type", string(ev.Type)), zap.Error(err))
		}
	}
}

// Flush waits until every queued event has been handed to the publisher,
// or until ctx is done.
func (s *Synchronizer) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.out.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
