package live

import (
	"context"

	"plant-journal-be/internal/entity"
	"plant-journal-be/internal/repository/contract"
	"plant-journal-be/internal/repository/specification"
	"plant-journal-be/pkg/events"

	wmessage "github.com/ThreeDotsLabs/watermill/message"
)

// DiscoveryStream turns store change events into a live per-owner query:
// each subscription first receives the current snapshot, then a fresh
// record list after every mutation of that owner's set. The stream is
// infinite until the context is cancelled, and restartable.
type DiscoveryStream struct {
	repo       contract.DiscoveryRepository
	subscriber wmessage.Subscriber
}

func NewDiscoveryStream(repo contract.DiscoveryRepository, subscriber wmessage.Subscriber) *DiscoveryStream {
	return &DiscoveryStream{
		repo:       repo,
		subscriber: subscriber,
	}
}

// StreamByOwner returns a channel of record lists ordered by capturedAt
// descending. The channel closes when ctx is cancelled. Any number of
// concurrent subscribers may stream the same owner.
func (s *DiscoveryStream) StreamByOwner(ctx context.Context, ownerId string) (<-chan []*entity.Discovery, error) {
	msgs, err := s.subscriber.Subscribe(ctx, events.DiscoveryChangedTopic(ownerId))
	if err != nil {
		return nil, err
	}

	out := make(chan []*entity.Discovery, 1)
	go func() {
		defer close(out)

		if !s.emit(ctx, ownerId, out) {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				msg.Ack()
				if !s.emit(ctx, ownerId, out) {
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *DiscoveryStream) emit(ctx context.Context, ownerId string, out chan []*entity.Discovery) bool {
	records, err := s.repo.FindAll(ctx,
		specification.OwnedBy{OwnerID: ownerId},
		specification.CapturedAtDesc{},
	)
	if err != nil {
		// Query errors end the stream; the subscriber restarts it.
		return false
	}

	// Drop the stale pending list so slow consumers always see the latest.
	select {
	case <-out:
	default:
	}

	select {
	case out <- records:
		return true
	case <-ctx.Done():
		return false
	}
}
