package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/domain"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/realtime"
)

// ThreadSynchronizer keeps a live merged view of one conversation
type ThreadSynchronizer interface {
	Sync(ctx context.Context, session Session, counterpartID string) (<-chan dto.ThreadResponse, error)
}

// threadSynchronizerImpl implements ThreadSynchronizer
type threadSynchronizerImpl struct {
	messages   MessageStore
	subscriber realtime.Subscriber
	publisher  realtime.Publisher
	logger     zerolog.Logger
}

// NewThreadSynchronizer creates a new ThreadSynchronizer
func NewThreadSynchronizer(messages MessageStore, subscriber realtime.Subscriber, publisher realtime.Publisher, logger zerolog.Logger) ThreadSynchronizer {
	return &threadSynchronizerImpl{
		messages:   messages,
		subscriber: subscriber,
		publisher:  publisher,
		logger:     logger,
	}
}

func messageKey(m domain.Message) string { return m.ID }

// Sync watches both directions of the conversation and emits the merged thread
// after every change. Unread inbound messages are marked read as they arrive.
// The channel is closed when ctx is cancelled or either watch ends.
func (s *threadSynchronizerImpl) Sync(ctx context.Context, session Session, counterpartID string) (<-chan dto.ThreadResponse, error) {
	if err := requireID("counterpartId", counterpartID); err != nil {
		return nil, err
	}
	self := session.LecturerID
	if counterpartID == self {
		return nil, apperrors.NewValidationError("counterpartId", "cannot open a conversation with yourself")
	}

	ctx, cancel := context.WithCancel(ctx)
	outbound, err := realtime.Watch(ctx, s.subscriber, realtime.MessagesTopic(self, counterpartID),
		func(ctx context.Context) ([]domain.Message, error) {
			return s.messages.Direction(ctx, self, counterpartID)
		}, messageKey)
	if err != nil {
		cancel()
		return nil, err
	}
	inbound, err := realtime.Watch(ctx, s.subscriber, realtime.MessagesTopic(counterpartID, self),
		func(ctx context.Context) ([]domain.Message, error) {
			return s.messages.Direction(ctx, counterpartID, self)
		}, messageKey)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan dto.ThreadResponse)
	go func() {
		defer close(out)
		defer cancel()

		log := s.logger.With().Str("lecturerID", self).Str("counterpartID", counterpartID).Logger()
		log.Debug().Msg("Thread sync started")
		defer log.Debug().Msg("Thread sync stopped")

		thread := domain.NewThread()
		for {
			var (
				snap realtime.Snapshot[domain.Message]
				ok   bool
			)
			select {
			case <-ctx.Done():
				return
			case snap, ok = <-outbound:
			case snap, ok = <-inbound:
			}
			if !ok {
				return
			}

			var frame dto.ThreadResponse
			if snap.Err != nil {
				log.Warn().Err(snap.Err).Msg("Thread direction refresh failed")
				frame = dto.NewThreadResponse(self, counterpartID, thread.Messages())
				frame.Error = "failed to refresh messages"
			} else {
				thread.Remove(snap.Removed...)
				thread.Merge(snap.Docs)
				s.reconcile(ctx, log, self, counterpartID, thread)
				frame = dto.NewThreadResponse(self, counterpartID, thread.Messages())
			}

			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// reconcile marks unread inbound messages read in the store and in thread
func (s *threadSynchronizerImpl) reconcile(ctx context.Context, log zerolog.Logger, self, counterpartID string, thread *domain.Thread) {
	unread := thread.UnreadFor(self, counterpartID)
	if len(unread) == 0 {
		return
	}
	marked, err := s.messages.MarkRead(ctx, self, counterpartID, unread)
	if err != nil {
		log.Warn().Err(err).Int("unread", len(unread)).Msg("Failed to mark messages read")
		return
	}
	if thread.MarkRead(marked...) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, realtime.MessageTopics(counterpartID, self)...); err != nil {
		log.Warn().Err(err).Msg("Failed to publish read receipts")
	}
}
