package realtime

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Event 경로 변경 알림
type Event struct {
	Type      string          `json:"type"`
	Actor     string          `json:"actor,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Subscription 경로 구독. Events 채널로 변경 알림이 전달된다
type Subscription struct {
	events chan Event
	cancel context.CancelFunc
}

// Events 이벤트 채널 반환 (구독 종료 시 닫힘)
func (sub *Subscription) Events() <-chan Event {
	return sub.events
}

// Close 구독 해제 (멱등)
func (sub *Subscription) Close() {
	sub.cancel()
}

// Publish 채널에 이벤트 발행
func (s *Store) Publish(ctx context.Context, channel string, event Event) error {
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return wrapErr("publish "+channel, err)
	}

	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	if err := s.client.Publish(ctx, channel, data).Err(); err != nil {
		return wrapErr("publish "+channel, err)
	}
	return nil
}

// Subscribe 채널 구독 시작
//
// 반환된 Subscription은 호출자가 Close로 해제해야 한다. 디코딩에 실패한
// 메시지는 버린다.
func (s *Store) Subscribe(ctx context.Context, channel string) *Subscription {
	subCtx, cancel := context.WithCancel(ctx)
	pubsub := s.client.Subscribe(subCtx, channel)

	sub := &Subscription{
		events: make(chan Event, 16),
		cancel: cancel,
	}

	go func() {
		defer close(sub.events)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					s.logger.Error("Failed to unmarshal event",
						zap.String("channel", channel),
						zap.Error(err))
					continue
				}

				select {
				case sub.events <- event:
				case <-subCtx.Done():
					return
				}

			case <-subCtx.Done():
				return
			}
		}
	}()

	return sub
}
