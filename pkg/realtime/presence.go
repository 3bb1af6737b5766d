package realtime

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DisconnectWrite 생존 신호가 끊겼을 때 실행할 예약 쓰기
type DisconnectWrite func(ctx context.Context)

// PresenceTracker 연결 생존 신호와 끊김 시 예약 쓰기 레지스트리
//
// 클라이언트의 생존 채널(WebSocket 연결)이 올라오면 예약 쓰기를 arm하고,
// 채널이 끊기면 등록된 쓰기를 전부 실행한다. 명시적 leave 호출 없이도
// 비정상 종료(앱 강제 종료, 네트워크 단절)가 결국 스토어에 반영되게 한다.
type PresenceTracker struct {
	mu     sync.Mutex
	armed  map[string]map[string]DisconnectWrite // owner -> tag -> write
	logger *zap.Logger
}

// NewPresenceTracker PresenceTracker 생성
func NewPresenceTracker(logger *zap.Logger) *PresenceTracker {
	return &PresenceTracker{
		armed:  make(map[string]map[string]DisconnectWrite),
		logger: logger,
	}
}

// Arm owner의 끊김 시 실행할 쓰기 등록. 같은 tag는 덮어쓴다
func (t *PresenceTracker) Arm(owner, tag string, write DisconnectWrite) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.armed[owner] == nil {
		t.armed[owner] = make(map[string]DisconnectWrite)
	}
	t.armed[owner][tag] = write
}

// Disarm 특정 예약 쓰기 해제
func (t *PresenceTracker) Disarm(owner, tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if writes, ok := t.armed[owner]; ok {
		delete(writes, tag)
		if len(writes) == 0 {
			delete(t.armed, owner)
		}
	}
}

// DisarmAll owner의 모든 예약 쓰기 해제
func (t *PresenceTracker) DisarmAll(owner string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.armed, owner)
}

// Fire owner의 생존 채널이 끊김. 등록된 쓰기를 전부 실행 후 해제
func (t *PresenceTracker) Fire(owner string) {
	t.mu.Lock()
	writes := t.armed[owner]
	delete(t.armed, owner)
	t.mu.Unlock()

	if len(writes) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for tag, write := range writes {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.logger.Error("Disconnect write panicked",
						zap.String("owner", owner),
						zap.String("tag", tag),
						zap.Any("panic", r))
				}
			}()
			write(ctx)
		}()
	}

	t.logger.Debug("Disconnect writes fired",
		zap.String("owner", owner),
		zap.Int("count", len(writes)))
}
