package models

import "time"

type QueueEntryStatus string

const (
	QueueStatusWaiting QueueEntryStatus = "waiting"
	QueueStatusMatched QueueEntryStatus = "matched"
)

// QueueEntry 매칭 대기 기록. 사용자당 최대 한 개
type QueueEntry struct {
	UserID        string           `json:"userId"`
	Nickname      string           `json:"nickname"`
	TotalGames    int              `json:"totalGames"`
	WinRate       float64          `json:"winRate"`
	PreferredMode string           `json:"preferredMode"`
	JoinedAt      time.Time        `json:"joinedAt"`
	Status        QueueEntryStatus `json:"status"`
	MatchID       string           `json:"matchId,omitempty"`
}

// PendingMatch 수신자별 매치 알림함 레코드
//
// 스토어 권한 모델상 상대의 큐 문서를 직접 쓸 수 없어, 매치를 만든 쪽이
// 상대의 알림함에 이 레코드를 남겨 매치 사실을 전달한다.
type PendingMatch struct {
	GameID    string    `json:"gameId"`
	MatchedBy string    `json:"matchedBy"`
	Timestamp time.Time `json:"timestamp"`
}

// MatchFound 대기자에게 전달되는 매칭 결과
//
// 제한 시간 내에 매치가 없으면 GameID가 빈 채로 TimedOut이 켜진다.
// 타임아웃은 오류가 아니다.
type MatchFound struct {
	GameID    string `json:"gameId,omitempty"`
	MatchedBy string `json:"matchedBy,omitempty"`
	TimedOut  bool   `json:"timedOut,omitempty"`
}
