package models

import "time"

// RoomCode 방 코드 레코드 (코드 → 세션 매핑)
//
// GameID는 예약 직후 빈 문자열일 수 있다. 세션 생성이 끝나면 채워진다.
type RoomCode struct {
	Code      string    `json:"code"`
	GameID    string    `json:"gameId"`
	HostID    string    `json:"hostId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired 코드가 만료되었는지
func (r *RoomCode) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
