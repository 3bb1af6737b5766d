package models

import "time"

type GameType string

const (
	GameTypeQuickMatch  GameType = "quickMatch"
	GameTypePrivateRoom GameType = "privateRoom"
)

type GameStatus string

const (
	GameStatusWaiting   GameStatus = "waiting"
	GameStatusDeploying GameStatus = "deploying"
	GameStatusBattle    GameStatus = "battle"
	GameStatusFinished  GameStatus = "finished"
)

type PlayerRole string

const (
	RolePlayer1 PlayerRole = "player1"
	RolePlayer2 PlayerRole = "player2"
)

type AttackResult string

const (
	AttackMiss AttackResult = "miss"
	AttackHit  AttackResult = "hit"
	AttackKill AttackResult = "kill"
)

// GameOptions 게임 생성 옵션
type GameOptions struct {
	Mode          string `json:"mode"`
	BoardSize     int    `json:"boardSize"`
	AirplaneCount int    `json:"airplaneCount"`
}

// GameMeta 생성 후 변하지 않는 세션 메타데이터
type GameMeta struct {
	ID            string    `json:"id"`
	GameType      GameType  `json:"gameType"`
	RoomCode      string    `json:"roomCode,omitempty"`
	Mode          string    `json:"mode"`
	BoardSize     int       `json:"boardSize"`
	AirplaneCount int       `json:"airplaneCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AirplanePlacement 비행기 배치 (머리 칸 + 방향)
type AirplanePlacement struct {
	ID      string `json:"id"`
	HeadRow int    `json:"headRow"`
	HeadCol int    `json:"headCol"`
	Heading string `json:"heading"` // up | down | left | right
}

// Attack 공격 기록. 공격자 자신의 목록에만 추가된다
type Attack struct {
	Row       int          `json:"row"`
	Col       int          `json:"col"`
	Result    AttackResult `json:"result"`
	Timestamp time.Time    `json:"timestamp"`
}

// PlayerStats 누적 통계. 카운터는 줄어들지 않는다
type PlayerStats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
	Kills  int `json:"kills"`
}

// Player 세션에 포함된 참가자
//
// Attacks와 Stats는 별도 경로에 저장되고 스냅샷 조립 시 채워진다.
type Player struct {
	ID        string              `json:"id"`
	Nickname  string              `json:"nickname"`
	Ready     bool                `json:"ready"`
	Connected bool                `json:"connected"`
	Board     []AirplanePlacement `json:"board,omitempty"`
	Attacks   []Attack            `json:"attacks,omitempty"`
	Stats     PlayerStats         `json:"stats"`
}

// GameSession 한 매치의 공유 상태 스냅샷
//
// Player2는 합류 전까지 nil이다. 상태가 deploying 이후로 넘어가면 역할
// 배정은 불변이다.
type GameSession struct {
	GameMeta
	Status        GameStatus `json:"status"`
	Player1       Player     `json:"player1"`
	Player2       *Player    `json:"player2,omitempty"`
	CurrentTurn   string     `json:"currentTurn,omitempty"`
	TurnStartedAt *time.Time `json:"turnStartedAt,omitempty"`
	Winner        string     `json:"winner,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// Joined 두 번째 플레이어가 합류했는지
func (g *GameSession) Joined() bool {
	return g.Player2 != nil
}

// BothReady 양쪽 모두 준비 완료인지. 실제 게임 시작 신호는 이 조건이며
// 저장된 status 문자열이 battle인지와 무관하다
func (g *GameSession) BothReady() bool {
	return g.Player2 != nil && g.Player1.Ready && g.Player2.Ready
}

// RoleOf 참가자의 역할 반환
func (g *GameSession) RoleOf(userID string) (PlayerRole, bool) {
	if g.Player1.ID == userID {
		return RolePlayer1, true
	}
	if g.Player2 != nil && g.Player2.ID == userID {
		return RolePlayer2, true
	}
	return "", false
}

// Opponent 상대 플레이어 반환 (미합류면 nil)
func (g *GameSession) Opponent(userID string) *Player {
	if g.Player1.ID == userID {
		return g.Player2
	}
	if g.Player2 != nil && g.Player2.ID == userID {
		return &g.Player1
	}
	return nil
}

// Finished 종료 상태인지 (종료 상태에서 빠져나가는 전이는 없다)
func (g *GameSession) Finished() bool {
	return g.Status == GameStatusFinished
}
