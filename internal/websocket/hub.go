package websocket

import (
	"sync"

	"go.uber.org/zap"
)

// Hub WebSocket 연결 관리 및 브로드캐스트
//
// 연결 자체가 생존 채널이다. 등록/해제 훅으로 세션 프레즌스와 연동된다:
// 연결이 올라오면 connected 플래그가 켜지고, 끊기면 미리 걸어 둔
// 연결 해제 쓰기(프레즌스, 방 코드 제거)가 발화한다.
type Hub struct {
	// 사용자별 연결 저장 (userID -> *Client)
	clients map[string]*Client
	mu      sync.RWMutex

	// 브로드캐스트 채널
	broadcast chan *Message

	// 등록/해제 채널
	register   chan *Client
	unregister chan *Client

	// 연결 수명 훅
	onConnect    func(userID string)
	onDisconnect func(userID string)

	logger *zap.Logger
}

// Message WebSocket 메시지
type Message struct {
	UserID  string      `json:"-"`       // 수신자 (빈 문자열이면 전체 브로드캐스트)
	Type    string      `json:"type"`    // 메시지 타입
	Payload interface{} `json:"payload"` // 메시지 내용
}

// NewHub Hub 생성
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// OnConnect 연결 등록 훅 설정 (Run 이전에 호출)
func (h *Hub) OnConnect(fn func(userID string)) { h.onConnect = fn }

// OnDisconnect 연결 해제 훅 설정 (Run 이전에 호출)
func (h *Hub) OnDisconnect(fn func(userID string)) { h.onDisconnect = fn }

// Run Hub 실행
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// registerClient 클라이언트 등록
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()

	// 기존 연결이 있으면 닫기 (재접속이므로 해제 훅은 발화하지 않는다)
	if oldClient, exists := h.clients[client.userID]; exists {
		close(oldClient.send)
		h.logger.Info("Replaced existing WebSocket connection",
			zap.String("userId", client.userID))
	}

	h.clients[client.userID] = client
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("WebSocket client registered",
		zap.String("userId", client.userID),
		zap.Int("totalClients", total))

	if h.onConnect != nil {
		h.onConnect(client.userID)
	}
}

// unregisterClient 클라이언트 해제
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()

	current, exists := h.clients[client.userID]
	if !exists || current != client {
		// 이미 새 연결로 교체된 경우
		h.mu.Unlock()
		return
	}

	delete(h.clients, client.userID)
	close(client.send)
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("WebSocket client unregistered",
		zap.String("userId", client.userID),
		zap.Int("totalClients", total))

	if h.onDisconnect != nil {
		h.onDisconnect(client.userID)
	}
}

// broadcastMessage 메시지 브로드캐스트
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if message.UserID == "" {
		// 전체 브로드캐스트
		for _, client := range h.clients {
			select {
			case client.send <- message:
			default:
				// 채널이 가득 찬 경우 연결 해제
				h.logger.Warn("Client send channel full, unregistering",
					zap.String("userId", client.userID))
				go func(c *Client) {
					h.unregister <- c
				}(client)
			}
		}
	} else {
		// 특정 사용자에게만 전송
		if client, exists := h.clients[message.UserID]; exists {
			select {
			case client.send <- message:
			default:
				h.logger.Warn("Client send channel full",
					zap.String("userId", message.UserID))
			}
		}
	}
}

// SendToUser 특정 사용자에게 메시지 전송
func (h *Hub) SendToUser(userID string, msgType string, payload interface{}) {
	h.broadcast <- &Message{
		UserID:  userID,
		Type:    msgType,
		Payload: payload,
	}
}

// Broadcast 모든 사용자에게 메시지 전송
func (h *Hub) Broadcast(msgType string, payload interface{}) {
	h.broadcast <- &Message{
		UserID:  "",
		Type:    msgType,
		Payload: payload,
	}
}

// Connected 사용자의 연결 여부
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}
