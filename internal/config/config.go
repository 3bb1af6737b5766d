package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret     string
	JWTExpiration time.Duration

	// CORS
	CORSAllowedOrigins []string

	// Realtime store
	OpTimeout time.Duration // 스토어 왕복당 타임아웃 (5~10초)

	// Matchmaking
	QueueTimeout  time.Duration // 매칭 대기 제한 (기본 60초)
	ProbeInterval time.Duration // 매칭 탐색 주기 (기본 2초)
	MatchClaimCAS bool          // 상대 엔트리 CAS 선점 사용 여부

	// Rooms
	RoomCodeTTL time.Duration // 방 코드 만료 (기본 1시간)

	// Cleanup
	CleanupInterval time.Duration
	AbandonAfter    time.Duration // 양쪽 모두 끊긴 세션을 버린 것으로 볼 시간
}

func Load() (*Config, error) {
	// .env 파일 로드 (있는 경우)
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiration:      parseDuration(getEnv("JWT_EXPIRATION", "720h"), 720*time.Hour),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		OpTimeout:          parseDuration(getEnv("STORE_OP_TIMEOUT", "8s"), 8*time.Second),
		QueueTimeout:       parseDuration(getEnv("QUEUE_TIMEOUT", "60s"), 60*time.Second),
		ProbeInterval:      parseDuration(getEnv("PROBE_INTERVAL", "2s"), 2*time.Second),
		MatchClaimCAS:      parseBool(getEnv("MATCH_CLAIM_CAS", "false")),
		RoomCodeTTL:        parseDuration(getEnv("ROOM_CODE_TTL", "1h"), time.Hour),
		CleanupInterval:    parseDuration(getEnv("CLEANUP_INTERVAL", "1m"), time.Minute),
		AbandonAfter:       parseDuration(getEnv("ABANDON_AFTER", "10m"), 10*time.Minute),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

// splitList 쉼표 구분 목록 파싱. 빈 항목은 버린다
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
