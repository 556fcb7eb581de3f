package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServerURL        string
	AccessToken      string
	Offline          bool
	OfflineName      string
	PingInterval     time.Duration
	PongWait         time.Duration
	WriteWait        time.Duration
	HandshakeTimeout time.Duration
	RedisURL         string
	RedisPassword    string
	SnapshotTTL      time.Duration
	MetricsAddr      string
	Port             string
	JWTSecret        string
	AccessTokenTTL   time.Duration
	FinishedMatchTTL time.Duration
	AllowedOrigins   []string
	OAuthConfig      OAuthConfig
}

var AppConfig *Config

func LoadConfig() *Config {
	serverURL := GetEnv("HIVE_SERVER_URL", "ws://localhost:8080/ws")
	accessToken := GetEnv("HIVE_ACCESS_TOKEN", "")
	offline := GetEnvAsBool("HIVE_OFFLINE", false)
	offlineName := GetEnv("HIVE_OFFLINE_NAME", "Guest")

	// Keep-alive: ping well inside the pong window
	pingIntervalSec := GetEnvAsInt("PING_INTERVAL_SECONDS", 30)
	pongWaitSec := GetEnvAsInt("PONG_WAIT_SECONDS", 60)
	if pongWaitSec <= pingIntervalSec {
		log.Printf("[CONFIG] PONG_WAIT_SECONDS (%d) must exceed PING_INTERVAL_SECONDS (%d), using %d", pongWaitSec, pingIntervalSec, pingIntervalSec*2)
		pongWaitSec = pingIntervalSec * 2
	}
	writeWaitSec := GetEnvAsInt("WRITE_WAIT_SECONDS", 10)
	handshakeTimeoutSec := GetEnvAsInt("HANDSHAKE_TIMEOUT_SECONDS", 10)

	// Snapshot cache
	redisURL := GetEnv("REDIS_URL", "")
	redisPassword := GetEnv("REDIS_PASSWORD", "")
	snapshotTTLMin := GetEnvAsInt("SNAPSHOT_TTL_MINUTES", 60)

	// Dev server
	port := GetEnv("PORT", "8080")
	jwtSecret := GetEnv("JWT_SECRET", "your-secret-key-change-this-in-production")
	accessTokenTTLMin := GetEnvAsInt("ACCESS_TOKEN_TTL_MINUTES", 60)
	finishedMatchTTLMin := GetEnvAsInt("FINISHED_MATCH_TTL_MINUTES", 10)

	var allowedOrigins []string
	for _, origin := range strings.Split(GetEnv("ALLOWED_ORIGINS", ""), ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			allowedOrigins = append(allowedOrigins, trimmed)
		}
	}

	AppConfig = &Config{
		ServerURL:        serverURL,
		AccessToken:      accessToken,
		Offline:          offline,
		OfflineName:      offlineName,
		PingInterval:     time.Duration(pingIntervalSec) * time.Second,
		PongWait:         time.Duration(pongWaitSec) * time.Second,
		WriteWait:        time.Duration(writeWaitSec) * time.Second,
		HandshakeTimeout: time.Duration(handshakeTimeoutSec) * time.Second,
		RedisURL:         redisURL,
		RedisPassword:    redisPassword,
		SnapshotTTL:      time.Duration(snapshotTTLMin) * time.Minute,
		MetricsAddr:      GetEnv("METRICS_ADDR", ""),
		Port:             port,
		JWTSecret:        jwtSecret,
		AccessTokenTTL:   time.Duration(accessTokenTTLMin) * time.Minute,
		FinishedMatchTTL: time.Duration(finishedMatchTTLMin) * time.Minute,
		AllowedOrigins:   allowedOrigins,
		OAuthConfig:      *LoadOAuthConfig(),
	}

	return AppConfig
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s: %s, using default: %t", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
