package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the base server configuration.
type Config struct {
	Host                     string
	Port                     string
	SQLiteDBPath             string
	AllowTestMode            bool
	JWTSecret                string
	JWTAccessTokenExpirySec  int
	JWTRefreshTokenExpirySec int

	// SSDP scan settings used by the receiver registry.
	SSDPDiscoveryTimeoutMs int
	SSDPDiscoveryPasses    int
	SSDPPassIntervalMs     int

	// StaticReceiverIPs lists receivers to probe without SSDP.
	StaticReceiverIPs []string

	// ReceiverTimeoutMs bounds every control round trip.
	ReceiverTimeoutMs int

	// PollIntervalMs is the status poller tick.
	PollIntervalMs int

	// MenuMaxAttempts and MenuRetryDelayMs bound the on-device menu
	// traversal loop. The receiver populates network menus from its
	// backend, so a not-ready page is normal and retried.
	MenuMaxAttempts  int
	MenuRetryDelayMs int

	// AuditRetentionDays controls how long command audit rows are kept.
	AuditRetentionDays int
}

// Load reads configuration from environment variables with defaults.
func Load() (Config, error) {
	host := envString("HOST", "0.0.0.0")
	port := envString("PORT", "9100")
	sqlitePath := envString("SQLITE_DB_PATH", "./data/yamaha-hub.db")
	allowTestMode := envBool("ALLOW_TEST_MODE", false)
	jwtSecret := envString("JWT_SECRET", "")
	jwtAccessExpiry := envInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)
	jwtRefreshExpiry := envInt("JWT_REFRESH_TOKEN_EXPIRY", 2592000)
	ssdpTimeout := envInt("SSDP_DISCOVERY_TIMEOUT_MS", 5000)
	ssdpPasses := envInt("SSDP_DISCOVERY_PASSES", 3)
	ssdpPassInterval := envInt("SSDP_PASS_INTERVAL_MS", 2000)
	staticIPs := envCSV("STATIC_RECEIVER_IPS")
	receiverTimeout := envInt("RECEIVER_TIMEOUT_MS", 10000)
	pollInterval := envInt("POLL_INTERVAL_MS", 2000)
	menuMaxAttempts := envInt("MENU_MAX_ATTEMPTS", 20)
	menuRetryDelay := envInt("MENU_RETRY_DELAY_MS", 1000)
	auditRetention := envInt("AUDIT_RETENTION_DAYS", 30)

	if len(strings.TrimSpace(jwtSecret)) < 32 {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	return Config{
		Host:                     host,
		Port:                     port,
		SQLiteDBPath:             sqlitePath,
		AllowTestMode:            allowTestMode,
		JWTSecret:                jwtSecret,
		JWTAccessTokenExpirySec:  jwtAccessExpiry,
		JWTRefreshTokenExpirySec: jwtRefreshExpiry,
		SSDPDiscoveryTimeoutMs:   ssdpTimeout,
		SSDPDiscoveryPasses:      ssdpPasses,
		SSDPPassIntervalMs:       ssdpPassInterval,
		StaticReceiverIPs:        staticIPs,
		ReceiverTimeoutMs:        receiverTimeout,
		PollIntervalMs:           pollInterval,
		MenuMaxAttempts:          menuMaxAttempts,
		MenuRetryDelayMs:         menuRetryDelay,
		AuditRetentionDays:       auditRetention,
	}, nil
}

func envString(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value == "1" || strings.EqualFold(value, "true")
}

func envCSV(key string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
