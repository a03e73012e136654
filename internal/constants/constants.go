package constants

import "time"

var AIInputLimits = struct {
	MaxUtteranceLength int
}{
	MaxUtteranceLength: 500,
}

var StreamConfig = struct {
	RequestTimeout time.Duration
	TargetField    string
}{
	RequestTimeout: 90 * time.Second,
	TargetField:    "translatedText",
}

var HistoryConfig = struct {
	DefaultLimit int
	StorageKey   string
	RedisTTL     time.Duration
}{
	DefaultLimit: 10,
	StorageKey:   "warmtalk:history",
	RedisTTL:     0, // history never expires on its own
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        30 * time.Second,
	RateLimitTimeout:    1 * time.Hour,
	HealthCheckInterval: 10 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var ServerConfig = struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxMessageBytes int64
}{
	WriteTimeout:    10 * time.Second,
	ReadTimeout:     10 * time.Second,
	ShutdownTimeout: 10 * time.Second,
	MaxMessageBytes: 64 * 1024,
}
