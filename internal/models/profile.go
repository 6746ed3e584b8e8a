package models

import "time"

// Profile is an API consumer. API keys are stored as a lookup prefix plus a bcrypt hash.
type Profile struct {
	ID           string     `bson:"_id" json:"id"`
	Email        string     `bson:"email" json:"email"`
	Name         string     `bson:"name,omitempty" json:"name,omitempty"`
	APIKeyPrefix string     `bson:"api_key_prefix" json:"-"`
	APIKeyHash   string     `bson:"api_key_hash" json:"-"`
	Disabled     bool       `bson:"disabled" json:"disabled"`
	CreatedAt    time.Time  `bson:"created_at" json:"createdAt"`
	LastUsedAt   *time.Time `bson:"last_used_at,omitempty" json:"lastUsedAt,omitempty"`
}

// APILog is one persisted API request.
type APILog struct {
	ID         string    `bson:"_id" json:"id"`
	RequestID  string    `bson:"request_id" json:"requestId"`
	ProfileID  string    `bson:"profile_id,omitempty" json:"profileId,omitempty"`
	Endpoint   string    `bson:"endpoint" json:"endpoint"`
	Method     string    `bson:"method" json:"method"`
	StatusCode int       `bson:"status_code" json:"statusCode"`
	DurationMs int64     `bson:"duration_ms" json:"durationMs"`
	IPAddress  string    `bson:"ip_address" json:"ipAddress"`
	UserAgent  string    `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string    `json:"status"`
	Version     string    `json:"version"`
	Environment string    `json:"environment"`
	Timestamp   time.Time `json:"timestamp"`
}

// RootResponse is returned by GET /.
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
	Health  string `json:"health"`
}
