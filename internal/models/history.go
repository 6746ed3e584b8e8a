package models

import "time"

// VerificationHistoryItem is a list projection of a verification.
type VerificationHistoryItem struct {
	ID          string             `json:"id"`
	ServiceType ServiceType        `json:"serviceType"`
	Status      VerificationStatus `json:"status"`
	VeteranName string             `json:"veteranName,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	CompletedAt *time.Time         `json:"completedAt,omitempty"`
}

type VerificationHistoryResponse struct {
	Total   int                       `json:"total"`
	Page    int                       `json:"page"`
	PerPage int                       `json:"perPage"`
	Items   []VerificationHistoryItem `json:"items"`
}

// HistoryFilter narrows a history listing. Zero values mean "any".
type HistoryFilter struct {
	Status      VerificationStatus
	ServiceType ServiceType
}

const (
	DefaultHistoryPerPage = 20
	MaxHistoryPerPage     = 100
)
