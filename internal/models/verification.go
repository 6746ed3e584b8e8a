package models

import "time"

// VerificationRecord is the stored form of a verification attempt.
type VerificationRecord struct {
	ID                    string             `bson:"_id"`
	ProfileID             string             `bson:"profile_id"`
	ServiceType           ServiceType        `bson:"service_type"`
	ProgramID             string             `bson:"program_id,omitempty"`
	Status                VerificationStatus `bson:"status"`
	VeteranID             string             `bson:"veteran_id,omitempty"`
	SheerIDVerificationID string             `bson:"sheerid_verification_id,omitempty"`
	ProviderStep          string             `bson:"provider_step,omitempty"`
	DocumentKey           string             `bson:"document_key,omitempty"`
	DocumentType          DocumentType       `bson:"document_type,omitempty"`
	ErrorMessage          string             `bson:"error_message,omitempty"`
	CreatedAt             time.Time          `bson:"created_at"`
	UpdatedAt             time.Time          `bson:"updated_at"`
	SubmittedAt           *time.Time         `bson:"submitted_at,omitempty"`
	CompletedAt           *time.Time         `bson:"completed_at,omitempty"`
}

// ToAPI converts the record to its wire form, embedding veteran when non-nil.
func (r *VerificationRecord) ToAPI(veteran *VeteranRecord) *Verification {
	v := &Verification{
		ID:                    r.ID,
		ServiceType:           r.ServiceType,
		Status:                r.Status,
		SheerIDVerificationID: r.SheerIDVerificationID,
		CreatedAt:             r.CreatedAt,
		SubmittedAt:           r.SubmittedAt,
		CompletedAt:           r.CompletedAt,
		ErrorMessage:          r.ErrorMessage,
	}
	if veteran != nil {
		v.Veteran = veteran.ToAPI()
	}
	return v
}

// Verification is the wire snapshot of one verification attempt.
type Verification struct {
	ID                    string             `json:"id"`
	ServiceType           ServiceType        `json:"serviceType"`
	Status                VerificationStatus `json:"status"`
	Veteran               *Veteran           `json:"veteran,omitempty"`
	SheerIDVerificationID string             `json:"sheeridVerificationId,omitempty"`
	CreatedAt             time.Time          `json:"createdAt"`
	SubmittedAt           *time.Time         `json:"submittedAt,omitempty"`
	CompletedAt           *time.Time         `json:"completedAt,omitempty"`
	ErrorMessage          string             `json:"errorMessage,omitempty"`
}

type CreateVerificationRequest struct {
	ServiceType ServiceType `json:"serviceType" binding:"required"`
	ProgramID   string      `json:"programId,omitempty"`
}

type CreateVerificationResponse struct {
	VerificationID        string             `json:"verificationId"`
	SheerIDVerificationID string             `json:"sheeridVerificationId,omitempty"`
	Status                VerificationStatus `json:"status"`
	CreatedAt             time.Time          `json:"createdAt"`
}

type SubmitVerificationRequest struct {
	VerificationID string        `json:"verificationId" binding:"required"`
	Veteran        VeteranCreate `json:"veteran" binding:"required"`
	Email          string        `json:"email" binding:"required,email"`
}

// NextStepDocumentUpload tells the caller to upload a supporting document.
const NextStepDocumentUpload = "document_upload"

type SubmitVerificationResponse struct {
	VerificationID string             `json:"verificationId"`
	Status         VerificationStatus `json:"status"`
	Message        string             `json:"message"`
	NextStep       string             `json:"nextStep,omitempty"`
}

type UploadDocumentResponse struct {
	VerificationID string             `json:"verificationId"`
	DocumentURL    string             `json:"documentUrl"`
	Status         VerificationStatus `json:"status"`
	Message        string             `json:"message"`
}
