package client

import (
	"time"

	"github.com/AnhAnhii/veterans-verify-system/internal/models"
)

// Wire types. They are aliases, so values decode and compare exactly as the server defines them.
type (
	ServiceType                 = models.ServiceType
	VerificationStatus          = models.VerificationStatus
	VASource                    = models.VASource
	MilitaryBranch              = models.MilitaryBranch
	MilitaryStatus              = models.MilitaryStatus
	DocumentType                = models.DocumentType
	Date                        = models.Date
	Veteran                     = models.Veteran
	VeteranCreate               = models.VeteranCreate
	Verification                = models.Verification
	CreateVerificationRequest   = models.CreateVerificationRequest
	CreateVerificationResponse  = models.CreateVerificationResponse
	SubmitVerificationRequest   = models.SubmitVerificationRequest
	SubmitVerificationResponse  = models.SubmitVerificationResponse
	UploadDocumentResponse      = models.UploadDocumentResponse
	VALookupResult              = models.VALookupResult
	VALookupResponse            = models.VALookupResponse
	VAAggregateResponse         = models.VAAggregateResponse
	VerificationHistoryItem     = models.VerificationHistoryItem
	VerificationHistoryResponse = models.VerificationHistoryResponse
	HealthResponse              = models.HealthResponse
)

// ErrInvalidEnum is wrapped by every error caused by an unknown enum value,
// whether it was passed in by the caller or decoded from a response.
var ErrInvalidEnum = models.ErrInvalidEnum

const (
	ServiceChatGPT   = models.ServiceChatGPT
	ServiceSpotify   = models.ServiceSpotify
	ServiceYouTube   = models.ServiceYouTube
	ServiceGoogleOne = models.ServiceGoogleOne
	ServiceOther     = models.ServiceOther
)

const (
	StatusPending          = models.StatusPending
	StatusProcessing       = models.StatusProcessing
	StatusApproved         = models.StatusApproved
	StatusRejected         = models.StatusRejected
	StatusDocumentRequired = models.StatusDocumentRequired
	StatusError            = models.StatusError
	StatusExpired          = models.StatusExpired
)

const (
	SourceGraveLocator = models.SourceGraveLocator
	SourceVLM          = models.SourceVLM
	SourceArmyExplorer = models.SourceArmyExplorer
)

const (
	MilitaryActiveDuty = models.MilitaryActiveDuty
	MilitaryVeteran    = models.MilitaryVeteran
	MilitaryReserve    = models.MilitaryReserve
	MilitaryRetired    = models.MilitaryRetired
)

const (
	BranchArmy               = models.BranchArmy
	BranchNavy               = models.BranchNavy
	BranchAirForce           = models.BranchAirForce
	BranchMarineCorps        = models.BranchMarineCorps
	BranchCoastGuard         = models.BranchCoastGuard
	BranchSpaceForce         = models.BranchSpaceForce
	BranchArmyNationalGuard  = models.BranchArmyNationalGuard
	BranchArmyReserve        = models.BranchArmyReserve
	BranchAirNationalGuard   = models.BranchAirNationalGuard
	BranchAirForceReserve    = models.BranchAirForceReserve
	BranchNavyReserve        = models.BranchNavyReserve
	BranchMarineCorpsReserve = models.BranchMarineCorpsReserve
	BranchCoastGuardReserve  = models.BranchCoastGuardReserve
)

const (
	DocumentDD214      = models.DocumentDD214
	DocumentMilitaryID = models.DocumentMilitaryID
	DocumentVACard     = models.DocumentVACard
	DocumentOther      = models.DocumentOther
)

// MaxHistoryPerPage is the largest page size GetHistory accepts.
const MaxHistoryPerPage = models.MaxHistoryPerPage

// AllSources returns every registry in aggregate order.
func AllSources() []VASource { return models.AllSources() }

// AllBranches returns every military branch.
func AllBranches() []MilitaryBranch { return models.AllBranches() }

func ParseServiceType(s string) (ServiceType, error) { return models.ParseServiceType(s) }

func ParseVerificationStatus(s string) (VerificationStatus, error) {
	return models.ParseVerificationStatus(s)
}

func ParseVASource(s string) (VASource, error) { return models.ParseVASource(s) }

func ParseMilitaryStatus(s string) (MilitaryStatus, error) { return models.ParseMilitaryStatus(s) }

func ParseMilitaryBranch(s string) (MilitaryBranch, error) { return models.ParseMilitaryBranch(s) }

func ParseDocumentType(s string) (DocumentType, error) { return models.ParseDocumentType(s) }

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) { return models.ParseDate(s) }

// NewDate keeps the calendar date of t.
func NewDate(t time.Time) Date { return models.NewDate(t) }
