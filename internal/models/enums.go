package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidEnum is wrapped by every Parse* function when the value is not a member of its set.
var ErrInvalidEnum = errors.New("invalid enum value")

func invalid(kind, value string) error {
	return fmt.Errorf("%w: %s %q", ErrInvalidEnum, kind, value)
}

func unmarshalEnum[T any](data []byte, parse func(string) (T, error), dst *T) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := parse(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// ServiceType is the benefit service a verification is made for.
type ServiceType string

const (
	ServiceChatGPT   ServiceType = "chatgpt"
	ServiceSpotify   ServiceType = "spotify"
	ServiceYouTube   ServiceType = "youtube"
	ServiceGoogleOne ServiceType = "google_one"
	ServiceOther     ServiceType = "other"
)

func ParseServiceType(s string) (ServiceType, error) {
	switch v := ServiceType(s); v {
	case ServiceChatGPT, ServiceSpotify, ServiceYouTube, ServiceGoogleOne, ServiceOther:
		return v, nil
	}
	return "", invalid("service type", s)
}

func (s ServiceType) Valid() bool {
	_, err := ParseServiceType(string(s))
	return err == nil
}

func (s *ServiceType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, ParseServiceType, s)
}

// VerificationStatus is the server-side state of a verification.
type VerificationStatus string

const (
	StatusPending          VerificationStatus = "pending"
	StatusProcessing       VerificationStatus = "processing"
	StatusApproved         VerificationStatus = "approved"
	StatusRejected         VerificationStatus = "rejected"
	StatusDocumentRequired VerificationStatus = "document_required"
	StatusError            VerificationStatus = "error"
	StatusExpired          VerificationStatus = "expired"
)

func ParseVerificationStatus(s string) (VerificationStatus, error) {
	switch v := VerificationStatus(s); v {
	case StatusPending, StatusProcessing, StatusApproved, StatusRejected,
		StatusDocumentRequired, StatusError, StatusExpired:
		return v, nil
	}
	return "", invalid("verification status", s)
}

func (s VerificationStatus) Valid() bool {
	_, err := ParseVerificationStatus(string(s))
	return err == nil
}

// IsTerminal reports whether no further transition can happen.
func (s VerificationStatus) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusError, StatusExpired:
		return true
	case StatusPending, StatusProcessing, StatusDocumentRequired:
		return false
	}
	return false
}

func (s *VerificationStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, ParseVerificationStatus, s)
}

// VASource identifies one of the public VA registries.
type VASource string

const (
	SourceGraveLocator VASource = "grave_locator"
	SourceVLM          VASource = "vlm"
	SourceArmyExplorer VASource = "army_explorer"
)

// AllSources returns every registry in aggregate order.
func AllSources() []VASource {
	return []VASource{SourceGraveLocator, SourceVLM, SourceArmyExplorer}
}

func ParseVASource(s string) (VASource, error) {
	switch v := VASource(s); v {
	case SourceGraveLocator, SourceVLM, SourceArmyExplorer:
		return v, nil
	}
	return "", invalid("lookup source", s)
}

func (s VASource) Valid() bool {
	_, err := ParseVASource(string(s))
	return err == nil
}

func (s *VASource) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, ParseVASource, s)
}

// UnmarshalText validates VASource map keys, as in VAAggregateResponse.Sources.
func (s *VASource) UnmarshalText(text []byte) error {
	v, err := ParseVASource(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MilitaryStatus is the service status declared by the veteran.
type MilitaryStatus string

const (
	MilitaryActiveDuty MilitaryStatus = "ACTIVE_DUTY"
	MilitaryVeteran    MilitaryStatus = "VETERAN"
	MilitaryReserve    MilitaryStatus = "RESERVE"
	MilitaryRetired    MilitaryStatus = "RETIRED"
)

func ParseMilitaryStatus(s string) (MilitaryStatus, error) {
	switch v := MilitaryStatus(s); v {
	case MilitaryActiveDuty, MilitaryVeteran, MilitaryReserve, MilitaryRetired:
		return v, nil
	}
	return "", invalid("military status", s)
}

func (s MilitaryStatus) Valid() bool {
	_, err := ParseMilitaryStatus(string(s))
	return err == nil
}

func (s *MilitaryStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, ParseMilitaryStatus, s)
}

// MilitaryBranch is one of the thirteen recognised branches and components.
type MilitaryBranch string

const (
	BranchArmy               MilitaryBranch = "Army"
	BranchNavy               MilitaryBranch = "Navy"
	BranchAirForce           MilitaryBranch = "Air Force"
	BranchMarineCorps        MilitaryBranch = "Marine Corps"
	BranchCoastGuard         MilitaryBranch = "Coast Guard"
	BranchSpaceForce         MilitaryBranch = "Space Force"
	BranchArmyNationalGuard  MilitaryBranch = "Army National Guard"
	BranchArmyReserve        MilitaryBranch = "Army Reserve"
	BranchAirNationalGuard   MilitaryBranch = "Air National Guard"
	BranchAirForceReserve    MilitaryBranch = "Air Force Reserve"
	BranchNavyReserve        MilitaryBranch = "Navy Reserve"
	BranchMarineCorpsReserve MilitaryBranch = "Marine Corps Reserve"
	BranchCoastGuardReserve  MilitaryBranch = "Coast Guard Reserve"
)

// AllBranches returns the branches in display order.
func AllBranches() []MilitaryBranch {
	return []MilitaryBranch{
		BranchArmy, BranchNavy, BranchAirForce, BranchMarineCorps, BranchCoastGuard, BranchSpaceForce,
		BranchArmyNationalGuard, BranchArmyReserve, BranchAirNationalGuard, BranchAirForceReserve,
		BranchNavyReserve, BranchMarineCorpsReserve, BranchCoastGuardReserve,
	}
}

func ParseMilitaryBranch(s string) (MilitaryBranch, error) {
	switch v := MilitaryBranch(s); v {
	case BranchArmy, BranchNavy, BranchAirForce, BranchMarineCorps, BranchCoastGuard, BranchSpaceForce,
		BranchArmyNationalGuard, BranchArmyReserve, BranchAirNationalGuard, BranchAirForceReserve,
		BranchNavyReserve, BranchMarineCorpsReserve, BranchCoastGuardReserve:
		return v, nil
	}
	return "", invalid("military branch", s)
}

func (b MilitaryBranch) Valid() bool {
	_, err := ParseMilitaryBranch(string(b))
	return err == nil
}

func (b *MilitaryBranch) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, ParseMilitaryBranch, b)
}

// DocumentType tags an uploaded supporting document.
type DocumentType string

const (
	DocumentDD214      DocumentType = "DD214"
	DocumentMilitaryID DocumentType = "MILITARY_ID"
	DocumentVACard     DocumentType = "VA_CARD"
	DocumentOther      DocumentType = "OTHER"
)

func ParseDocumentType(s string) (DocumentType, error) {
	switch v := DocumentType(s); v {
	case DocumentDD214, DocumentMilitaryID, DocumentVACard, DocumentOther:
		return v, nil
	}
	return "", invalid("document type", s)
}

func (d *DocumentType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, ParseDocumentType, d)
}
