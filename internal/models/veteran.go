package models

import (
	"strings"
	"time"
)

// VeteranSourceManual marks a veteran record entered by the caller.
const VeteranSourceManual = "MANUAL"

// VeteranRecord is the stored form of a veteran.
type VeteranRecord struct {
	ID             string         `bson:"_id"`
	ProfileID      string         `bson:"profile_id"`
	FirstName      string         `bson:"first_name"`
	LastName       string         `bson:"last_name"`
	BirthDate      *time.Time     `bson:"birth_date,omitempty"`
	Branch         MilitaryBranch `bson:"branch"`
	MilitaryStatus MilitaryStatus `bson:"military_status"`
	DischargeDate  *time.Time     `bson:"discharge_date,omitempty"`
	IsVerified     bool           `bson:"is_verified"`
	Source         string         `bson:"source,omitempty"`
	CreatedAt      time.Time      `bson:"created_at"`
}

// FullName returns "first last" without surrounding spaces.
func (v *VeteranRecord) FullName() string {
	return strings.TrimSpace(v.FirstName + " " + v.LastName)
}

// ToAPI converts the stored record to its wire form.
func (v *VeteranRecord) ToAPI() *Veteran {
	return &Veteran{
		ID:             v.ID,
		FirstName:      v.FirstName,
		LastName:       v.LastName,
		BirthDate:      DatePtr(v.BirthDate),
		Branch:         v.Branch,
		MilitaryStatus: v.MilitaryStatus,
		DischargeDate:  DatePtr(v.DischargeDate),
		IsVerified:     v.IsVerified,
		Source:         v.Source,
		CreatedAt:      v.CreatedAt,
	}
}

// Veteran is the wire snapshot of a veteran.
type Veteran struct {
	ID             string         `json:"id"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	BirthDate      *Date          `json:"birthDate,omitempty"`
	Branch         MilitaryBranch `json:"branch"`
	MilitaryStatus MilitaryStatus `json:"militaryStatus"`
	DischargeDate  *Date          `json:"dischargeDate,omitempty"`
	IsVerified     bool           `json:"isVerified"`
	Source         string         `json:"source,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// VeteranCreate is the veteran data submitted with a verification.
type VeteranCreate struct {
	FirstName      string         `json:"firstName" binding:"required,max=100"`
	LastName       string         `json:"lastName" binding:"required,max=100"`
	BirthDate      *Date          `json:"birthDate,omitempty"`
	Branch         MilitaryBranch `json:"branch" binding:"required"`
	MilitaryStatus MilitaryStatus `json:"militaryStatus,omitempty"`
	DischargeDate  *Date          `json:"dischargeDate,omitempty"`
}

// Status returns the declared military status, defaulting to VETERAN.
func (v VeteranCreate) Status() MilitaryStatus {
	if v.MilitaryStatus == "" {
		return MilitaryVeteran
	}
	return v.MilitaryStatus
}
