package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvestorType string

const (
	InvestorTypeIndividual   InvestorType = "Individual"
	InvestorTypeInstitution  InvestorType = "Institution"
	InvestorTypeFamilyOffice InvestorType = "FamilyOffice"
)

// ParseInvestorType accepts the wire spelling, which writes the family
// office variant with a space.
func ParseInvestorType(raw string) (InvestorType, bool) {
	switch strings.ReplaceAll(strings.TrimSpace(raw), " ", "") {
	case "Individual":
		return InvestorTypeIndividual, true
	case "Institution":
		return InvestorTypeInstitution, true
	case "FamilyOffice":
		return InvestorTypeFamilyOffice, true
	}
	return "", false
}

// APIValue renders the wire spelling of the type.
func (t InvestorType) APIValue() string {
	if t == InvestorTypeFamilyOffice {
		return "Family Office"
	}
	return string(t)
}

type Investor struct {
	ID           string       `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string       `gorm:"size:256;not null" json:"name"`
	InvestorType InvestorType `gorm:"size:32;not null" json:"investor_type"`
	Email        string       `gorm:"size:320;not null;uniqueIndex" json:"email"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (i *Investor) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
