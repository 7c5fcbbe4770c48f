package matching

import (
	"github.com/google/uuid"

	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
)

// Requirement is the tagged variant describing how much labor an order still
// needs. Gendered requirements track male/female quotas separately; counted
// requirements track a single total against one skill tag.
type Requirement struct {
	gendered bool
	Male     int
	Female   int
	Total    int
	Skill    string
}

// NewGendered builds a male/female quota requirement.
func NewGendered(male, female int) Requirement {
	if male < 0 {
		male = 0
	}
	if female < 0 {
		female = 0
	}
	return Requirement{gendered: true, Male: male, Female: female}
}

// NewCounted builds a single-skill total requirement.
func NewCounted(total int, skill string) Requirement {
	if total < 0 {
		total = 0
	}
	return Requirement{Total: total, Skill: skill}
}

// RequirementFromOrder derives the original requirement recorded at creation.
func RequirementFromOrder(order *models.Order) Requirement {
	if order.Service.IsGendered() {
		return NewGendered(order.RequiredMale, order.RequiredFemale)
	}
	return NewCounted(order.RequiredCount, order.Service.SkillTag())
}

// IsGendered reports which variant this requirement is.
func (r Requirement) IsGendered() bool {
	return r.gendered
}

// Count returns the total outstanding headcount regardless of variant.
func (r Requirement) Count() int {
	if r.gendered {
		return r.Male + r.Female
	}
	return r.Total
}

// IsZero reports whether nothing is outstanding.
func (r Requirement) IsZero() bool {
	return r.Count() == 0
}

// Outstanding recomputes the still-unmet requirement: the original quota minus
// every accepted or pending record, floored at zero. Rejected records free
// their slot again. Gendered quotas need the candidate gender lookup; records
// for parties missing from the lookup are ignored rather than guessed.
func Outstanding(original Requirement, records []models.AcceptanceRecord, genders map[uuid.UUID]enums.Gender) Requirement {
	if original.gendered {
		male := original.Male
		female := original.Female
		for _, record := range records {
			if !countsAgainstRequirement(record.Status) {
				continue
			}
			switch genders[record.PartyID] {
			case enums.GenderMale:
				male--
			case enums.GenderFemale:
				female--
			}
		}
		return NewGendered(male, female)
	}

	total := original.Total
	for _, record := range records {
		if !countsAgainstRequirement(record.Status) {
			continue
		}
		total--
	}
	return NewCounted(total, original.Skill)
}

func countsAgainstRequirement(status enums.AcceptanceStatus) bool {
	switch status {
	case enums.AcceptancePending, enums.AcceptanceAccepted, enums.AcceptanceCompleted:
		return true
	default:
		return false
	}
}
