package directory

import (
	"time"

	"github.com/google/uuid"

	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
)

// Candidate is a read-only view of a labor profile used for matching.
type Candidate struct {
	ID            uuid.UUID
	Role          enums.PartyRole
	Status        enums.ApprovalStatus
	Readiness     enums.Readiness
	Gender        *enums.Gender
	Pincode       string
	Skills        []string
	VehicleSkills []string
	WorkingDays   []time.Time
	OffDays       []time.Time
}

// Snapshot is an ordered, immutable view of the candidate pool. Order is the
// directory's insertion order and is the tie-breaker during matching.
type Snapshot struct {
	candidates []Candidate
	byID       map[uuid.UUID]int
}

// NewSnapshot builds a snapshot preserving the order of the provided candidates.
func NewSnapshot(candidates []Candidate) Snapshot {
	byID := make(map[uuid.UUID]int, len(candidates))
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, seen := byID[c.ID]; seen {
			continue
		}
		byID[c.ID] = len(kept)
		kept = append(kept, c)
	}
	return Snapshot{candidates: kept, byID: byID}
}

// Candidates returns the pool in insertion order.
func (s Snapshot) Candidates() []Candidate {
	return s.candidates
}

// Len reports the pool size.
func (s Snapshot) Len() int {
	return len(s.candidates)
}

// Find returns the candidate with the given id.
func (s Snapshot) Find(id uuid.UUID) (Candidate, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return Candidate{}, false
	}
	return s.candidates[idx], true
}

// Genders returns a lookup of candidate gender by id for requirement recomputation.
func (s Snapshot) Genders() map[uuid.UUID]enums.Gender {
	out := make(map[uuid.UUID]enums.Gender, len(s.candidates))
	for _, c := range s.candidates {
		if c.Gender != nil {
			out[c.ID] = *c.Gender
		}
	}
	return out
}

// HasSkill reports whether the candidate carries the given skill tag.
func (c Candidate) HasSkill(tag string) bool {
	for _, s := range c.Skills {
		if s == tag {
			return true
		}
	}
	return false
}

// HasVehicleSkill reports whether the candidate can operate the vehicle class.
func (c Candidate) HasVehicleSkill(class enums.VehicleClass) bool {
	for _, s := range c.VehicleSkills {
		if s == string(class) {
			return true
		}
	}
	return false
}

// AvailableOn applies the calendar rule: off days win over working days, and a
// candidate with no calendar at all is always available.
func (c Candidate) AvailableOn(date time.Time) bool {
	for _, off := range c.OffDays {
		if sameDate(off, date) {
			return false
		}
	}
	if len(c.WorkingDays) == 0 {
		return true
	}
	for _, day := range c.WorkingDays {
		if sameDate(day, date) {
			return true
		}
	}
	return false
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CandidateFromModel converts a stored labor profile into its matching view.
func CandidateFromModel(profile models.LaborProfile) Candidate {
	return Candidate{
		ID:            profile.ID,
		Role:          profile.Role,
		Status:        profile.Status,
		Readiness:     profile.Readiness,
		Gender:        profile.Gender,
		Pincode:       profile.Pincode,
		Skills:        []string(profile.Skills),
		VehicleSkills: []string(profile.VehicleSkills),
		WorkingDays:   []time.Time(profile.WorkingDays),
		OffDays:       []time.Time(profile.OffDays),
	}
}
