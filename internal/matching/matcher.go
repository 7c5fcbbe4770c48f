package matching

import (
	"time"

	"github.com/google/uuid"

	"github.com/khetisathi/khetisathi-backend/internal/directory"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
)

// Criteria captures one matching pass over the candidate pool. A pass targets
// either a worker skill tag or a driver vehicle class, never both.
type Criteria struct {
	Role         enums.PartyRole
	SkillTag     string
	VehicleClass *enums.VehicleClass
	Gender       *enums.Gender
	Pincode      string
	StartDate    time.Time
	Needed       int
	Exclude      map[uuid.UUID]struct{}
}

// Result reports the selected candidates and whether the pool fell short.
// Selection preserves the snapshot's insertion order and never exceeds Needed.
type Result struct {
	IDs       []uuid.UUID
	Needed    int
	Available int
}

// Short reports whether fewer qualifying candidates were found than needed.
func (r Result) Short() bool {
	return r.Available < r.Needed
}

// Missing returns how many slots the pool could not fill.
func (r Result) Missing() int {
	if r.Available >= r.Needed {
		return 0
	}
	return r.Needed - r.Available
}

// Match filters the snapshot against the criteria. It never returns duplicate
// ids, never returns excluded ids, and caps the selection at the needed count.
func Match(snap directory.Snapshot, c Criteria) Result {
	result := Result{Needed: c.Needed}
	if c.Needed <= 0 {
		return result
	}

	for _, candidate := range snap.Candidates() {
		if !qualifies(candidate, c) {
			continue
		}
		result.Available++
		if len(result.IDs) < c.Needed {
			result.IDs = append(result.IDs, candidate.ID)
		}
	}
	return result
}

func qualifies(candidate directory.Candidate, c Criteria) bool {
	if candidate.Role != c.Role {
		return false
	}
	if candidate.Status != enums.ApprovalApproved {
		return false
	}
	if !candidate.Readiness.IsOpenFor(c.Role) {
		return false
	}
	if c.VehicleClass != nil {
		if !candidate.HasVehicleSkill(*c.VehicleClass) {
			return false
		}
	} else if !candidate.HasSkill(c.SkillTag) {
		return false
	}
	if c.Gender != nil {
		if candidate.Gender == nil || *candidate.Gender != *c.Gender {
			return false
		}
	}
	// An unknown farmer pincode disables the geographic filter.
	if c.Pincode != "" && candidate.Pincode != c.Pincode {
		return false
	}
	if _, excluded := c.Exclude[candidate.ID]; excluded {
		return false
	}
	return candidate.AvailableOn(c.StartDate)
}
