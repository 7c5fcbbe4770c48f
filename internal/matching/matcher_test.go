package matching

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/khetisathi/khetisathi-backend/internal/directory"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
)

var startDate = time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

func worker(opts ...func(*directory.Candidate)) directory.Candidate {
	male := enums.GenderMale
	c := directory.Candidate{
		ID:        uuid.New(),
		Role:      enums.PartyRoleWorker,
		Status:    enums.ApprovalApproved,
		Readiness: enums.ReadinessReady,
		Gender:    &male,
		Pincode:   "452001",
		Skills:    []string{"farm-worker"},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func driver(opts ...func(*directory.Candidate)) directory.Candidate {
	c := directory.Candidate{
		ID:            uuid.New(),
		Role:          enums.PartyRoleDriver,
		Status:        enums.ApprovalApproved,
		Readiness:     enums.ReadinessAvailable,
		Pincode:       "452001",
		VehicleSkills: []string{"bike"},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func workerCriteria(needed int) Criteria {
	return Criteria{
		Role:      enums.PartyRoleWorker,
		SkillTag:  "farm-worker",
		Pincode:   "452001",
		StartDate: startDate,
		Needed:    needed,
	}
}

func TestMatchPreservesInsertionOrder(t *testing.T) {
	first := worker()
	second := worker()
	third := worker()
	snap := directory.NewSnapshot([]directory.Candidate{first, second, third})

	result := Match(snap, workerCriteria(2))
	if result.Short() {
		t.Fatalf("unexpected shortage: %+v", result)
	}
	if len(result.IDs) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(result.IDs))
	}
	if result.IDs[0] != first.ID || result.IDs[1] != second.ID {
		t.Fatal("selection did not follow snapshot insertion order")
	}
	if result.Available != 3 {
		t.Fatalf("expected 3 available, got %d", result.Available)
	}
}

func TestMatchFiltersDisqualifiedCandidates(t *testing.T) {
	female := enums.GenderFemale
	qualifying := worker()
	pool := []directory.Candidate{
		worker(func(c *directory.Candidate) { c.Status = enums.ApprovalPending }),
		worker(func(c *directory.Candidate) { c.Readiness = enums.ReadinessBusy }),
		worker(func(c *directory.Candidate) { c.Skills = []string{"ploughing"} }),
		worker(func(c *directory.Candidate) { c.Gender = &female }),
		worker(func(c *directory.Candidate) { c.Pincode = "110001" }),
		driver(),
		qualifying,
	}
	snap := directory.NewSnapshot(pool)

	male := enums.GenderMale
	criteria := workerCriteria(3)
	criteria.Gender = &male

	result := Match(snap, criteria)
	if result.Available != 1 {
		t.Fatalf("expected exactly 1 qualifying candidate, got %d", result.Available)
	}
	if len(result.IDs) != 1 || result.IDs[0] != qualifying.ID {
		t.Fatalf("unexpected selection %v", result.IDs)
	}
	if !result.Short() {
		t.Fatal("expected shortage signal")
	}
	if result.Missing() != 2 {
		t.Fatalf("expected 2 missing, got %d", result.Missing())
	}
}

func TestMatchSkipsExcludedIDs(t *testing.T) {
	excluded := worker()
	kept := worker()
	snap := directory.NewSnapshot([]directory.Candidate{excluded, kept})

	criteria := workerCriteria(2)
	criteria.Exclude = map[uuid.UUID]struct{}{excluded.ID: {}}

	result := Match(snap, criteria)
	if result.Available != 1 {
		t.Fatalf("expected 1 available, got %d", result.Available)
	}
	if len(result.IDs) != 1 || result.IDs[0] != kept.ID {
		t.Fatalf("excluded id leaked into selection: %v", result.IDs)
	}
}

func TestMatchSkipsUnknownPincodeFilter(t *testing.T) {
	far := worker(func(c *directory.Candidate) { c.Pincode = "110001" })
	snap := directory.NewSnapshot([]directory.Candidate{far})

	criteria := workerCriteria(1)
	criteria.Pincode = ""

	result := Match(snap, criteria)
	if result.Short() {
		t.Fatal("pincode filter should be disabled when farmer pincode is unknown")
	}
}

func TestMatchAvailabilityRules(t *testing.T) {
	offOnDate := worker(func(c *directory.Candidate) {
		c.WorkingDays = []time.Time{startDate}
		c.OffDays = []time.Time{startDate}
	})
	workingElsewhere := worker(func(c *directory.Candidate) {
		c.WorkingDays = []time.Time{startDate.AddDate(0, 0, 1)}
	})
	noCalendar := worker()
	workingOnDate := worker(func(c *directory.Candidate) {
		c.WorkingDays = []time.Time{startDate}
	})
	snap := directory.NewSnapshot([]directory.Candidate{offOnDate, workingElsewhere, noCalendar, workingOnDate})

	result := Match(snap, workerCriteria(4))
	if result.Available != 2 {
		t.Fatalf("expected 2 available, got %d", result.Available)
	}
	if result.IDs[0] != noCalendar.ID || result.IDs[1] != workingOnDate.ID {
		t.Fatalf("unexpected selection %v", result.IDs)
	}
}

func TestMatchDriverVehicleClass(t *testing.T) {
	bike := driver()
	uvAuto := driver(func(c *directory.Candidate) { c.VehicleSkills = []string{"uv-auto"} })
	snap := directory.NewSnapshot([]directory.Candidate{bike, uvAuto})

	class := enums.VehicleUVAuto
	result := Match(snap, Criteria{
		Role:         enums.PartyRoleDriver,
		VehicleClass: &class,
		Pincode:      "452001",
		StartDate:    startDate,
		Needed:       1,
	})
	if result.Short() {
		t.Fatalf("unexpected shortage: %+v", result)
	}
	if result.IDs[0] != uvAuto.ID {
		t.Fatal("expected the uv-auto driver to be selected")
	}
}

func TestMatchZeroNeededReturnsNothing(t *testing.T) {
	snap := directory.NewSnapshot([]directory.Candidate{worker()})
	result := Match(snap, workerCriteria(0))
	if len(result.IDs) != 0 || result.Short() {
		t.Fatalf("expected empty non-short result, got %+v", result)
	}
}
