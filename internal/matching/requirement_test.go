package matching

import (
	"testing"

	"github.com/google/uuid"

	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
)

func record(partyID uuid.UUID, status enums.AcceptanceStatus) models.AcceptanceRecord {
	return models.AcceptanceRecord{
		ID:      uuid.New(),
		PartyID: partyID,
		Status:  status,
	}
}

func TestOutstandingGenderedCountsPendingAndAccepted(t *testing.T) {
	maleA := uuid.New()
	maleB := uuid.New()
	femaleA := uuid.New()
	rejected := uuid.New()

	genders := map[uuid.UUID]enums.Gender{
		maleA:    enums.GenderMale,
		maleB:    enums.GenderMale,
		femaleA:  enums.GenderFemale,
		rejected: enums.GenderMale,
	}
	records := []models.AcceptanceRecord{
		record(maleA, enums.AcceptanceAccepted),
		record(maleB, enums.AcceptancePending),
		record(femaleA, enums.AcceptanceCompleted),
		record(rejected, enums.AcceptanceRejected),
	}

	got := Outstanding(NewGendered(3, 2), records, genders)
	if got.Male != 1 {
		t.Fatalf("expected 1 male outstanding, got %d", got.Male)
	}
	if got.Female != 1 {
		t.Fatalf("expected 1 female outstanding, got %d", got.Female)
	}
	if got.IsZero() {
		t.Fatal("requirement should not be zero")
	}
}

func TestOutstandingFloorsAtZero(t *testing.T) {
	partyA := uuid.New()
	partyB := uuid.New()
	genders := map[uuid.UUID]enums.Gender{
		partyA: enums.GenderMale,
		partyB: enums.GenderMale,
	}
	records := []models.AcceptanceRecord{
		record(partyA, enums.AcceptanceAccepted),
		record(partyB, enums.AcceptanceAccepted),
	}

	got := Outstanding(NewGendered(1, 0), records, genders)
	if got.Male != 0 || got.Female != 0 {
		t.Fatalf("requirement went negative: %+v", got)
	}
}

func TestOutstandingCountedIgnoresGenderLookup(t *testing.T) {
	records := []models.AcceptanceRecord{
		record(uuid.New(), enums.AcceptancePending),
		record(uuid.New(), enums.AcceptanceRejected),
	}

	got := Outstanding(NewCounted(3, "ploughing"), records, nil)
	if got.Total != 2 {
		t.Fatalf("expected 2 outstanding, got %d", got.Total)
	}
	if got.Skill != "ploughing" {
		t.Fatalf("skill tag lost: %q", got.Skill)
	}
}

func TestRequirementFromOrder(t *testing.T) {
	gendered := RequirementFromOrder(&models.Order{
		Service:        enums.ServiceTypeFarmWorkers,
		RequiredMale:   2,
		RequiredFemale: 1,
	})
	if !gendered.IsGendered() || gendered.Male != 2 || gendered.Female != 1 {
		t.Fatalf("unexpected gendered requirement %+v", gendered)
	}

	counted := RequirementFromOrder(&models.Order{
		Service:       enums.ServiceTypePloughing,
		RequiredCount: 4,
	})
	if counted.IsGendered() || counted.Total != 4 || counted.Skill != "ploughing" {
		t.Fatalf("unexpected counted requirement %+v", counted)
	}
}
