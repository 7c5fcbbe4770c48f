package directory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	"github.com/khetisathi/khetisathi-backend/pkg/pagination"
)

// Repository defines read operations over the labor profile directory.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByRole(ctx context.Context, role enums.PartyRole) ([]models.LaborProfile, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.LaborProfile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.LaborProfile, error)
	ListPage(ctx context.Context, role *enums.PartyRole, params pagination.Params) (*ProfileList, error)
}

// Provider exposes point-in-time candidate snapshots to the matching layer.
type Provider interface {
	Snapshot(ctx context.Context, role enums.PartyRole) (Snapshot, error)
}

// ProfileList is a cursor page of labor profiles.
type ProfileList struct {
	Profiles   []models.LaborProfile
	NextCursor *string
}
