package directory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	"github.com/khetisathi/khetisathi-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a directory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListByRole(ctx context.Context, role enums.PartyRole) ([]models.LaborProfile, error) {
	var profiles []models.LaborProfile
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("created_at ASC").
		Order("id ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.LaborProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var profiles []models.LaborProfile
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.LaborProfile, error) {
	var profile models.LaborProfile
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) ListPage(ctx context.Context, role *enums.PartyRole, params pagination.Params) (*ProfileList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.LaborProfile{})
	if role != nil {
		query = query.Where("role = ?", *role)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var profiles []models.LaborProfile
	err = query.
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit + 1).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}

	list := &ProfileList{}
	if len(profiles) > limit {
		profiles = profiles[:limit]
		last := profiles[len(profiles)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	list.Profiles = profiles
	return list, nil
}

type snapshotProvider struct {
	repo Repository
}

// NewSnapshotProvider adapts the repository into a matching snapshot source.
func NewSnapshotProvider(repo Repository) Provider {
	return &snapshotProvider{repo: repo}
}

func (p *snapshotProvider) Snapshot(ctx context.Context, role enums.PartyRole) (Snapshot, error) {
	profiles, err := p.repo.ListByRole(ctx, role)
	if err != nil {
		return Snapshot{}, err
	}
	candidates := make([]Candidate, 0, len(profiles))
	for _, profile := range profiles {
		candidates = append(candidates, CandidateFromModel(profile))
	}
	return NewSnapshot(candidates), nil
}
