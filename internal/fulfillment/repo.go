package fulfillment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	pkgerrors "github.com/khetisathi/khetisathi-backend/pkg/errors"
	"github.com/khetisathi/khetisathi-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a fulfillment repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("AcceptanceRecords", func(db *gorm.DB) *gorm.DB {
			return db.Order("offered_at ASC").Order("id ASC")
		}).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

// UpdateOrderGuarded applies the updates only when the stored lock version
// still matches. A false return means another writer won the race.
func (r *repository) UpdateOrderGuarded(ctx context.Context, orderID uuid.UUID, lockVersion int, updates map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND lock_version = ?", orderID, lockVersion).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) CreateAcceptanceRecords(ctx context.Context, records []models.AcceptanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&records).Error
}

func (r *repository) FindAcceptanceRecord(ctx context.Context, orderID, partyID uuid.UUID) (*models.AcceptanceRecord, error) {
	var record models.AcceptanceRecord
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND party_id = ?", orderID, partyID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "acceptance record not found")
		}
		return nil, err
	}
	return &record, nil
}

// UpdateAcceptanceStatusGuarded moves a record between statuses guarded on
// the expected current status.
func (r *repository) UpdateAcceptanceStatusGuarded(ctx context.Context, recordID uuid.UUID, from, to enums.AcceptanceStatus, respondedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AcceptanceRecord{}).
		Where("id = ? AND status = ?", recordID, from).
		Updates(map[string]any{
			"status":       to,
			"responded_at": respondedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) ListOrdersPastDeadline(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	query := r.db.WithContext(ctx).
		Preload("AcceptanceRecords").
		Where("status = ?", enums.OrderStatusPending).
		Where("response_deadline IS NOT NULL AND response_deadline < ?", cutoff).
		Order("response_deadline ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Service != nil {
		query = query.Where("service_type = ?", *filters.Service)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var orders []models.Order
	err = query.
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit + 1).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	list := &OrderList{}
	if len(orders) > limit {
		orders = orders[:limit]
		last := orders[len(orders)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	list.Orders = orders
	return list, nil
}
