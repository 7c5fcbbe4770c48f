package fulfillment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	"github.com/khetisathi/khetisathi-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and acceptance records.
// Order mutations are guarded by the row's lock version so concurrent
// assignment attempts on the same order cannot interleave.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateOrderGuarded(ctx context.Context, orderID uuid.UUID, lockVersion int, updates map[string]any) (bool, error)
	CreateAcceptanceRecords(ctx context.Context, records []models.AcceptanceRecord) error
	FindAcceptanceRecord(ctx context.Context, orderID, partyID uuid.UUID) (*models.AcceptanceRecord, error)
	UpdateAcceptanceStatusGuarded(ctx context.Context, recordID uuid.UUID, from, to enums.AcceptanceStatus, respondedAt time.Time) (bool, error)
	ListOrdersPastDeadline(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
	ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)
}

// OrderFilters narrow administrative order listings.
type OrderFilters struct {
	Status  *enums.OrderStatus
	Service *enums.ServiceType
}

// OrderList is a cursor page of orders.
type OrderList struct {
	Orders     []models.Order
	NextCursor *string
}
