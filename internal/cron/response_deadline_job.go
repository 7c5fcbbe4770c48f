package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	"github.com/khetisathi/khetisathi-backend/pkg/logger"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox/payloads"
)

const defaultDeadlineSweepBatch = 100

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type expiredOrderReader interface {
	ListOrdersPastDeadline(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

// ResponseDeadlineJobParams configure the response deadline sweep.
type ResponseDeadlineJobParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Orders    expiredOrderReader
	Outbox    outboxEmitter
	BatchSize int
}

// NewResponseDeadlineJob builds the cron job that flags orders whose response
// window expired without every party answering. The job only emits the
// deadline event; the order events worker performs the actual reassignment.
func NewResponseDeadlineJob(params ResponseDeadlineJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultDeadlineSweepBatch
	}
	return &responseDeadlineJob{
		logg:   params.Logger,
		db:     params.DB,
		orders: params.Orders,
		outbox: params.Outbox,
		batch:  batch,
		now:    time.Now,
	}, nil
}

type responseDeadlineJob struct {
	logg   *logger.Logger
	db     txRunner
	orders expiredOrderReader
	outbox outboxEmitter
	batch  int
	now    func() time.Time
}

func (j *responseDeadlineJob) Name() string { return "response-deadline-sweep" }

func (j *responseDeadlineJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	orders, err := j.orders.ListOrdersPastDeadline(ctx, now, j.batch)
	if err != nil {
		return fmt.Errorf("query orders past deadline: %w", err)
	}

	count := 0
	var errs []error
	for _, order := range orders {
		if err := j.emitDeadlineElapsed(ctx, order, now); err != nil {
			errs = append(errs, fmt.Errorf("order %s: %w", order.ID, err))
			continue
		}
		count++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count, "failed": len(errs)})
	j.logg.Info(logCtx, "response deadline sweep complete")
	return multierr.Combine(errs...)
}

func (j *responseDeadlineJob) emitDeadlineElapsed(ctx context.Context, order models.Order, now time.Time) error {
	if order.ResponseDeadline == nil {
		return nil
	}
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		event := outbox.DomainEvent{
			EventType:     enums.EventDeadlineElapsed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.DeadlineElapsedEvent{
				OrderID:        order.ID,
				Deadline:       *order.ResponseDeadline,
				PendingParties: pendingParties(order),
			},
		}
		return j.outbox.EmitIfNotExists(ctx, tx, event)
	})
}

func pendingParties(order models.Order) []uuid.UUID {
	var pending []uuid.UUID
	for _, record := range order.AcceptanceRecords {
		if record.Status == enums.AcceptancePending {
			pending = append(pending, record.PartyID)
		}
	}
	return pending
}
