package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khetisathi/khetisathi-backend/internal/directory"
	"github.com/khetisathi/khetisathi-backend/internal/matching"
	"github.com/khetisathi/khetisathi-backend/internal/tiering"
	"github.com/khetisathi/khetisathi-backend/pkg/config"
	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	dbtypes "github.com/khetisathi/khetisathi-backend/pkg/db/types"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	pkgerrors "github.com/khetisathi/khetisathi-backend/pkg/errors"
	"github.com/khetisathi/khetisathi-backend/pkg/logger"
	"github.com/khetisathi/khetisathi-backend/pkg/metrics"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox/payloads"
	"github.com/khetisathi/khetisathi-backend/pkg/pagination"
)

// Service is the assignment engine. Every mutation runs in a single
// transaction: the order row, the acceptance records and the outbox events
// commit or roll back together.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)
	AutoAssign(ctx context.Context, input AutoAssignInput) (*AssignmentOutcome, error)
	ManualAssign(ctx context.Context, input ManualAssignInput) (*AssignmentOutcome, error)
	AssignDrivers(ctx context.Context, input AssignDriversInput) (*AssignmentOutcome, error)
	RecordResponse(ctx context.Context, input RecordResponseInput) error
	ReassignAfterDeadline(ctx context.Context, input AutoAssignInput) (*AssignmentOutcome, error)
	CancelOrder(ctx context.Context, input CancelOrderInput) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo     Repository
	pool     directory.Provider
	profiles directory.Repository
	tx       txRunner
	events   eventEmitter
	cfg      config.FulfillmentConfig
	metrics  *metrics.FulfillmentMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the fulfillment service.
func NewService(
	repo Repository,
	pool directory.Provider,
	profiles directory.Repository,
	tx txRunner,
	events eventEmitter,
	cfg config.FulfillmentConfig,
	m *metrics.FulfillmentMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil || pool == nil || profiles == nil || tx == nil || events == nil || logg == nil {
		return nil, fmt.Errorf("fulfillment service dependencies missing")
	}
	return &service{
		repo:     repo,
		pool:     pool,
		profiles: profiles,
		tx:       tx,
		events:   events,
		cfg:      cfg,
		metrics:  m,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.FarmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer id required")
	}
	if !input.Service.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid service type")
	}
	if input.StartDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start date required")
	}
	if input.Service.IsGendered() {
		if input.RequiredMale < 0 || input.RequiredFemale < 0 || input.RequiredMale+input.RequiredFemale == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "gendered services need a positive male or female count")
		}
	} else if input.RequiredCount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "required count must be positive")
	}

	order := &models.Order{
		ID:               uuid.New(),
		FarmerID:         input.FarmerID,
		Service:          input.Service,
		RequiredMale:     input.RequiredMale,
		RequiredFemale:   input.RequiredFemale,
		RequiredCount:    input.RequiredCount,
		FarmerPincode:    input.FarmerPincode,
		StartDate:        input.StartDate,
		Status:           enums.OrderStatusPending,
		AssignedParties:  dbtypes.UUIDArray{},
		AttemptedParties: dbtypes.UUIDArray{},
		AttemptedDrivers: dbtypes.UUIDArray{},
	}
	if !input.Service.IsGendered() {
		order.RequiredMale = 0
		order.RequiredFemale = 0
	} else {
		order.RequiredCount = 0
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.CreateOrder(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		order = created
		return s.emitOrderChanged(ctx, tx, order, nil)
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(s.logg.WithField(ctx, "service", order.Service.String()), "order created")
	return order, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.repo.FindOrder(ctx, orderID)
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	return s.repo.ListOrders(ctx, params, filters)
}

func (s *service) AutoAssign(ctx context.Context, input AutoAssignInput) (*AssignmentOutcome, error) {
	snap, err := s.pool.Snapshot(ctx, enums.PartyRoleWorker)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load worker snapshot")
	}
	window := input.Window
	if window <= 0 {
		window = s.cfg.ResponseWindow
	}

	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())
	var outcome *AssignmentOutcome
	var shortage error
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order no longer accepts assignment")
		}

		outstanding := matching.Outstanding(
			matching.RequirementFromOrder(order),
			recordsForRole(order.AcceptanceRecords, enums.PartyRoleWorker),
			snap.Genders(),
		)
		if outstanding.IsZero() {
			outcome = &AssignmentOutcome{OrderID: order.ID, NoChange: true}
			return nil
		}

		selected, missing := selectWorkers(snap, order, outstanding)
		if missing > 0 {
			message := fmt.Sprintf("not enough qualifying candidates for %s: short by %d", order.Service, missing)
			if err := s.recordShortage(ctx, tx, repo, order, missing, message, input.Actor); err != nil {
				return err
			}
			// The error status must commit, so the shortage is surfaced
			// after the transaction instead of rolling it back.
			shortage = pkgerrors.New(pkgerrors.CodeShortage, message)
			return nil
		}

		outcome, err = s.commitWorkerOffers(ctx, tx, repo, order, selected, window, "auto", input.Actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	if shortage != nil {
		return nil, shortage
	}
	return outcome, nil
}

func (s *service) ManualAssign(ctx context.Context, input ManualAssignInput) (*AssignmentOutcome, error) {
	if len(input.PartyIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one party id required")
	}
	partyIDs := dedupeIDs(input.PartyIDs)

	profiles, err := s.profiles.FindByIDs(ctx, partyIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load party profiles")
	}
	if len(profiles) != len(partyIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "one or more parties do not exist")
	}
	for _, profile := range profiles {
		if profile.Role != enums.PartyRoleWorker {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "manual assignment accepts workers only")
		}
		if profile.Status != enums.ApprovalApproved {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("party %s is not approved", profile.ID))
		}
	}

	snap, err := s.pool.Snapshot(ctx, enums.PartyRoleWorker)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load worker snapshot")
	}

	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())
	ctx = s.logg.WithField(ctx, "pool", snap.Len())
	var outcome *AssignmentOutcome
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order no longer accepts assignment")
		}
		for _, id := range partyIDs {
			if order.AttemptedParties.Contains(id) {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("party %s was already offered this order", id))
			}
			// Manual assignment may override the matcher's calendar and
			// readiness rules, but the override is logged.
			if candidate, ok := snap.Find(id); !ok || !candidate.AvailableOn(order.StartDate) {
				s.logg.Warn(s.logg.WithPartyID(ctx, id.String()), "manual assignment overrides matcher availability")
			}
		}

		outcome, err = s.commitWorkerOffers(ctx, tx, repo, order, partyIDs, s.cfg.ResponseWindow, "manual", input.Actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *service) AssignDrivers(ctx context.Context, input AssignDriversInput) (*AssignmentOutcome, error) {
	snap, err := s.pool.Snapshot(ctx, enums.PartyRoleDriver)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver snapshot")
	}

	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())
	var outcome *AssignmentOutcome
	var shortage error
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order no longer accepts assignment")
		}

		accepted := countAccepted(order.AcceptanceRecords, enums.PartyRoleWorker)
		resolution, err := tiering.Resolve(accepted)
		if err != nil {
			return err
		}

		// Offers already open against the tier stay counted, so a repeat
		// call never stacks a second full tier of drivers.
		openDrivers := countOpenDrivers(order.AcceptanceRecords)
		tier, result := matchDrivers(snap, order, resolution, openDrivers)
		if result.Needed == 0 {
			outcome = &AssignmentOutcome{OrderID: order.ID, NoChange: true}
			return nil
		}
		if result.Short() {
			message := fmt.Sprintf("needed %d %s driver(s), found %d", result.Needed, tier.Vehicle, result.Available)
			if err := s.recordShortage(ctx, tx, repo, order, result.Missing(), message, input.Actor); err != nil {
				return err
			}
			shortage = pkgerrors.New(pkgerrors.CodeShortage, message)
			return nil
		}

		now := s.now()
		deadline := responseDeadline(order, now, s.cfg.ResponseWindow)
		assigned := order.AssignedParties
		attemptedParties := order.AttemptedParties
		attemptedDrivers := order.AttemptedDrivers
		for _, id := range result.IDs {
			assigned = assigned.Append(id)
			attemptedParties = attemptedParties.Append(id)
			attemptedDrivers = attemptedDrivers.Append(id)
		}

		updates := map[string]any{
			"required_vehicle_class": tier.Vehicle,
			"required_driver_count":  tier.Count,
			"assigned_parties":       assigned,
			"attempted_parties":      attemptedParties,
			"attempted_drivers":      attemptedDrivers,
			"response_deadline":      deadline,
			"status":                 enums.OrderStatusPending,
			"status_message":         nil,
			"lock_version":           order.LockVersion + 1,
		}
		ok, err := repo.UpdateOrderGuarded(ctx, order.ID, order.LockVersion, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order assignment")
		}
		if !ok {
			return staleOrderError(order.ID)
		}
		order.Status = enums.OrderStatusPending
		order.LockVersion++
		order.ResponseDeadline = &deadline

		if err := s.createOffers(ctx, tx, repo, order, result.IDs, enums.PartyRoleDriver, now, deadline, input.Actor); err != nil {
			return err
		}
		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDriversRequested,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         input.Actor,
			Data: payloads.DriversRequestedEvent{
				OrderID:      order.ID,
				VehicleClass: tier.Vehicle,
				DriverCount:  tier.Count,
			},
		}); err != nil {
			return err
		}
		if err := s.emitOrderChanged(ctx, tx, order, input.Actor); err != nil {
			return err
		}

		s.metrics.IncAssignment(order.Service.String(), "drivers")
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"vehicle_class": tier.Vehicle.String(),
			"driver_count":  tier.Count,
		}), "drivers offered")

		outcome = &AssignmentOutcome{
			OrderID:          order.ID,
			NewParties:       result.IDs,
			ResponseDeadline: &deadline,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if shortage != nil {
		return nil, shortage
	}
	return outcome, nil
}

func (s *service) RecordResponse(ctx context.Context, input RecordResponseInput) error {
	if input.Response == enums.AcceptancePending || !input.Response.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "response must be accepted, rejected or completed")
	}

	snap, err := s.pool.Snapshot(ctx, enums.PartyRoleWorker)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load worker snapshot")
	}

	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())
	ctx = s.logg.WithPartyID(ctx, input.PartyID.String())
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order no longer accepts responses")
		}

		record, err := repo.FindAcceptanceRecord(ctx, order.ID, input.PartyID)
		if err != nil {
			return err
		}
		if !record.Status.CanTransitionTo(input.Response) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("illegal transition from %s to %s", record.Status, input.Response))
		}

		now := s.now()
		ok, err := repo.UpdateAcceptanceStatusGuarded(ctx, record.ID, record.Status, input.Response, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update acceptance record")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, "response already recorded, retry with fresh state")
		}
		record.Status = input.Response
		record.RespondedAt = &now
		// advanceOrder reads the preloaded records, so the loaded order
		// must see the transition too.
		for i := range order.AcceptanceRecords {
			if order.AcceptanceRecords[i].ID == record.ID {
				order.AcceptanceRecords[i] = *record
				break
			}
		}

		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventResponseRecorded,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         input.Actor,
			Data: payloads.ResponseRecordedEvent{
				OrderID:     order.ID,
				PartyID:     input.PartyID,
				Role:        record.Role,
				Status:      input.Response,
				RespondedAt: now,
			},
		}); err != nil {
			return err
		}
		s.metrics.IncResponse(record.Role.String(), input.Response.String())
		s.logg.Info(s.logg.WithField(ctx, "response", input.Response.String()), "party response recorded")

		if input.Response == enums.AcceptanceRejected {
			return nil
		}
		return s.advanceOrder(ctx, tx, repo, order, snap, now, input.Actor)
	})
}

// ReassignAfterDeadline expires every offer still pending past the response
// deadline and runs a fresh matching pass over the reopened slots. Non
// responders stay in the attempted set, so they are never offered again.
func (s *service) ReassignAfterDeadline(ctx context.Context, input AutoAssignInput) (*AssignmentOutcome, error) {
	snap, err := s.pool.Snapshot(ctx, enums.PartyRoleWorker)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load worker snapshot")
	}
	window := input.Window
	if window <= 0 {
		window = s.cfg.WatcherResponseWindow
	}

	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())
	var outcome *AssignmentOutcome
	var shortage error
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			return err
		}
		now := s.now()
		if order.Status != enums.OrderStatusPending ||
			order.ResponseDeadline == nil || order.ResponseDeadline.After(now) {
			outcome = &AssignmentOutcome{OrderID: order.ID, NoChange: true}
			return nil
		}

		expired := 0
		for i := range order.AcceptanceRecords {
			record := &order.AcceptanceRecords[i]
			if record.Status != enums.AcceptancePending {
				continue
			}
			ok, err := repo.UpdateAcceptanceStatusGuarded(ctx, record.ID, record.Status, enums.AcceptanceRejected, now)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire acceptance record")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeConflict, "offer answered concurrently, retry with fresh state")
			}
			record.Status = enums.AcceptanceRejected
			record.RespondedAt = &now
			expired++
		}
		if expired > 0 {
			s.logg.Info(s.logg.WithField(ctx, "expired", expired), "pending offers expired")
		}

		outstanding := matching.Outstanding(
			matching.RequirementFromOrder(order),
			recordsForRole(order.AcceptanceRecords, enums.PartyRoleWorker),
			snap.Genders(),
		)
		if outstanding.IsZero() {
			// Nothing left to fill, clear the deadline so the sweep
			// stops picking this order up.
			updates := map[string]any{
				"response_deadline": nil,
				"lock_version":      order.LockVersion + 1,
			}
			ok, err := repo.UpdateOrderGuarded(ctx, order.ID, order.LockVersion, updates)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear response deadline")
			}
			if !ok {
				return staleOrderError(order.ID)
			}
			order.LockVersion++
			order.ResponseDeadline = nil
			outcome = &AssignmentOutcome{OrderID: order.ID, NoChange: true}
			return nil
		}

		selected, missing := selectWorkers(snap, order, outstanding)
		if missing > 0 {
			message := fmt.Sprintf("not enough qualifying candidates for %s: short by %d", order.Service, missing)
			if err := s.recordShortage(ctx, tx, repo, order, missing, message, input.Actor); err != nil {
				return err
			}
			shortage = pkgerrors.New(pkgerrors.CodeShortage, message)
			return nil
		}

		outcome, err = s.commitWorkerOffers(ctx, tx, repo, order, selected, window, "reassign", input.Actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	if shortage != nil {
		return nil, shortage
	}
	return outcome, nil
}

func (s *service) CancelOrder(ctx context.Context, input CancelOrderInput) error {
	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already reached a final state")
		}

		updates := map[string]any{
			"status":       enums.OrderStatusCancelled,
			"lock_version": order.LockVersion + 1,
		}
		if input.Reason != "" {
			updates["status_message"] = input.Reason
		}
		ok, err := repo.UpdateOrderGuarded(ctx, order.ID, order.LockVersion, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		if !ok {
			return staleOrderError(order.ID)
		}
		order.Status = enums.OrderStatusCancelled
		order.LockVersion++

		if err := s.emitOrderChanged(ctx, tx, order, input.Actor); err != nil {
			return err
		}
		s.logg.Info(ctx, "order cancelled")
		return nil
	})
}

// commitWorkerOffers merges the selection into the order, opens pending
// acceptance records and queues the offer notifications, all on tx.
func (s *service) commitWorkerOffers(
	ctx context.Context,
	tx *gorm.DB,
	repo Repository,
	order *models.Order,
	selected []uuid.UUID,
	window time.Duration,
	mode string,
	actor *outbox.ActorRef,
) (*AssignmentOutcome, error) {
	now := s.now()
	deadline := responseDeadline(order, now, window)

	assigned := order.AssignedParties
	attempted := order.AttemptedParties
	for _, id := range selected {
		assigned = assigned.Append(id)
		attempted = attempted.Append(id)
	}

	updates := map[string]any{
		"assigned_parties":  assigned,
		"attempted_parties": attempted,
		"response_deadline": deadline,
		"status":            enums.OrderStatusPending,
		"status_message":    nil,
		"lock_version":      order.LockVersion + 1,
	}
	ok, err := repo.UpdateOrderGuarded(ctx, order.ID, order.LockVersion, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order assignment")
	}
	if !ok {
		return nil, staleOrderError(order.ID)
	}
	order.Status = enums.OrderStatusPending
	order.LockVersion++
	order.ResponseDeadline = &deadline
	order.AssignedParties = assigned
	order.AttemptedParties = attempted

	if err := s.createOffers(ctx, tx, repo, order, selected, enums.PartyRoleWorker, now, deadline, actor); err != nil {
		return nil, err
	}
	if err := s.emitOrderChanged(ctx, tx, order, actor); err != nil {
		return nil, err
	}

	s.metrics.IncAssignment(order.Service.String(), mode)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"mode":    mode,
		"parties": len(selected),
	}), "order assignment committed")

	return &AssignmentOutcome{
		OrderID:          order.ID,
		NewParties:       selected,
		ResponseDeadline: &deadline,
	}, nil
}

func (s *service) createOffers(
	ctx context.Context,
	tx *gorm.DB,
	repo Repository,
	order *models.Order,
	partyIDs []uuid.UUID,
	role enums.PartyRole,
	now time.Time,
	deadline time.Time,
	actor *outbox.ActorRef,
) error {
	records := make([]models.AcceptanceRecord, 0, len(partyIDs))
	for _, partyID := range partyIDs {
		records = append(records, models.AcceptanceRecord{
			ID:        uuid.New(),
			OrderID:   order.ID,
			PartyID:   partyID,
			Role:      role,
			Status:    enums.AcceptancePending,
			OfferedAt: now,
		})
	}
	if err := repo.CreateAcceptanceRecords(ctx, records); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create acceptance records")
	}

	for _, record := range records {
		event := outbox.DomainEvent{
			EventType:     enums.EventOfferCreated,
			AggregateType: enums.AggregateNotification,
			AggregateID:   record.ID,
			Actor:         actor,
			Data: payloads.OfferCreatedEvent{
				OrderID:          order.ID,
				PartyID:          record.PartyID,
				Role:             role,
				OfferedAt:        now,
				ResponseDeadline: &deadline,
			},
		}
		if err := s.events.Emit(ctx, tx, event); err != nil {
			return err
		}
	}
	return nil
}

// recordShortage writes the error status without touching the assignment
// arrays, so a later pass resumes from the same exclusion state.
func (s *service) recordShortage(
	ctx context.Context,
	tx *gorm.DB,
	repo Repository,
	order *models.Order,
	missing int,
	message string,
	actor *outbox.ActorRef,
) error {
	updates := map[string]any{
		"status":         enums.OrderStatusError,
		"status_message": message,
		"lock_version":   order.LockVersion + 1,
	}
	ok, err := repo.UpdateOrderGuarded(ctx, order.ID, order.LockVersion, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record shortage")
	}
	if !ok {
		return staleOrderError(order.ID)
	}
	order.Status = enums.OrderStatusError
	order.LockVersion++

	if err := s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderShortage,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data: payloads.OrderShortageEvent{
			OrderID:  order.ID,
			FarmerID: order.FarmerID,
			Service:  order.Service,
			Missing:  missing,
			Message:  message,
		},
	}); err != nil {
		return err
	}
	if err := s.emitOrderChanged(ctx, tx, order, actor); err != nil {
		return err
	}

	s.metrics.IncShortage(order.Service.String())
	s.logg.Warn(s.logg.WithField(ctx, "missing", missing), "candidate shortage recorded")
	return nil
}

// advanceOrder moves the order forward when the latest accept or completion
// closed the last open slot.
func (s *service) advanceOrder(
	ctx context.Context,
	tx *gorm.DB,
	repo Repository,
	order *models.Order,
	snap directory.Snapshot,
	now time.Time,
	actor *outbox.ActorRef,
) error {
	if hasPending(order.AcceptanceRecords) {
		return nil
	}
	outstanding := matching.Outstanding(
		matching.RequirementFromOrder(order),
		recordsForRole(order.AcceptanceRecords, enums.PartyRoleWorker),
		snap.Genders(),
	)
	if !outstanding.IsZero() {
		return nil
	}

	if allCompleted(order.AcceptanceRecords) {
		return s.transitionOrder(ctx, tx, repo, order, enums.OrderStatusCompleted, actor, outbox.DomainEvent{
			EventType:     enums.EventOrderCompleted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Data: payloads.OrderCompletedEvent{
				OrderID:     order.ID,
				CompletedAt: now,
			},
		})
	}
	if order.Status == enums.OrderStatusAssigned {
		return nil
	}
	return s.transitionOrder(ctx, tx, repo, order, enums.OrderStatusAssigned, actor, outbox.DomainEvent{
		EventType:     enums.EventOrderAssigned,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data: payloads.OrderAssignedEvent{
			OrderID:         order.ID,
			FarmerID:        order.FarmerID,
			Service:         order.Service,
			AssignedParties: order.AssignedParties,
			Mode:            "auto",
			RequiredMale:    order.RequiredMale,
			RequiredFemale:  order.RequiredFemale,
			RequiredCount:   order.RequiredCount,
			VehicleClass:    order.RequiredVehicleClass,
			DriverCount:     order.RequiredDriverCount,
		},
	})
}

func (s *service) transitionOrder(
	ctx context.Context,
	tx *gorm.DB,
	repo Repository,
	order *models.Order,
	status enums.OrderStatus,
	actor *outbox.ActorRef,
	event outbox.DomainEvent,
) error {
	updates := map[string]any{
		"status":       status,
		"lock_version": order.LockVersion + 1,
	}
	ok, err := repo.UpdateOrderGuarded(ctx, order.ID, order.LockVersion, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance order status")
	}
	if !ok {
		return staleOrderError(order.ID)
	}
	order.Status = status
	order.LockVersion++

	if err := s.events.Emit(ctx, tx, event); err != nil {
		return err
	}
	if err := s.emitOrderChanged(ctx, tx, order, actor); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "status", status.String()), "order advanced")
	return nil
}

func (s *service) emitOrderChanged(ctx context.Context, tx *gorm.DB, order *models.Order, actor *outbox.ActorRef) error {
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data: payloads.OrderChangedEvent{
			OrderID:     order.ID,
			Status:      order.Status,
			LockVersion: order.LockVersion,
		},
	})
}

// selectWorkers runs the matcher once per outstanding quota. Gendered orders
// fill male and female slots in separate passes; a shortfall in either pass
// aborts the whole selection.
func selectWorkers(snap directory.Snapshot, order *models.Order, outstanding matching.Requirement) ([]uuid.UUID, int) {
	base := matching.Criteria{
		Role:      enums.PartyRoleWorker,
		SkillTag:  order.Service.SkillTag(),
		Pincode:   order.FarmerPincode,
		StartDate: order.StartDate,
		Exclude:   excludeSet(order.AttemptedParties),
	}
	if !outstanding.IsGendered() {
		base.Needed = outstanding.Count()
		result := matching.Match(snap, base)
		if result.Short() {
			return nil, result.Missing()
		}
		return result.IDs, 0
	}

	male := base
	maleGender := enums.GenderMale
	male.Gender = &maleGender
	male.Needed = outstanding.Male

	female := base
	femaleGender := enums.GenderFemale
	female.Gender = &femaleGender
	female.Needed = outstanding.Female

	maleResult := matching.Match(snap, male)
	femaleResult := matching.Match(snap, female)
	if missing := maleResult.Missing() + femaleResult.Missing(); missing > 0 {
		return nil, missing
	}
	return append(maleResult.IDs, femaleResult.IDs...), 0
}

// matchDrivers tries the primary tier and then the fallback when the primary
// pool falls short. Each tier's need is netted against offers already open,
// so a tier covered by open offers yields an empty result with Needed zero.
// It returns the tier whose result is reported.
func matchDrivers(snap directory.Snapshot, order *models.Order, resolution tiering.Resolution, openDrivers int) (tiering.Tier, matching.Result) {
	exclude := excludeSet(order.AttemptedDrivers)
	try := func(tier tiering.Tier) matching.Result {
		needed := tier.Count - openDrivers
		if needed <= 0 {
			return matching.Result{}
		}
		vehicle := tier.Vehicle
		return matching.Match(snap, matching.Criteria{
			Role:         enums.PartyRoleDriver,
			VehicleClass: &vehicle,
			Pincode:      order.FarmerPincode,
			StartDate:    order.StartDate,
			Needed:       needed,
			Exclude:      exclude,
		})
	}

	result := try(resolution.Primary)
	if result.Needed == 0 || !result.Short() || resolution.Fallback == nil {
		return resolution.Primary, result
	}
	fallback := try(*resolution.Fallback)
	if fallback.Needed == 0 || !fallback.Short() {
		return *resolution.Fallback, fallback
	}
	return resolution.Primary, result
}

// responseDeadline extends the window from now but never shortens a deadline
// that is still in the future.
func responseDeadline(order *models.Order, now time.Time, window time.Duration) time.Time {
	deadline := now.Add(window)
	if order.ResponseDeadline != nil && order.ResponseDeadline.After(deadline) {
		return *order.ResponseDeadline
	}
	return deadline
}

func recordsForRole(records []models.AcceptanceRecord, role enums.PartyRole) []models.AcceptanceRecord {
	filtered := make([]models.AcceptanceRecord, 0, len(records))
	for _, record := range records {
		if record.Role == role {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

func countAccepted(records []models.AcceptanceRecord, role enums.PartyRole) int {
	count := 0
	for _, record := range records {
		if record.Role != role {
			continue
		}
		if record.Status == enums.AcceptanceAccepted || record.Status == enums.AcceptanceCompleted {
			count++
		}
	}
	return count
}

// countOpenDrivers counts driver offers that still occupy a tier slot.
// Only a rejection frees the slot.
func countOpenDrivers(records []models.AcceptanceRecord) int {
	open := 0
	for _, record := range records {
		if record.Role != enums.PartyRoleDriver {
			continue
		}
		if record.Status != enums.AcceptanceRejected {
			open++
		}
	}
	return open
}

func hasPending(records []models.AcceptanceRecord) bool {
	for _, record := range records {
		if record.Status == enums.AcceptancePending {
			return true
		}
	}
	return false
}

func allCompleted(records []models.AcceptanceRecord) bool {
	completed := 0
	for _, record := range records {
		switch record.Status {
		case enums.AcceptanceCompleted:
			completed++
		case enums.AcceptanceRejected:
		default:
			return false
		}
	}
	return completed > 0
}

func excludeSet(ids dbtypes.UUIDArray) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func staleOrderError(orderID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeConflict,
		fmt.Sprintf("order %s was modified concurrently, retry with fresh state", orderID))
}
