package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"roadbook/config"
	"roadbook/infras/kafka"
	"roadbook/infras/metrics"
	"roadbook/infras/otel"
	"roadbook/infras/postgres"
	"roadbook/internal/domains/booking/model"
	"roadbook/internal/domains/booking/model/dto"
	"roadbook/internal/domains/booking/repository"
	roadRepo "roadbook/internal/domains/road/repository"
	slotRepo "roadbook/internal/domains/slot/repository"
	userModel "roadbook/internal/domains/user/model"
	userRepo "roadbook/internal/domains/user/repository"
	"roadbook/shared"
	"roadbook/shared/cache"
	"roadbook/shared/constant"
	gDto "roadbook/shared/dto"
	"roadbook/shared/failure"
	"roadbook/shared/logger"
	"roadbook/shared/timezone"
	"roadbook/shared/validator"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	operationCreate = "create"
	operationCancel = "cancel"
)

type Booking interface {
	Create(ctx context.Context, userID string, req dto.CreateBookingRequest) (dto.BookingResult, error)
	Cancel(ctx context.Context, bookingID, userID string) (dto.CancelResult, error)
	ListUserBookings(ctx context.Context, userID string) ([]dto.BookingSummaryResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Get(ctx context.Context, id string) (dto.BookingDetailResponse, error)
	Delete(ctx context.Context, id string) (dto.CancelResult, error)
	Stats(ctx context.Context) (dto.StatsResponse, error)
}

type serviceImpl struct {
	repo       repository.Booking
	lineRepo   repository.Line
	slotRepo   slotRepo.Slot
	roadRepo   roadRepo.Road
	userRepo   userRepo.User
	transactor postgres.Transactor
	cfg        *config.Config
	cache      cache.RedisCache
	kafka      kafka.Client
	metrics    metrics.Metrics
	clock      timezone.Clock
	otel       otel.Otel
}

func New(
	repo repository.Booking,
	lineRepo repository.Line,
	slotRepo slotRepo.Slot,
	roadRepo roadRepo.Road,
	userRepo userRepo.User,
	transactor postgres.Transactor,
	cfg *config.Config,
	cache cache.RedisCache,
	kafka kafka.Client,
	metrics metrics.Metrics,
	clock timezone.Clock,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:       repo,
		lineRepo:   lineRepo,
		slotRepo:   slotRepo,
		roadRepo:   roadRepo,
		userRepo:   userRepo,
		transactor: transactor,
		cfg:        cfg,
		cache:      cache,
		kafka:      kafka,
		metrics:    metrics,
		clock:      clock,
		otel:       otel,
	}
}

// Create reserves every (road, hour) of the request in one transaction or none of them.
// All checks that need no lock run first. Inside the transaction every line is validated
// against the locked ledger before the header, the ledger and the lines are written.
func (s *serviceImpl) Create(ctx context.Context, userID string, req dto.CreateBookingRequest) (res dto.BookingResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	defer func() {
		if err != nil {
			s.metrics.BookingRejected(rejectReason(err))
		}
	}()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, validationError(err.Error())
	}

	intents, err := req.ToIntents()
	if err != nil {
		return res, validationError(err.Error())
	}

	if !shared.IsUUID(userID) {
		log.Warn().Str("user_id", userID).Msg("booking rejected, malformed user id")

		return res, userNotFound(userID)
	}

	user, err := s.userRepo.Get(ctx, shared.FilterByID(userID, userModel.FieldID, userModel.TableName))
	if err != nil {
		logger.ErrorWithStack(err)

		return res, storageUnavailable()
	}

	if user.ID == "" {
		log.Warn().Str("user_id", userID).Msg("booking rejected, unknown user")

		return res, userNotFound(userID)
	}

	now := s.clock.Now()

	for _, intent := range intents {
		if !intent.SlotTime.After(now) {
			log.Warn().Str("user_id", userID).Str("road_id", intent.RoadID).Time("start_time", intent.SlotTime).Msg("booking rejected, slot in the past")

			return res, pastSlot(timezone.Format(intent.SlotTime, constant.DateFormat))
		}
	}

	var (
		booking model.Booking
		plan    *ledgerPlan
	)

	started := time.Now()

	err = s.transactor.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error

		plan, err = s.plan(ctx, tx, intents, userID, now)
		if err != nil {
			return err
		}

		booking = model.NewBooking(userID, req.Origin, req.Destination, now)

		return s.commit(ctx, tx, booking, plan)
	})

	s.metrics.TransactionObserved(operationCreate, transactionResult(err), time.Since(started))

	if err != nil {
		err = s.txFailure(err)
		log.Warn().Err(err).Str("user_id", userID).Msg("booking rejected")

		return res, err
	}

	s.metrics.BookingCreated(len(plan.lines), plan.quantity())

	log.Info().Str("booking_id", booking.ID).Str("user_id", userID).Int("lines", len(plan.lines)).Msg("booking created")

	s.afterCommit(ctx, plan.roadIDs(), model.Event{
		Type:       model.EventBookingCreated,
		BookingID:  booking.ID,
		UserID:     userID,
		Lines:      plan.eventLines(),
		OccurredAt: now,
	})

	return dto.BookingResult{
		Success:      true,
		BookingID:    booking.ID,
		SuccessCount: len(plan.lines),
		TotalCount:   len(intents),
	}, nil
}

// Cancel releases a booking of userID and gives its quantity back to the ledger.
func (s *serviceImpl) Cancel(ctx context.Context, bookingID, userID string) (res dto.CancelResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.release(ctx, bookingID, func(booking model.Booking) error {
		if booking.UserID != userID {
			log.Warn().Str("booking_id", bookingID).Str("user_id", userID).Msg("cancel rejected, booking owned by another user")

			return forbidden()
		}

		return nil
	})
}

func (s *serviceImpl) ListUserBookings(ctx context.Context, userID string) (res []dto.BookingSummaryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.ListUserBookings")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !shared.IsUUID(userID) {
		return []dto.BookingSummaryResponse{}, nil
	}

	summaries, err := s.repo.GetSummaries(ctx, userID)
	if err != nil {
		logger.ErrorWithStack(err)

		return nil, storageUnavailable()
	}

	return dto.FromSummaries(summaries), nil
}

// release runs the cancellation transaction. authorize sees the locked header and may veto.
func (s *serviceImpl) release(ctx context.Context, bookingID string, authorize func(model.Booking) error) (res dto.CancelResult, err error) {
	var (
		booking  model.Booking
		released []model.EventLine
	)

	if !shared.IsUUID(bookingID) {
		return res, bookingNotFound(bookingID)
	}

	started := time.Now()

	err = s.transactor.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error

		released = released[:0]

		booking, err = s.repo.GetForUpdateTx(ctx, tx, shared.FilterByID(bookingID, model.FieldID, model.TableName))
		if err != nil {
			return fmt.Errorf("failed to lock booking: %w", err)
		}

		if booking.ID == "" {
			return bookingNotFound(bookingID)
		}

		if err = authorize(booking); err != nil {
			return err
		}

		byBooking := shared.FilterByID(bookingID, model.LineFieldBookingID, model.LineTableName)

		lines, err := s.lineRepo.GetAllTx(ctx, tx, gDto.QueryParams{}, byBooking)
		if err != nil {
			return fmt.Errorf("failed to get booking lines: %w", err)
		}

		if len(lines) == 0 {
			res = dto.CancelResult{Status: dto.StatusEmptyBooking}

			return s.repo.DeleteTx(ctx, tx, shared.FilterByID(bookingID, model.FieldID, model.TableName))
		}

		for _, line := range lines {
			roadID, err := s.slotRepo.CreditTx(ctx, tx, line.SlotID, line.Quantity)
			if errors.Is(err, slotRepo.ErrCapacityOverflow) {
				log.Error().Str("booking_id", bookingID).Str("slot_id", line.SlotID).Int("quantity", line.Quantity).Msg("release would exceed slot capacity")

				return integrityViolated(line.SlotID)
			}

			if err != nil {
				return fmt.Errorf("failed to release slot: %w", err)
			}

			released = append(released, model.EventLine{SlotID: line.SlotID, RoadID: roadID, Quantity: line.Quantity})
		}

		if err = s.lineRepo.DeleteTx(ctx, tx, byBooking); err != nil {
			return fmt.Errorf("failed to delete booking lines: %w", err)
		}

		if err = s.repo.DeleteTx(ctx, tx, shared.FilterByID(bookingID, model.FieldID, model.TableName)); err != nil {
			return fmt.Errorf("failed to delete booking: %w", err)
		}

		res = dto.CancelResult{Status: dto.StatusCancelled, CancelledCount: len(lines)}

		return nil
	})

	s.metrics.TransactionObserved(operationCancel, transactionResult(err), time.Since(started))

	if err != nil {
		return dto.CancelResult{}, s.txFailure(err)
	}

	s.metrics.BookingCancelled(res.Status, res.CancelledCount)

	log.Info().Str("booking_id", bookingID).Str("status", res.Status).Int("released", res.CancelledCount).Msg("booking released")

	roadIDs := make([]string, 0, len(released))
	for _, line := range released {
		roadIDs = append(roadIDs, line.RoadID)
	}

	s.afterCommit(ctx, roadIDs, model.Event{
		Type:       model.EventBookingCancelled,
		BookingID:  bookingID,
		UserID:     booking.UserID,
		Status:     res.Status,
		Lines:      released,
		OccurredAt: s.clock.Now(),
	})

	return res, nil
}

// txFailure turns whatever left a transaction into a coded failure. Business rejections are
// already coded; anything else is a storage fault the caller may retry.
func (s *serviceImpl) txFailure(err error) error {
	if failure.IsFailure(err) {
		return err
	}

	if errors.Is(err, postgres.ErrConflict) {
		log.Warn().Err(err).Msg("transaction retries exhausted")

		return conflict()
	}

	logger.ErrorWithStack(err)

	return storageUnavailable()
}

func transactionResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case failure.GetCode(err) < http.StatusInternalServerError && failure.IsFailure(err):
		return metrics.ResultRejected
	default:
		return metrics.ResultFailed
	}
}
