package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"roadbook/config"
	"roadbook/infras/otel"
	"roadbook/infras/postgres"
	bookingModel "roadbook/internal/domains/booking/model"
	bookingRepo "roadbook/internal/domains/booking/repository"
	roadModel "roadbook/internal/domains/road/model"
	roadRepo "roadbook/internal/domains/road/repository"
	"roadbook/internal/domains/slot/model"
	"roadbook/internal/domains/slot/model/dto"
	"roadbook/internal/domains/slot/repository"
	"roadbook/shared"
	"roadbook/shared/cache"
	"roadbook/shared/constant"
	gDto "roadbook/shared/dto"
	"roadbook/shared/failure"
	"roadbook/shared/logger"
	"roadbook/shared/timezone"
	"slices"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type Slot interface {
	GetAvailableSlots(ctx context.Context, roadIDs []string, horizonDays int) (map[string][]dto.SlotResponse, error)
	GetRoadAvailability(ctx context.Context, roadID string, horizonDays int) ([]dto.SlotResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetSlotsResponse, error)
	Get(ctx context.Context, id string) (dto.SlotDetailResponse, error)
	UpdateCapacity(ctx context.Context, id string, req dto.UpdateSlotRequest) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo       repository.Slot
	roadRepo   roadRepo.Road
	lineRepo   bookingRepo.Line
	transactor postgres.Transactor
	cfg        *config.Config
	cache      cache.RedisCache
	clock      timezone.Clock
	otel       otel.Otel
}

func New(
	repo repository.Slot,
	roadRepo roadRepo.Road,
	lineRepo bookingRepo.Line,
	transactor postgres.Transactor,
	cfg *config.Config,
	cache cache.RedisCache,
	clock timezone.Clock,
	otel otel.Otel,
) Slot {
	return &serviceImpl{
		repo:       repo,
		roadRepo:   roadRepo,
		lineRepo:   lineRepo,
		transactor: transactor,
		cfg:        cfg,
		cache:      cache,
		clock:      clock,
		otel:       otel,
	}
}

// GetAvailableSlots resolves every road on its own. Unknown roads map to an empty list.
func (s *serviceImpl) GetAvailableSlots(ctx context.Context, roadIDs []string, horizonDays int) (res map[string][]dto.SlotResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.GetAvailableSlots")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	horizonDays, err = s.horizon(horizonDays)
	if err != nil {
		return nil, err
	}

	res = make(map[string][]dto.SlotResponse, len(roadIDs))

	for _, roadID := range roadIDs {
		if _, done := res[roadID]; done {
			continue
		}

		slots, err := s.resolve(ctx, roadID, horizonDays)
		if errors.Is(err, ErrRoadNotFound) {
			log.Warn().Str("road_id", roadID).Msg("availability requested for unknown road")

			res[roadID] = []dto.SlotResponse{}

			continue
		}

		if err != nil {
			return nil, s.storageFailure(err)
		}

		res[roadID] = slots
	}

	return res, nil
}

func (s *serviceImpl) GetRoadAvailability(ctx context.Context, roadID string, horizonDays int) (res []dto.SlotResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.GetRoadAvailability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	horizonDays, err = s.horizon(horizonDays)
	if err != nil {
		return nil, err
	}

	res, err = s.resolve(ctx, roadID, horizonDays)
	if errors.Is(err, ErrRoadNotFound) {
		return nil, failure.Wrap(http.StatusNotFound, ErrRoadNotFound, fmt.Sprintf("road %s not found", roadID)) //nolint:wrapcheck
	}

	if err != nil {
		return nil, s.storageFailure(err)
	}

	return res, nil
}

func (s *serviceImpl) horizon(days int) (int, error) {
	if days == 0 {
		return s.cfg.Booking.DefaultHorizonDays, nil
	}

	if days < 1 || days > s.cfg.Booking.MaxHorizonDays {
		msg := fmt.Sprintf("horizon_days must be between 1 and %d", s.cfg.Booking.MaxHorizonDays)

		return 0, failure.Wrap(http.StatusBadRequest, ErrInvalidHorizon, msg) //nolint:wrapcheck
	}

	return days, nil
}

// resolve lists every whole hour h with now < h < now+horizon. Hours with a ledger row report
// the row, the others are virtual and offer the full effective road capacity.
func (s *serviceImpl) resolve(ctx context.Context, roadID string, horizonDays int) ([]dto.SlotResponse, error) {
	if !shared.IsUUID(roadID) {
		return nil, ErrRoadNotFound
	}

	now := s.clock.Now()
	currentHour := timezone.StartOfHour(now)

	// The generation is read before the ledger, an invalidation racing this read moves later
	// lookups to a key this result is never saved under.
	generation, err := shared.AvailabilityGeneration(ctx, s.cache, roadID)
	cacheable := err == nil

	if !cacheable {
		log.Warn().Err(err).Str("road_id", roadID).Msg("failed to get availability generation, skipping cache")
	}

	cacheKey := shared.AvailabilityCacheKey(roadID, generation, strconv.FormatInt(currentHour.Unix(), 10), strconv.Itoa(horizonDays))

	if cacheable {
		var cached []dto.SlotResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for road availability")

			return cached, nil
		}
	}

	road, err := s.roadRepo.Get(ctx, shared.FilterByID(roadID, roadModel.FieldID, roadModel.TableName))
	if err != nil {
		return nil, fmt.Errorf("failed to get road: %w", err)
	}

	if road.ID == "" {
		return nil, ErrRoadNotFound
	}

	capacity, fallback := road.EffectiveCapacity(s.cfg.Booking.FallbackHourlyCapacity)
	if fallback {
		log.Warn().Str("road_id", roadID).Int("capacity", capacity).Msg("road has no hourly capacity, using fallback")
	}

	first := currentHour.Add(constant.SlotDuration)
	end := now.Add(time.Duration(horizonDays) * constant.HoursInDay * time.Hour)

	existing, err := s.repo.GetAll(ctx, gDto.QueryParams{}, gDto.And(
		gDto.Filter{Field: model.FieldRoadID, Value: roadID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{ArgName: "slot_from", Field: model.FieldSlotTime, Value: currentHour, Operator: gDto.FilterOperatorGreater, Table: model.TableName},
		gDto.Filter{ArgName: "slot_to", Field: model.FieldSlotTime, Value: end, Operator: gDto.FilterOperatorLess, Table: model.TableName},
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get slots: %w", err)
	}

	byHour := make(map[int64]model.Slot, len(existing))
	for _, slot := range existing {
		byHour[slot.SlotTime.Unix()] = slot
	}

	res := []dto.SlotResponse{}

	for hour := first; hour.Before(end); hour = hour.Add(constant.SlotDuration) {
		slot, ok := byHour[hour.Unix()]
		if !ok {
			res = append(res, dto.Virtual(hour, capacity))

			continue
		}

		var view dto.SlotResponse

		view.FromModel(slot)
		res = append(res, view)
	}

	if cacheable {
		if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save road availability to cache")
		}
	}

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetSlotsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	params.RestrictSort(model.FieldSlotTime, model.FieldSlotTime, model.FieldCapacity, model.FieldAvailableCapacity, constant.FieldCreatedAt)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count slots")

		return res, fmt.Errorf("failed to count slots: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get slots")

		return res, fmt.Errorf("failed to get slots: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.SlotDetailResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !shared.IsUUID(id) {
		return res, slotNotFound()
	}

	slot, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("slot_id", id).Msg("failed to get slot")

		return res, fmt.Errorf("failed to get slot: %w", err)
	}

	if slot.ID == "" {
		return res, slotNotFound()
	}

	res.FromModel(slot)

	return res, nil
}

// UpdateCapacity changes the total of a slot under its row lock. Units already booked stay
// booked, so the new total may not drop below them.
func (s *serviceImpl) UpdateCapacity(ctx context.Context, id string, req dto.UpdateSlotRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.UpdateCapacity")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.Capacity == nil || *req.Capacity < 0 {
		return failure.BadRequestFromString("capacity must be greater than or equal to 0") //nolint:wrapcheck
	}

	if !shared.IsUUID(id) {
		return slotNotFound()
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)
	newCapacity := *req.Capacity

	var roadID string

	err = s.transactor.WithTx(ctx, func(tx *sqlx.Tx) error {
		slot, err := s.lock(ctx, tx, filter)
		if err != nil {
			return err
		}

		booked := slot.Booked()
		if newCapacity < booked {
			msg := fmt.Sprintf("capacity %d is below the %d units already booked", newCapacity, booked)

			return failure.Wrap(http.StatusBadRequest, ErrCapacityBelowBooked, msg) //nolint:wrapcheck
		}

		roadID = slot.RoadID

		return s.repo.UpdateTx(ctx, tx, map[string]any{
			model.FieldCapacity:          newCapacity,
			model.FieldAvailableCapacity: newCapacity - booked,
			constant.FieldModifiedAt:     timezone.Now(),
			constant.FieldModifiedBy:     user,
		}, filter)
	})
	if err != nil {
		return s.txFailure(err)
	}

	log.Info().Str("slot_id", id).Int("capacity", newCapacity).Msg("slot capacity updated")

	s.invalidate(ctx, roadID)

	return nil
}

// Delete removes a slot no booking line references.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !shared.IsUUID(id) {
		return slotNotFound()
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	var roadID string

	err = s.transactor.WithTx(ctx, func(tx *sqlx.Tx) error {
		slot, err := s.lock(ctx, tx, filter)
		if err != nil {
			return err
		}

		inUse, err := s.lineRepo.ExistTx(ctx, tx, shared.FilterByID(id, bookingModel.LineFieldSlotID, bookingModel.LineTableName))
		if err != nil {
			return fmt.Errorf("failed to check slot references: %w", err)
		}

		if inUse {
			return failure.Wrap(http.StatusConflict, ErrSlotInUse, "slot is still referenced by bookings") //nolint:wrapcheck
		}

		roadID = slot.RoadID

		return s.repo.DeleteTx(ctx, tx, filter)
	})
	if err != nil {
		return s.txFailure(err)
	}

	log.Info().Str("slot_id", id).Msg("slot deleted")

	s.invalidate(ctx, roadID)

	return nil
}

func (s *serviceImpl) lock(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup) (model.Slot, error) {
	slot, err := s.repo.GetForUpdateTx(ctx, tx, filter)
	if err != nil {
		return slot, fmt.Errorf("failed to lock slot: %w", err)
	}

	if slot.ID == "" {
		return slot, slotNotFound()
	}

	return slot, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, roadIDs ...string) {
	roadIDs = slices.Compact(slices.Sorted(slices.Values(roadIDs)))

	go func() {
		c := context.WithoutCancel(ctx)

		for _, roadID := range roadIDs {
			shared.InvalidateAvailability(c, s.cache, roadID)
		}
	}()
}

func slotNotFound() error {
	return failure.Wrap(http.StatusNotFound, ErrSlotNotFound, "slot not found") //nolint:wrapcheck
}

func (s *serviceImpl) txFailure(err error) error {
	if failure.IsFailure(err) {
		return err
	}

	if errors.Is(err, postgres.ErrConflict) {
		return failure.Conflict("slot was changed concurrently, please retry") //nolint:wrapcheck
	}

	return s.storageFailure(err)
}

func (s *serviceImpl) storageFailure(err error) error {
	logger.ErrorWithStack(err)

	return failure.ServiceUnavailable("storage unavailable, please retry") //nolint:wrapcheck
}
