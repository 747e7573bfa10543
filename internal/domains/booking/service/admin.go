package service

import (
	"context"
	"fmt"
	"roadbook/internal/domains/booking/model"
	"roadbook/internal/domains/booking/model/dto"
	"roadbook/shared"
	"roadbook/shared/constant"
	gDto "roadbook/shared/dto"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	params.RestrictSort(constant.FieldCreatedAt, constant.FieldCreatedAt, model.FieldOrigin, model.FieldDestination)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}

	lineCounts, err := s.lineRepo.CountByBooking(ctx, ids)
	if err != nil {
		log.Error().Err(err).Msg("failed to count booking lines")

		return res, fmt.Errorf("failed to count booking lines: %w", err)
	}

	res.FromModels(models, lineCounts, total, params.Limit)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingDetailResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !shared.IsUUID(id) {
		return res, bookingNotFound(id)
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == "" {
		return res, bookingNotFound(id)
	}

	lines, err := s.lineRepo.GetDetails(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking lines")

		return res, fmt.Errorf("failed to get booking lines: %w", err)
	}

	res.FromModel(booking, lines)

	return res, nil
}

// Delete is the administrative release: the same path as Cancel without the ownership check.
func (s *serviceImpl) Delete(ctx context.Context, id string) (res dto.CancelResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.release(ctx, id, func(model.Booking) error { return nil })
}

func (s *serviceImpl) Stats(ctx context.Context) (res dto.StatsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Stats")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	group, gctx := errgroup.WithContext(ctx)
	none := gDto.FilterGroup{}

	group.Go(func() (err error) {
		res.Roads, err = s.roadRepo.Count(gctx, none)

		return err
	})
	group.Go(func() (err error) {
		res.Slots, err = s.slotRepo.Count(gctx, none)

		return err
	})
	group.Go(func() (err error) {
		res.Bookings, err = s.repo.Count(gctx, none)

		return err
	})
	group.Go(func() (err error) {
		res.BookingLines, err = s.lineRepo.Count(gctx, none)

		return err
	})
	group.Go(func() (err error) {
		res.Users, err = s.userRepo.Count(gctx, none)

		return err
	})

	if err = group.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to collect booking stats")

		return dto.StatsResponse{}, fmt.Errorf("failed to collect booking stats: %w", err)
	}

	return res, nil
}
