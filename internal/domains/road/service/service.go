package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"roadbook/infras/otel"
	"roadbook/internal/domains/road/model"
	"roadbook/internal/domains/road/model/dto"
	"roadbook/internal/domains/road/repository"
	"roadbook/shared"
	"roadbook/shared/cache"
	"roadbook/shared/constant"
	gDto "roadbook/shared/dto"
	"roadbook/shared/failure"

	"github.com/rs/zerolog/log"
)

var ErrRoadNotFound = errors.New("road not found")

type Road interface {
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoadsResponse, error)
	Get(ctx context.Context, id string) (dto.RoadResponse, error)
	UpdateCapacity(ctx context.Context, id string, req dto.UpdateRoadRequest) error
}

type serviceImpl struct {
	repo  repository.Road
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Road, cache cache.RedisCache, otel otel.Otel) Road {
	return &serviceImpl{
		repo:  repo,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRoadsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".road.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	params.RestrictSort(model.FieldName, model.FieldName, model.FieldHourlyCapacity, model.FieldOsmID, constant.FieldCreatedAt)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count roads")

		return res, fmt.Errorf("failed to count roads: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get roads")

		return res, fmt.Errorf("failed to get roads: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoadResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".road.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !shared.IsUUID(id) {
		return res, roadNotFound()
	}

	road, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("road_id", id).Msg("failed to get road")

		return res, fmt.Errorf("failed to get road: %w", err)
	}

	if road.ID == "" {
		return res, roadNotFound()
	}

	res.FromModel(road)

	return res, nil
}

// UpdateCapacity changes the capacity of hours that have no slot yet. Existing slots keep
// the total they were created with, so only the cached availability needs to go.
func (s *serviceImpl) UpdateCapacity(ctx context.Context, id string, req dto.UpdateRoadRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".road.UpdateCapacity")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.HourlyCapacity < 1 {
		return failure.BadRequestFromString("hourly_capacity must be greater than or equal to 1") //nolint:wrapcheck
	}

	if _, err = s.Get(ctx, id); err != nil {
		return err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	err = s.repo.Update(ctx, shared.TransformFields(req, user), shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("road_id", id).Msg("failed to update road capacity")

		return fmt.Errorf("failed to update road capacity: %w", err)
	}

	log.Info().Str("road_id", id).Int("hourly_capacity", req.HourlyCapacity).Msg("road capacity updated")

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateAvailability(c, s.cache, id)
	}()

	return nil
}

func roadNotFound() error {
	return failure.Wrap(http.StatusNotFound, ErrRoadNotFound, "road not found") //nolint:wrapcheck
}
