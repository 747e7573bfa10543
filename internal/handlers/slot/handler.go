package slot

import (
	"net/http"
	"roadbook/infras/otel"
	"roadbook/internal/domains/slot/model/dto"
	"roadbook/internal/domains/slot/service"
	"roadbook/shared/constant"
	"roadbook/shared/failure"
	"roadbook/shared/validator"
	"roadbook/transport/http/response"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Slot
	otel    otel.Otel
}

func New(service service.Slot, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Post("/slots/available", handler.GetAvailableSlots)
	router.Get("/roads/{id}/slots", handler.GetRoadSlots)
}

// GetAvailableSlots lists the bookable hours of several roads.
// @Summary Available slots of roads
// @Description Every whole hour between now and the horizon. Hours without a ledger row have no slot_id. Unknown roads map to an empty list.
// @Tags Slot
// @Accept json
// @Produce json
// @Param request body dto.AvailableSlotsRequest true "Roads and horizon"
// @Success 200 {object} response.Data[map[string][]dto.SlotResponse] "Slots per road"
// @Failure 400 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/slots/available [post]
// @Security BearerAuth
func (handler *Handler) GetAvailableSlots(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailableSlots")
	defer scope.End()

	var req dto.AvailableSlotsRequest
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	slots, err := handler.service.GetAvailableSlots(ctx, req.RoadIDs, req.HorizonDays)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Strs("road_ids", req.RoadIDs).Msg("failed to get available slots")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, slots)
}

// GetRoadSlots lists the bookable hours of one road.
// @Summary Available slots of a road
// @Tags Slot
// @Produce json
// @Param id path string true "Road ID"
// @Param horizon_days query integer false "Days ahead, defaults to the configured horizon"
// @Success 200 {object} response.Data[dto.RoadAvailabilityResponse] "Slots of the road"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/roads/{id}/slots [get]
// @Security BearerAuth
func (handler *Handler) GetRoadSlots(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoadSlots")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	horizonDays := 0

	if raw := request.URL.Query().Get(constant.RequestParamHorizonDays); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			err = failure.BadRequestFromString(constant.RequestParamHorizonDays + " must be an integer")
			scope.TraceError(err)

			response.WithError(writer, err)

			return
		}

		horizonDays = parsed
	}

	slots, err := handler.service.GetRoadAvailability(ctx, id, horizonDays)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("road_id", id).Msg("failed to get road slots")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, dto.RoadAvailabilityResponse{RoadID: id, Slots: slots})
}
