package admin

import (
	"net/http"
	"roadbook/infras/otel"
	bookingModel "roadbook/internal/domains/booking/model"
	bookingService "roadbook/internal/domains/booking/service"
	roadModel "roadbook/internal/domains/road/model"
	roadDto "roadbook/internal/domains/road/model/dto"
	roadService "roadbook/internal/domains/road/service"
	slotDto "roadbook/internal/domains/slot/model/dto"
	slotService "roadbook/internal/domains/slot/service"
	"roadbook/shared"
	"roadbook/shared/constant"
	gDto "roadbook/shared/dto"
	"roadbook/shared/failure"
	"roadbook/shared/validator"
	"roadbook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Handler serves the back office. Every route requires the admin role.
type Handler struct {
	booking bookingService.Booking
	slot    slotService.Slot
	road    roadService.Road
	otel    otel.Otel
}

func New(booking bookingService.Booking, slot slotService.Slot, road roadService.Road, otel otel.Otel) Handler {
	return Handler{
		booking: booking,
		slot:    slot,
		road:    road,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/admin", func(routerGroup chi.Router) {
		routerGroup.Get("/stats", handler.GetStats)

		routerGroup.Get("/bookings", handler.GetBookings)
		routerGroup.Get("/bookings/{id}", handler.GetBookingByID)
		routerGroup.Delete("/bookings/{id}", handler.DeleteBooking)

		routerGroup.Get("/roads", handler.GetRoads)
		routerGroup.Get("/roads/{id}", handler.GetRoadByID)
		routerGroup.Put("/roads/{id}", handler.UpdateRoad)

		routerGroup.Get("/slots", handler.GetSlots)
		routerGroup.Get("/slots/{id}", handler.GetSlotByID)
		routerGroup.Put("/slots/{id}", handler.UpdateSlot)
		routerGroup.Delete("/slots/{id}", handler.DeleteSlot)
	})
}

// GetStats counts the rows of every table.
// @Summary Booking statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Data[dto.StatsResponse] "Counts"
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/stats [get]
// @Security BearerAuth
func (handler *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetStats")
	defer scope.End()

	stats, err := handler.booking.Stats(ctx)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, stats)
}

// GetBookings lists every booking.
// @Summary List bookings
// @Tags Admin
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param user_id query string false "Filter by user"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "Bookings"
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{}

	if userID := r.URL.Query().Get(bookingModel.FieldUserID); userID != "" {
		if !shared.IsUUID(userID) {
			err := failure.BadRequestFromString(bookingModel.FieldUserID + " must be a uuid")
			scope.TraceError(err)

			response.WithError(w, err)

			return
		}

		filterGroup = gDto.And(gDto.Filter{
			Field:    bookingModel.FieldUserID,
			Operator: gDto.FilterOperatorEq,
			Value:    userID,
			Table:    bookingModel.TableName,
		})
	}

	bookings, err := handler.booking.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingByID returns a booking with its lines.
// @Summary Get a booking by ID
// @Tags Admin
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingDetailResponse] "Booking details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.booking.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// DeleteBooking releases any booking regardless of its owner.
// @Summary Delete a booking
// @Tags Admin
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.CancelResult] "Booking released"
// @Failure 404 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/admin/bookings/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	res, err := handler.booking.Delete(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", id).Msg("failed to delete booking")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Booking " + id + " deleted by admin " + user)

	response.WithJSON(w, http.StatusOK, res)
}

// GetRoads lists roads.
// @Summary List roads
// @Tags Admin
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param search query string false "Filter by name"
// @Success 200 {object} response.Data[dto.GetRoadsResponse] "Roads"
// @Failure 500 {object} response.Error
// @Router /v1/admin/roads [get]
// @Security BearerAuth
func (handler *Handler) GetRoads(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoads")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.And(gDto.Filter{
		Field:    roadModel.FieldName,
		Operator: gDto.FilterOperatorLike,
		Value:    r.URL.Query().Get(constant.RequestParamSearch),
		Table:    roadModel.TableName,
	})

	roads, err := handler.road.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get roads")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, roads)
}

// GetRoadByID returns one road.
// @Summary Get a road by ID
// @Tags Admin
// @Produce json
// @Param id path string true "Road ID"
// @Success 200 {object} response.Data[dto.RoadResponse] "Road details"
// @Failure 404 {object} response.Error
// @Router /v1/admin/roads/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetRoadByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoadByID")
	defer scope.End()

	road, err := handler.road.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, road)
}

// UpdateRoad sets the hourly capacity new slots of the road are created with.
// @Summary Update road capacity
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Road ID"
// @Param request body dto.UpdateRoadRequest true "New capacity"
// @Success 200 {object} response.Message "Road updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/admin/roads/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateRoad(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRoad")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	var req roadDto.UpdateRoadRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	if err := handler.road.UpdateCapacity(ctx, id, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("road_id", id).Msg("failed to update road")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Road updated successfully")
}

// GetSlots lists ledger rows.
// @Summary List slots
// @Tags Admin
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param road_id query string false "Filter by road"
// @Param date_from query string false "First day, YYYY-MM-DD"
// @Param date_to query string false "Last day, YYYY-MM-DD"
// @Success 200 {object} response.Data[dto.GetSlotsResponse] "Slots"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/slots [get]
// @Security BearerAuth
func (handler *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSlots")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup, err := slotDto.FilterFromRequest(r)
	if err != nil {
		err = failure.BadRequest(err)
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	slots, err := handler.slot.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get slots")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, slots)
}

// GetSlotByID returns one ledger row.
// @Summary Get a slot by ID
// @Tags Admin
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Data[dto.SlotDetailResponse] "Slot details"
// @Failure 404 {object} response.Error
// @Router /v1/admin/slots/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetSlotByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSlotByID")
	defer scope.End()

	slot, err := handler.slot.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, slot)
}

// UpdateSlot changes the capacity of a slot, keeping what is already booked.
// @Summary Update slot capacity
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param request body dto.UpdateSlotRequest true "New capacity"
// @Success 200 {object} response.Message "Slot updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/admin/slots/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateSlot")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	var req slotDto.UpdateSlotRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	if err := handler.slot.UpdateCapacity(ctx, id, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("slot_id", id).Msg("failed to update slot")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Slot updated successfully")
}

// DeleteSlot removes a slot no booking references.
// @Summary Delete a slot
// @Tags Admin
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Message "Slot deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/admin/slots/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteSlot")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.slot.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("slot_id", id).Msg("failed to delete slot")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Slot " + id + " deleted by admin " + user)

	response.WithMessage(w, http.StatusOK, "Slot deleted successfully")
}
