package booking

import (
	"net/http"
	"roadbook/infras/otel"
	"roadbook/internal/domains/booking/model/dto"
	"roadbook/internal/domains/booking/service"
	"roadbook/shared/constant"
	"roadbook/shared/validator"
	"roadbook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/mine", handler.GetMyBookings)
		routerGroup.Post("/{id}/cancel", handler.CancelBooking)
	})
}

// CreateBooking reserves every requested slot for the authenticated user.
// @Summary Create a booking
// @Description Book one or more hourly slots on one or more roads. Either every slot is booked or none is.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Booking request"
// @Success 201 {object} response.Data[dto.BookingResult] "Booking created"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	var req dto.CreateBookingRequest
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	res, err := handler.service.Create(ctx, user, req)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("user_id", user).Msg("failed to create booking")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Booking " + res.BookingID + " created by user " + user)

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetMyBookings lists the bookings of the authenticated user, newest first.
// @Summary List my bookings
// @Tags Booking
// @Produce json
// @Success 200 {object} response.Data[[]dto.BookingSummaryResponse] "Bookings of the user"
// @Failure 401 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/bookings/mine [get]
// @Security BearerAuth
func (handler *Handler) GetMyBookings(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyBookings")
	defer scope.End()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	bookings, err := handler.service.ListUserBookings(ctx, user)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("user_id", user).Msg("failed to list bookings")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, bookings)
}

// CancelBooking releases a booking of the authenticated user.
// @Summary Cancel a booking
// @Description Cancel one of your bookings and give its capacity back.
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.CancelResult] "Booking cancelled"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/bookings/{id}/cancel [post]
// @Security BearerAuth
func (handler *Handler) CancelBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelBooking")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)
	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	res, err := handler.service.Cancel(ctx, id, user)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("booking_id", id).Str("user_id", user).Msg("failed to cancel booking")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Booking " + id + " cancelled by user " + user)

	response.WithJSON(writer, http.StatusOK, res)
}
