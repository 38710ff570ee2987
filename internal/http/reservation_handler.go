package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/example/meeting-rooms/internal/application"
)

// WallClockLayout is the wire format for reservation times.
const WallClockLayout = "2006-01-02 15:04"

type reservationService interface {
	ListDailyReservations(ctx context.Context, params application.DailyReservationsParams) ([]application.Reservation, error)
	ListMonthlyReservations(ctx context.Context, params application.MonthlyReservationsParams) ([]application.Reservation, error)
	CreateReservation(ctx context.Context, params application.CreateReservationParams) (application.Reservation, error)
	ModifyReservation(ctx context.Context, params application.ModifyReservationParams) (application.Reservation, error)
	DeleteReservation(ctx context.Context, params application.DeleteReservationParams) error
}

type ReservationHandler struct {
	service   reservationService
	location  *time.Location
	validator *requestValidator
	responder responder
	logger    *slog.Logger
}

// NewReservationHandler builds the reservation endpoints. Wire times are read and
// written in location.
func NewReservationHandler(service reservationService, location *time.Location, logger *slog.Logger) *ReservationHandler {
	base := defaultLogger(logger)
	if location == nil {
		location = time.Local
	}
	return &ReservationHandler{
		service:   service,
		location:  location,
		validator: newRequestValidator(),
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *ReservationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReservationHandler", operation, attrs...)
}

type reservationRequest struct {
	UserID    string `json:"user_id" validate:"required,max=64,identifier"`
	RoomCode  string `json:"room_code" validate:"required,max=32,identifier"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// times parses both bounds. A malformed value is an invalid time range.
func (req reservationRequest) times(loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(WallClockLayout, strings.TrimSpace(req.StartTime), loc)
	if err != nil {
		return time.Time{}, time.Time{}, application.ErrInvalidTimeRange
	}
	end, err := time.ParseInLocation(WallClockLayout, strings.TrimSpace(req.EndTime), loc)
	if err != nil {
		return time.Time{}, time.Time{}, application.ErrInvalidTimeRange
	}
	return start, end, nil
}

type reservationDTO struct {
	ReservationID int64  `json:"reservation_id"`
	UserName      string `json:"user_name"`
	RoomCode      string `json:"room_code"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

func (h *ReservationHandler) toDTO(r application.Reservation) reservationDTO {
	return reservationDTO{
		ReservationID: r.ID,
		UserName:      r.UserName,
		RoomCode:      r.RoomCode,
		StartTime:     r.Start.In(h.location).Format(WallClockLayout),
		EndTime:       r.End.In(h.location).Format(WallClockLayout),
	}
}

func (h *ReservationHandler) toDTOs(reservations []application.Reservation) []reservationDTO {
	out := make([]reservationDTO, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, h.toDTO(r))
	}
	return out
}

// decode reads and validates a reservation body, writing the error response itself.
func (h *ReservationHandler) decode(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (reservationRequest, time.Time, time.Time, bool) {
	ctx := r.Context()

	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.With("error_kind", "bad_request").WarnContext(ctx, "failed to decode reservation request", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return req, time.Time{}, time.Time{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		logger.With("error_kind", application.ErrorKind(err)).WarnContext(ctx, "invalid reservation request", "error", err)
		h.responder.handleServiceError(ctx, w, err)
		return req, time.Time{}, time.Time{}, false
	}
	start, end, err := req.times(h.location)
	if err != nil {
		logger.With("error_kind", application.ErrorKind(err)).WarnContext(ctx, "malformed reservation times",
			"start_time", req.StartTime, "end_time", req.EndTime)
		h.responder.handleServiceError(ctx, w, err)
		return req, time.Time{}, time.Time{}, false
	}
	return req, start, end, true
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Create")
	req, start, end, ok := h.decode(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With("user_id", req.UserID, "room_code", req.RoomCode)

	reservation, err := h.service.CreateReservation(r.Context(), application.CreateReservationParams{
		UserID:   req.UserID,
		RoomCode: req.RoomCode,
		Start:    start,
		End:      end,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("reservation_id", reservation.ID).InfoContext(r.Context(), "reservation created")
	w.Header().Set("Location", "/meeting-rooms/reservations/"+strconv.FormatInt(reservation.ID, 10))
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, h.toDTO(reservation))
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := parseReservationID(ps.ByName("id"))
	if !ok {
		h.log(r.Context(), "Update", "error_kind", "bad_request").WarnContext(r.Context(), "invalid reservation id", "id", ps.ByName("id"))
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	logger := h.log(r.Context(), "Update", "reservation_id", id)
	req, start, end, ok := h.decode(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With("user_id", req.UserID, "room_code", req.RoomCode)

	reservation, err := h.service.ModifyReservation(r.Context(), application.ModifyReservationParams{
		ReservationID: id,
		UserID:        req.UserID,
		RoomCode:      req.RoomCode,
		Start:         start,
		End:           end,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, h.toDTO(reservation))
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := parseReservationID(ps.ByName("id"))
	if !ok {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").WarnContext(r.Context(), "invalid reservation id", "id", ps.ByName("id"))
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	requester := strings.TrimSpace(r.URL.Query().Get("userId"))
	logger := h.log(r.Context(), "Delete", "reservation_id", id, "requester_id", requester)

	if err := h.service.DeleteReservation(r.Context(), application.DeleteReservationParams{
		ReservationID: id,
		RequesterID:   requester,
	}); err != nil {
		logger.ErrorContext(r.Context(), "reservation deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ReservationHandler) Daily(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	roomCode := strings.TrimSpace(query.Get("roomCd"))
	logger := h.log(r.Context(), "Daily", "room_code", roomCode)

	if err := h.validator.Var("roomCd", roomCode, "required,max=32,identifier"); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	date, ok := parseDate(query.Get("date"), h.location)
	if !ok {
		logger.With("error_kind", "bad_request").WarnContext(r.Context(), "invalid date parameter", "date", query.Get("date"))
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	reservations, err := h.service.ListDailyReservations(r.Context(), application.DailyReservationsParams{
		RoomCode: roomCode,
		Date:     date,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "daily listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, h.toDTOs(reservations))
}

func (h *ReservationHandler) Monthly(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	roomCode := strings.TrimSpace(query.Get("roomCd"))
	logger := h.log(r.Context(), "Monthly", "room_code", roomCode)

	if err := h.validator.Var("roomCd", roomCode, "required,max=32,identifier"); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	month, ok := parseMonth(query.Get("date"), h.location)
	if !ok {
		logger.With("error_kind", "bad_request").WarnContext(r.Context(), "invalid month parameter", "date", query.Get("date"))
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMonth)
		return
	}

	reservations, err := h.service.ListMonthlyReservations(r.Context(), application.MonthlyReservationsParams{
		RoomCode: roomCode,
		Year:     month.Year(),
		Month:    month.Month(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "monthly listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, h.toDTOs(reservations))
}

func parseReservationID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseDate(raw string, loc *time.Location) (time.Time, bool) {
	return parseFirst(strings.TrimSpace(raw), loc, "20060102", "2006-01-02")
}

func parseMonth(raw string, loc *time.Location) (time.Time, bool) {
	return parseFirst(strings.TrimSpace(raw), loc, "200601", "2006-01")
}

func parseFirst(raw string, loc *time.Location, layouts ...string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
