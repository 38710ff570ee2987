package http

import (
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

const (
	roomsPath        = "/meeting-rooms/room-category"
	reservationsPath = "/meeting-rooms/reservations"
)

type RouterConfig struct {
	Rooms        *RoomHandler
	Reservations *ReservationHandler
	Health       *HealthHandler
	Logger       *slog.Logger
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	router := httprouter.New()
	responder := newResponder(defaultLogger(cfg.Logger))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responder.writeError(r.Context(), w, http.StatusNotFound, nil)
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responder.writeError(r.Context(), w, http.StatusMethodNotAllowed, nil)
	})

	if cfg.Rooms != nil {
		router.GET(roomsPath, cfg.Rooms.List)
	}

	if cfg.Reservations != nil {
		router.GET(reservationsPath+"/daily", cfg.Reservations.Daily)
		router.GET(reservationsPath+"/monthly", cfg.Reservations.Monthly)
		router.POST(reservationsPath, cfg.Reservations.Create)
		router.PUT(reservationsPath+"/:id", cfg.Reservations.Update)
		router.DELETE(reservationsPath+"/:id", cfg.Reservations.Delete)
	}

	if cfg.Health != nil {
		router.GET("/healthz", cfg.Health.Check)
	}

	var handler http.Handler = router
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}
