package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerBoardRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /{$}", handler.GetBoard)
	mux.HandleFunc("POST /profile", handler.SaveProfile)
	mux.HandleFunc("POST /sessions/{sessionID}/rsvp", handler.ToggleAttendance)
	mux.HandleFunc("GET /sessions/{sessionID}/attendees", handler.ListAttendees)
	mux.HandleFunc("GET /attendees", handler.ListAllAttendees)
	mux.HandleFunc("GET /calendar.ics", handler.GetCalendar)
}
