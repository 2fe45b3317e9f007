package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/infrastructure/calendar"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/platform/logging"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const noticeProfileSaved = "saved"

type Handler struct {
	dispatcher *usecase.Dispatcher
	board      *usecase.BoardService
	exporter   *calendar.Exporter
	title      string
	logger     *logging.Logger
	validator  *validator.Validate
}

func NewHandler(
	dispatcher *usecase.Dispatcher,
	board *usecase.BoardService,
	exporter *calendar.Exporter,
	title string,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(title) == "" {
		title = "Lunchtime Hockey"
	}

	return &Handler{
		dispatcher: dispatcher,
		board:      board,
		exporter:   exporter,
		title:      title,
		logger:     logger,
		validator:  validator.New(),
	}
}

type sessionPathRequest struct {
	SessionID string `validate:"required,datetime=2006-01-02"`
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBoard")
	defer span.End()

	result, err := h.dispatcher.Dispatch(ctx, usecase.RefreshEvents{})
	if err != nil {
		h.logger.WarnContext(ctx, "refresh board failed", "error", err)
	}

	if wantsJSON(r) {
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		writeSuccess(ctx, w, http.StatusOK, toBoardDTO(*result.Board))
		return
	}

	page := h.newPage(*result.Board)
	if r.URL.Query().Get("notice") == noticeProfileSaved {
		page.Notice = "Profile saved!"
	}
	h.renderBoard(ctx, w, http.StatusOK, page)
}

func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveProfile")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		h.failBoard(ctx, w, r, fmt.Errorf("%w: invalid form body", usecase.ErrInvalidInput), profileForm{})
		return
	}

	form := profileForm{
		First:    r.PostForm.Get("first"),
		Last:     r.PostForm.Get("last"),
		Position: r.PostForm.Get("pos"),
	}
	result, err := h.dispatcher.Dispatch(ctx, usecase.SaveProfile{
		First:    form.First,
		Last:     form.Last,
		Position: form.Position,
	})
	if err != nil {
		h.failBoard(ctx, w, r, err, form)
		return
	}

	if wantsJSON(r) {
		writeSuccess(ctx, w, http.StatusOK, toProfileDTO(*result.Profile))
		return
	}
	http.Redirect(w, r, "/?notice="+noticeProfileSaved, http.StatusSeeOther)
}

func (h *Handler) ToggleAttendance(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToggleAttendance")
	defer span.End()

	req := sessionPathRequest{SessionID: strings.TrimSpace(r.PathValue("sessionID"))}
	if err := h.validateRequest(ctx, req); err != nil {
		h.failBoard(ctx, w, r, err, profileForm{})
		return
	}

	result, err := h.dispatcher.Dispatch(ctx, usecase.ToggleAttendance{SessionID: req.SessionID})
	if err != nil {
		h.failBoard(ctx, w, r, err, profileForm{})
		return
	}

	if wantsJSON(r) {
		writeSuccess(ctx, w, http.StatusOK, toBoardDTO(*result.Board))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAttendees")
	defer span.End()

	req := sessionPathRequest{SessionID: strings.TrimSpace(r.PathValue("sessionID"))}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.dispatcher.Dispatch(ctx, usecase.ViewRoster{SessionID: req.SessionID})
	if err != nil {
		h.logger.WarnContext(ctx, "list attendees failed", "session_id", req.SessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toRosterDTO(*result.Roster))
}

// ListAllAttendees returns every upcoming roster. Partial failures still
// answer 200; the failed sessions carry their own message.
func (h *Handler) ListAllAttendees(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAllAttendees")
	defer span.End()

	result, err := h.dispatcher.Dispatch(ctx, usecase.ViewAllRosters{})
	if err != nil {
		h.logger.WarnContext(ctx, "list all attendees failed", "error", err)
		if result.Rosters == nil {
			writeError(ctx, w, err)
			return
		}
	}

	out := rosterListDTO{Rosters: make([]rosterDTO, 0, len(result.Rosters))}
	for _, roster := range result.Rosters {
		out.Rosters = append(out.Rosters, toRosterDTO(roster))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCalendar")
	defer span.End()

	sessions, err := h.board.UpcomingSessions()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := h.exporter.Write(buf, sessions); err != nil {
		h.logger.ErrorContext(ctx, "export calendar failed", "error", err)
		writeInternalError(ctx, w)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="lunch-hockey.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.B)
}

// failBoard answers a failed form action: JSON clients get the error envelope,
// browsers get the board re-rendered from cached state with the message shown.
func (h *Handler) failBoard(ctx context.Context, w http.ResponseWriter, r *http.Request, err error, form profileForm) {
	if wantsJSON(r) {
		writeError(ctx, w, err)
		return
	}

	board, boardErr := h.board.Current(ctx)
	if boardErr != nil {
		h.logger.WarnContext(ctx, "load cached board failed", "error", boardErr)
	}

	page := h.newPage(board)
	page.Error = err.Error()
	if form != (profileForm{}) {
		page.Form = form
	}
	h.renderBoard(ctx, w, mapError(ctx, err).HTTPStatus, page)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
