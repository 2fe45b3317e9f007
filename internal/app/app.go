package app

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/lunch-hockey-rsvp/external/sheets"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/config"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/profile"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/infrastructure/calendar"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/infrastructure/repository/file"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/interfaces/httpapi"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/platform/logging"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/usecase"
)

// App is the wired core shared by the CLI and the local web UI.
type App struct {
	Config     config.Config
	Logger     *logging.Logger
	Profiles   *usecase.ProfileService
	Board      *usecase.BoardService
	Dispatcher *usecase.Dispatcher
	Exporter   *calendar.Exporter
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	client, err := sheets.NewClient(sheets.ClientConfig{
		BaseURL:        cfg.APIBaseURL,
		Timeout:        cfg.APITimeout,
		Logger:         logger.With("component", "sheets"),
		CircuitBreaker: cfg.CircuitBreaker,
	})
	if err != nil {
		return nil, fmt.Errorf("build sheets client: %w", err)
	}

	profileRepo := newProfileRepository(cfg.ProfilePath)
	profileSvc := usecase.NewProfileService(profileRepo)
	boardSvc := usecase.NewBoardService(profileRepo, client, usecase.BoardServiceConfig{
		Schedule:      cfg.Schedule,
		SettleDelay:   cfg.SettleDelay,
		RosterWorkers: cfg.RosterWorkers,
		Logger:        logger.With("component", "board"),
	})

	return &App{
		Config:     cfg,
		Logger:     logger,
		Profiles:   profileSvc,
		Board:      boardSvc,
		Dispatcher: usecase.NewDispatcher(profileSvc, boardSvc, logger),
		Exporter:   calendar.NewExporter(cfg.EventTitle, cfg.EventLocation),
	}, nil
}

// MemoryProfilePath keeps the profile in process memory only, for demos and
// throwaway web UI sessions.
const MemoryProfilePath = ":memory:"

func newProfileRepository(path string) profile.Repository {
	if path == MemoryProfilePath {
		return memory.NewProfileRepository()
	}
	return file.NewProfileRepository(path)
}

func (a *App) NewHTTPServer() (*http.Server, error) {
	if a.Config.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(a.Dispatcher, a.Board, a.Exporter, a.Config.EventTitle, a.Logger)
	router := httpapi.NewRouter(handler, a.Logger.With("component", "httpapi"))

	return &http.Server{
		Addr:         a.Config.HTTPAddr,
		Handler:      router,
		ReadTimeout:  a.Config.ReadTimeout,
		WriteTimeout: a.Config.WriteTimeout,
	}, nil
}
