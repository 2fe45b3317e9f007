package observability

import (
	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/config"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/platform/logging"
)

// InitPyroscope starts continuous profiling when enabled.
func InitPyroscope(cfg config.Config, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	obs := cfg.Observability
	if !obs.PyroscopeEnabled {
		logger.Debug("pyroscope disabled")
		return func() error { return nil }, nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: obs.PyroscopeAppName,
		ServerAddress:   obs.PyroscopeServerAddress,
		AuthToken:       obs.PyroscopeAuthToken,
		UploadRate:      obs.PyroscopeUploadRate,
		Tags: map[string]string{
			"env":     cfg.AppEnv,
			"service": cfg.ServiceName,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return nil, err
	}

	logger.Info("pyroscope enabled",
		"server_address", obs.PyroscopeServerAddress,
		"application", obs.PyroscopeAppName,
	)

	return profiler.Stop, nil
}
