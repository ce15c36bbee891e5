package observability

import (
	"fmt"
	"strings"

	"github.com/grafana/pyroscope-go"

	"github.com/riskibarqy/tennis-club/internal/config"
	"github.com/riskibarqy/tennis-club/internal/platform/logging"
)

// InitPyroscope starts continuous profiling when enabled. The returned stop
// func flushes the last upload.
func InitPyroscope(cfg config.Config, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.PyroscopeEnabled {
		logger.Info("pyroscope disabled", "reason", "PYROSCOPE_ENABLED=false")
		return func() error { return nil }, nil
	}

	appName := profilerAppName(cfg)
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   appName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags:              profilerTags(cfg),
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope profiler %s: %w", appName, err)
	}

	logger.Info("pyroscope enabled",
		"server_address", cfg.PyroscopeServerAddress,
		"application", appName,
		"storage", cfg.StorageDriver,
	)

	return profiler.Stop, nil
}

// profilerAppName falls back to the service name and appends the environment
// so stage and prod profiles land in separate applications.
func profilerAppName(cfg config.Config) string {
	name := strings.TrimSpace(cfg.PyroscopeAppName)
	if name == "" {
		name = cfg.ServiceName
	}
	if cfg.AppEnv != "" && !strings.HasSuffix(name, "."+cfg.AppEnv) {
		name += "." + cfg.AppEnv
	}
	return name
}

func profilerTags(cfg config.Config) map[string]string {
	tags := map[string]string{
		"service": cfg.ServiceName,
		"version": cfg.ServiceVersion,
		"storage": cfg.StorageDriver,
	}
	if cfg.ClubLocation != nil {
		tags["club_tz"] = cfg.ClubLocation.String()
	}
	for k, v := range tags {
		if v == "" {
			delete(tags, k)
		}
	}
	return tags
}
