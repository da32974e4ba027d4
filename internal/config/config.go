package config

import (
	"os"
	"strconv"

	"kpi-master/internal/errors"
	"kpi-master/internal/models"
)

// Config holds the process configuration. The reporting period and data
// directory drive the batch computation; the rest configures serving.
type Config struct {
	Port            string
	DataDir         string
	Period          models.Period
	ForecastHorizon int
	ForecastWindow  int
	TopN            int
	// RefreshSchedule is a cron expression for periodic recomputation.
	// Empty disables scheduled refresh; POST /api/refresh still works.
	RefreshSchedule string
}

// Load builds a Config from environment variables with defaults matching
// the reference dataset's 2023 reporting year.
func Load() (*Config, error) {
	start, err := models.ParseDate(getEnv("START_DATE", "2023-01-01"))
	if err != nil {
		return nil, &errors.ErrValidation{Field: "START_DATE", Message: err.Error()}
	}
	end, err := models.ParseDate(getEnv("END_DATE", "2023-12-31"))
	if err != nil {
		return nil, &errors.ErrValidation{Field: "END_DATE", Message: err.Error()}
	}
	if end.Before(start) {
		return nil, &errors.ErrValidation{Field: "END_DATE", Message: "must not be before START_DATE"}
	}

	horizon, err := getEnvInt("FORECAST_HORIZON", 30)
	if err != nil {
		return nil, err
	}
	window, err := getEnvInt("FORECAST_WINDOW", 30)
	if err != nil {
		return nil, err
	}
	topN, err := getEnvInt("TOP_N", 5)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:            getEnv("SERVER_PORT", "8080"),
		DataDir:         getEnv("DATA_DIR", "./data"),
		Period:          models.Period{Start: start, End: end},
		ForecastHorizon: horizon,
		ForecastWindow:  window,
		TopN:            topN,
		RefreshSchedule: os.Getenv("REFRESH_SCHEDULE"),
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, &errors.ErrValidation{Field: key, Message: "must be a positive integer"}
	}
	return n, nil
}
