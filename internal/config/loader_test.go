package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/cardiocare/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CARDIO_ADDR", ":8080")
			_ = os.Setenv("CARDIO_QUEUE_SIZE", "64")
			_ = os.Setenv("CARDIO_WORKER_COUNT", "3")
			_ = os.Setenv("CARDIO_DEFAULT_COUNTRY", "Kenya")
			_ = os.Setenv("CARDIO_PREDICTION_TIMEOUT_MS", "2500")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.DefaultCountry, convey.ShouldEqual, "Kenya")
				convey.So(cfg.PredictionTimeoutMS, convey.ShouldEqual, 2500)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempFile("cardio-config-*.yaml", `
# comment
addr: ":9090"
prediction_url: "http://ml.internal:5000/predict"
tracker_capacity: 20
monitor_window: 30
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("CARDIO_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values override defaults and the rest is kept", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.PredictionURL, convey.ShouldEqual, "http://ml.internal:5000/predict")
				convey.So(cfg.TrackerCapacity, convey.ShouldEqual, 20)
				convey.So(cfg.MonitorWindow, convey.ShouldEqual, 30)
				convey.So(cfg.DefaultCountry, convey.ShouldEqual, "India")
			})
		})

		convey.Convey("When YAML, dotenv and env all set the same keys", func() {
			yamlFile := createTempFile("cardio-config-*.yaml", `
addr: ":9090"
worker_count: 24
queue_size: 300
`)
			defer func() { _ = os.Remove(yamlFile) }()
			dotenvFile := createTempFile("cardio-*.env", `
# local overrides
CARDIO_WORKER_COUNT=12
CARDIO_DEFAULT_COUNTRY="Chile"
UNRELATED_KEY=ignored
`)
			defer func() { _ = os.Remove(dotenvFile) }()

			_ = os.Setenv("CARDIO_CONFIG", yamlFile)
			_ = os.Setenv("CARDIO_DOTENV", dotenvFile)
			_ = os.Setenv("CARDIO_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then precedence is env over dotenv over YAML over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 12)
				convey.So(cfg.DefaultCountry, convey.ShouldEqual, "Chile")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.MonitorIntervalMS, convey.ShouldEqual, 1000)
			})

			convey.Convey("Then the dotenv file does not leak into the process environment", func() {
				_, ok := os.LookupEnv("CARDIO_DEFAULT_COUNTRY")
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempFile("cardio-config-*.yaml", `invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("CARDIO_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the dotenv file does not exist", func() {
			_ = os.Setenv("CARDIO_DOTENV", "/non/existent/.env")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("CARDIO_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("CARDIO_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-positive worker count", func() {
			_ = os.Setenv("CARDIO_WORKER_COUNT", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"CARDIO_CONFIG",
		"CARDIO_DOTENV",
		"CARDIO_ADDR",
		"CARDIO_QUEUE_SIZE",
		"CARDIO_WORKER_COUNT",
		"CARDIO_DEFAULT_COUNTRY",
		"CARDIO_PREDICTION_TIMEOUT_MS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempFile(pattern, content string) string {
	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
