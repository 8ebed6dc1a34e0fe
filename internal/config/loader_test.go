package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/specious/internal/config"
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
			_ = os.Setenv("SPECIOUS_ADDR", ":8080")
			_ = os.Setenv("SPECIOUS_RESET_ON_MISS", "false")
			_ = os.Setenv("SPECIOUS_MAX_SESSIONS", "50")
			_ = os.Setenv("SPECIOUS_PROVIDER_BASE_URL", "http://localhost:4000/v1")
			_ = os.Setenv("SPECIOUS_PROVIDER_TIMEOUT_MS", "2500")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ResetOnMiss, convey.ShouldBeFalse)
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 50)
				convey.So(cfg.ProviderBaseURL, convey.ShouldEqual, "http://localhost:4000/v1")
				convey.So(cfg.ProviderTimeoutMS, convey.ShouldEqual, 2500)
				convey.So(cfg.ProviderMaxPage, convey.ShouldEqual, 500)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# scoring
addr: ":9090"
reset_on_miss: false
provider_max_page: 100
autocomplete_limit: 5
log_level: debug
log_json: true
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SPECIOUS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ResetOnMiss, convey.ShouldBeFalse)
				convey.So(cfg.ProviderMaxPage, convey.ShouldEqual, 100)
				convey.So(cfg.AutocompleteLimit, convey.ShouldEqual, 5)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.LogJSON, convey.ShouldBeTrue)
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 10_000) // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nprovider_max_page: 100\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SPECIOUS_CONFIG", tmpFile)
			_ = os.Setenv("SPECIOUS_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ProviderMaxPage, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SPECIOUS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SPECIOUS_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SPECIOUS_MAX_SESSIONS", "lots")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given config values that fail validation", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		cases := []struct {
			name, env, value, message string
		}{
			{"empty addr", "SPECIOUS_ADDR", "", "addr must not be empty"},
			{"negative idle ttl", "SPECIOUS_SESSION_IDLE_TTL_SECONDS", "-5", "session_idle_ttl_seconds"},
			{"zero timeout", "SPECIOUS_PROVIDER_TIMEOUT_MS", "0", "provider_timeout_ms"},
			{"negative max page", "SPECIOUS_PROVIDER_MAX_PAGE", "-1", "provider_max_page"},
			{"zero suggestions", "SPECIOUS_AUTOCOMPLETE_LIMIT", "0", "autocomplete_limit"},
			{"relative base url", "SPECIOUS_PROVIDER_BASE_URL", "/v1", "provider_base_url"},
		}

		for _, tc := range cases {
			convey.Convey("When "+tc.name, func() {
				_ = os.Setenv(tc.env, tc.value)
				defer clearConfigEnvVars()

				cfg, err := config.Load(ctx)

				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, tc.message)
				convey.So(cfg, convey.ShouldBeNil)
			})
		}
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"SPECIOUS_CONFIG",
		"SPECIOUS_ADDR",
		"SPECIOUS_LOG_LEVEL",
		"SPECIOUS_LOG_JSON",
		"SPECIOUS_RESET_ON_MISS",
		"SPECIOUS_SESSION_IDLE_TTL_SECONDS",
		"SPECIOUS_MAX_SESSIONS",
		"SPECIOUS_PROVIDER_BASE_URL",
		"SPECIOUS_PROVIDER_TIMEOUT_MS",
		"SPECIOUS_PROVIDER_MAX_PAGE",
		"SPECIOUS_AUTOCOMPLETE_LIMIT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "specious-config-*.yaml")
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
