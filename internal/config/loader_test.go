package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/gridiron/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"GRIDIRON_CONFIG",
		"GRIDIRON_ADDR",
		"GRIDIRON_DB_DRIVER",
		"GRIDIRON_K_FACTOR",
		"GRIDIRON_BASE_RATING",
		"GRIDIRON_HOME_ADVANTAGE_ELO",
		"GRIDIRON_MEAN_REVERSION_FACTOR",
		"GRIDIRON_ROLLING_WINDOW_SIZE",
		"GRIDIRON_REPLAY_WORKER_COUNT",
		"GRIDIRON_INDICATOR_LEAGUE",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8090")
				convey.So(cfg.DBDriver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.KFactor, convey.ShouldEqual, 20.0)
				convey.So(cfg.BaseRating, convey.ShouldEqual, 1500.0)
				convey.So(cfg.HomeAdvantageElo, convey.ShouldEqual, 55.0)
				convey.So(cfg.MeanReversionFactor, convey.ShouldEqual, 0.33)
				convey.So(cfg.RollingWindowSize, convey.ShouldEqual, 8)
				convey.So(cfg.IndicatorLeague, convey.ShouldEqual, "NFL")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GRIDIRON_ADDR", ":8191")
			_ = os.Setenv("GRIDIRON_K_FACTOR", "32")
			_ = os.Setenv("GRIDIRON_ROLLING_WINDOW_SIZE", "4")
			_ = os.Setenv("GRIDIRON_INDICATOR_LEAGUE", "NCAA")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8191")
				convey.So(cfg.KFactor, convey.ShouldEqual, 32.0)
				convey.So(cfg.RollingWindowSize, convey.ShouldEqual, 4)
				convey.So(cfg.IndicatorLeague, convey.ShouldEqual, "NCAA")
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			clearConfigEnvVars()

			dir := t.TempDir()
			path := filepath.Join(dir, "gridiron.yaml")
			yaml := "addr: \":9999\"\nk_factor: 24\nmean_reversion_factor: 0.25\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("GRIDIRON_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9999")
				convey.So(cfg.KFactor, convey.ShouldEqual, 24.0)
				convey.So(cfg.MeanReversionFactor, convey.ShouldEqual, 0.25)
			})
		})

		convey.Convey("When the configuration is invalid", func() {
			clearConfigEnvVars()

			convey.Convey("Then a negative window size should fail fast", func() {
				_ = os.Setenv("GRIDIRON_ROLLING_WINDOW_SIZE", "-1")
				defer clearConfigEnvVars()

				cfg, err := config.Load(ctx)
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err, convey.ShouldNotBeNil)
			})

			convey.Convey("Then an out-of-range reversion factor should fail fast", func() {
				_ = os.Setenv("GRIDIRON_MEAN_REVERSION_FACTOR", "1.5")
				defer clearConfigEnvVars()

				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
			})

			convey.Convey("Then an unknown db driver should fail fast", func() {
				_ = os.Setenv("GRIDIRON_DB_DRIVER", "oracle")
				defer clearConfigEnvVars()

				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("Then it should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then a zero k_factor should be rejected", func() {
			cfg.KFactor = 0
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("Then a negative home advantage should be rejected", func() {
			cfg.HomeAdvantageElo = -5
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})
	})
}
