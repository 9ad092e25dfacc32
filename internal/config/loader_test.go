package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/intervue/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"INTERVUE_CONFIG", "INTERVUE_ADDR", "INTERVUE_QUEUE_SIZE", "INTERVUE_WORKER_COUNT",
	"INTERVUE_DEDUPE_SIZE", "INTERVUE_STORE_DRIVER", "INTERVUE_DATABASE_URL",
	"INTERVUE_CONSISTENCY", "INTERVUE_SKILL_VALIDATION", "INTERVUE_LLM_REQUESTS_PER_SECOND",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "intervue-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	return f.Name()
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "memory")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("INTERVUE_ADDR", ":8080")
			_ = os.Setenv("INTERVUE_QUEUE_SIZE", "500")
			_ = os.Setenv("INTERVUE_CONSISTENCY", "compare_and_swap")
			_ = os.Setenv("INTERVUE_LLM_REQUESTS_PER_SECOND", "0.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.Consistency, convey.ShouldEqual, "compare_and_swap")
				convey.So(cfg.LLMRequestsPerSecond, convey.ShouldEqual, 0.5)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
worker_count: 3
store_driver: sqlite
sqlite_path: /tmp/progress.db
skill_validation: permissive
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("INTERVUE_CONFIG", tmpFile)
			_ = os.Setenv("INTERVUE_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "/tmp/progress.db")
				convey.So(cfg.SkillValidation, convey.ShouldEqual, "permissive")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("INTERVUE_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a value has the wrong type", func() {
			_ = os.Setenv("INTERVUE_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the result does not validate", func() {
			_ = os.Setenv("INTERVUE_STORE_DRIVER", "postgres")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)

			_ = os.Setenv("INTERVUE_DATABASE_URL", "postgres://db/intervue")
			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.DatabaseURL, convey.ShouldEqual, "postgres://db/intervue")
		})
	})
}
