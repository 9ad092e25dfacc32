package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/intervue/internal/config"
	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/internal/domain/taxonomy"
	"github.com/okian/intervue/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestBuildService(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		c := config.New()
		c.LLMProvider = "mock"

		convey.Convey("When the service is built", func() {
			svc, err := buildService(context.Background(), c, logger.NewNop())
			convey.So(err, convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then it reports the configured stack", func() {
				stats := svc.GetStats(context.Background())
				convey.So(stats["store"], convey.ShouldEqual, "memory")
				convey.So(stats["model"], convey.ShouldEqual, "mock")
				convey.So(stats["workerCount"], convey.ShouldEqual, c.WorkerCount)
			})
		})

		convey.Convey("When the sqlite store is selected", func() {
			c.StoreDriver = "sqlite"
			c.SQLitePath = filepath.Join(t.TempDir(), "progress.db")
			svc, err := buildService(context.Background(), c, logger.NewNop())
			convey.So(err, convey.ShouldBeNil)
			defer svc.Stop()

			res, err := svc.RecordObservation(context.Background(), model.Observation{
				UserID: "u1", DomainKey: "tech", SkillName: "System Design", Score: 80,
			})
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Progress.Categories[0].AverageScore, convey.ShouldEqual, 80.0)
		})

		convey.Convey("When the taxonomy file is missing", func() {
			c.TaxonomyFile = filepath.Join(t.TempDir(), "missing.yaml")
			_, err := buildService(context.Background(), c, logger.NewNop())
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the consistency mode is unknown", func() {
			c.Consistency = "eventual"
			_, err := buildService(context.Background(), c, logger.NewNop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestTaxonomyCommand(t *testing.T) {
	convey.Convey("Given the taxonomy command", t, func() {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs([]string{"taxonomy"})
		defer rootCmd.SetArgs(nil)

		convey.Convey("Then it prints the built-in domains", func() {
			convey.So(rootCmd.Execute(), convey.ShouldBeNil)
			var domains []taxonomy.Domain
			convey.So(json.Unmarshal(out.Bytes(), &domains), convey.ShouldBeNil)
			convey.So(domains, convey.ShouldHaveLength, len(taxonomy.DefaultDomains()))
			convey.So(domains[0].Key, convey.ShouldEqual, "finance")
		})
	})
}

func TestProgressCommand(t *testing.T) {
	convey.Convey("Given a sqlite store", t, func() {
		path := filepath.Join(t.TempDir(), "progress.db")
		t.Setenv(config.EnvPrefix+"STORE_DRIVER", "sqlite")
		t.Setenv(config.EnvPrefix+"SQLITE_PATH", path)
		t.Setenv(config.EnvPrefix+"LLM_PROVIDER", "mock")

		c := config.New()
		c.StoreDriver = "sqlite"
		c.SQLitePath = path
		c.LLMProvider = "mock"
		svc, err := buildService(context.Background(), c, logger.NewNop())
		convey.So(err, convey.ShouldBeNil)
		_, err = svc.RecordObservation(context.Background(), model.Observation{
			UserID: "u1", DomainKey: "hr", SkillName: "Recruitment", Score: 64,
		})
		convey.So(err, convey.ShouldBeNil)
		svc.Stop()

		var out bytes.Buffer
		rootCmd.SetOut(&out)
		defer rootCmd.SetArgs(nil)

		convey.Convey("When the user has progress", func() {
			rootCmd.SetArgs([]string{"progress", "u1"})
			convey.So(rootCmd.Execute(), convey.ShouldBeNil)
			convey.So(out.String(), convey.ShouldContainSubstring, `"Recruitment"`)
		})

		convey.Convey("When the user is unknown", func() {
			rootCmd.SetArgs([]string{"progress", "nobody"})
			convey.So(rootCmd.Execute(), convey.ShouldNotBeNil)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		c := config.New()
		c.LLMProvider = "mock"
		svc, err := buildService(context.Background(), c, logger.NewNop())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		convey.So(func() { updateServiceMetrics(context.Background(), svc) }, convey.ShouldNotPanic)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
	})
}

func TestSetupRejectsInvalidConfig(t *testing.T) {
	convey.Convey("Given an invalid environment", t, func() {
		t.Setenv(config.EnvPrefix+"QUEUE_SIZE", "0")
		_ = os.Unsetenv(config.FileEnv)

		rootCmd.SetArgs([]string{"taxonomy"})
		defer rootCmd.SetArgs(nil)

		convey.So(rootCmd.Execute(), convey.ShouldNotBeNil)
	})
}
