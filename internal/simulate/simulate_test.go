package simulate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/intervue/internal/adapters/http/api"
	service "github.com/okian/intervue/internal/app"
	"github.com/okian/intervue/internal/simulate"
	"github.com/okian/intervue/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestRun(t *testing.T) {
	Convey("Given a running service", t, func() {
		svc := service.New()
		mux := http.NewServeMux()
		api.NewServer(svc).Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When a simulation runs against it", func() {
			stats, err := simulate.Run(context.Background(), &simulate.Config{
				BaseURL:      srv.URL,
				Users:        5,
				Observations: 200,
				Workers:      4,
				Timeout:      5 * time.Second,
				UnknownRatio: 0.1,
				Seed:         42,
			})

			Convey("Then every document is consistent", func() {
				So(err, ShouldBeNil)
				So(stats.Submitted, ShouldEqual, 200)
				So(stats.Successful, ShouldEqual, 200)
				So(stats.UsersChecked, ShouldBeGreaterThan, 0)
				So(stats.Inconsistency, ShouldBeEmpty)
				So(stats.OK(), ShouldBeTrue)
			})
		})

		Convey("When the configuration is empty", func() {
			_, err := simulate.Run(context.Background(), &simulate.Config{BaseURL: srv.URL})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given no service", t, func() {
		_, err := simulate.Run(context.Background(), &simulate.Config{
			BaseURL: "http://127.0.0.1:1", Users: 1, Observations: 1, Workers: 1, Timeout: time.Second,
		})
		So(err, ShouldNotBeNil)
	})
}
