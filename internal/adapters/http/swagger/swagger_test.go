package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRegister(t *testing.T) {
	Convey("Given a mux with the docs routes", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		Convey("The OpenAPI document describes every route group", func() {
			w := get(DocumentPath)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "application/yaml; charset=utf-8")
			body := w.Body.String()
			So(body, ShouldStartWith, "openapi: 3.0.3")
			for _, route := range []string{"/observations:", "/progress/{userId}:", "/evaluate-answer:", "/parse-document:"} {
				So(body, ShouldContainSubstring, route)
			}
		})

		Convey("The docs page loads the document through ReDoc", func() {
			w := get(DocsPath)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, RedocURL)
			So(w.Body.String(), ShouldContainSubstring, "Redoc.init('"+DocumentPath+"'")
		})

		Convey("Other methods are refused", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, DocumentPath, http.NoBody))
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})

	Convey("A nil mux panics", t, func() {
		So(func() { Register(context.Background(), nil) }, ShouldPanic)
	})
}
