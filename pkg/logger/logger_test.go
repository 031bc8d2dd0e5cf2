package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInit_Singleton(t *testing.T) {
	var first, second bytes.Buffer
	Init(Options{Level: "info", Output: &first, Service: "task-management"})
	again := Init(Options{Level: "debug", Output: &second})

	again.Info().Msg("hello")

	if second.Len() != 0 {
		t.Fatal("second Init must not replace the logger")
	}
	var entry map[string]any
	if err := json.Unmarshal(first.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, first.String())
	}
	if entry["service"] != "task-management" || entry["message"] != "hello" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNew_Fields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Output: &buf, Service: "task-management", Env: "test"})

	log.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn, got %q", buf.String())
	}

	log.Warn().Msg("kept")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["env"] != "test" || entry["service"] != "task-management" || entry["level"] != "warn" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected a timestamp")
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	e := echo.New()
	e.Use(RequestLogger(log))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/missing", func(c echo.Context) error { return echo.NewHTTPError(http.StatusNotFound, "nope") })

	for _, path := range []string{"/ok", "/missing"} {
		buf.Reset()
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("%s: log line is not JSON: %v (%q)", path, err, buf.String())
		}
		if entry["uri"] != path || entry["method"] != http.MethodGet {
			t.Errorf("%s: unexpected entry %v", path, entry)
		}
		wantLevel := "info"
		if path == "/missing" {
			wantLevel = "warn"
		}
		if entry["level"] != wantLevel {
			t.Errorf("%s: level %v, want %s", path, entry["level"], wantLevel)
		}
	}
}
