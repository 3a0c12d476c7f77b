package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/bgg-stats/internal/config"
	"github.com/Sternrassler/bgg-stats/internal/testutil"
	"github.com/Sternrassler/bgg-stats/pkg/client"
	"github.com/Sternrassler/bgg-stats/pkg/stats"
	json "github.com/goccy/go-json"
)

func setupCatalog(t *testing.T) *testutil.MockCatalog {
	t.Helper()

	mock := testutil.NewMockCatalog()
	t.Cleanup(mock.Close)

	mock.AddGame(
		testutil.MockGame{ID: "13", Name: "Catan", Year: "1995", Categories: []string{"Negotiation", "Economic"}, Mechanics: []string{"Dice Rolling", "Trading"}},
		testutil.MockGame{ID: "822", Name: "Carcassonne", Year: "2000", Categories: []string{"Medieval"}, Mechanics: []string{"Tile Placement"}},
		testutil.MockGame{ID: "30549", Name: "Pandemic", Year: "2008", Categories: []string{"Medical"}, Mechanics: []string{"Cooperative Game", "Hand Management"}},
	)
	mock.SetCollection("alice", "13", "822")
	mock.SetCollection("bob", "30549", "13")

	t.Setenv("BGGSTATS_BGG_BASE_URL", mock.URL())
	t.Setenv("BGGSTATS_BGG_REQUEST_PAUSE", "1ms")
	t.Setenv("BGGSTATS_BGG_QUEUED_RETRY_PAUSE", "1ms")
	t.Setenv("BGGSTATS_CONFIG", "")

	return mock
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.Execute()
	return stdout.String(), err
}

func TestCategories(t *testing.T) {
	setupCatalog(t)

	out, err := run(t, "categories", "alice")
	if err != nil {
		t.Fatalf("categories error = %v", err)
	}

	for _, want := range []string{"alice: 2 games", "Negotiation", "Economic", "Medieval"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMechanics_JSON(t *testing.T) {
	setupCatalog(t)

	out, err := run(t, "mechanics", "alice", "--json", "--top", "2")
	if err != nil {
		t.Fatalf("mechanics error = %v", err)
	}

	var report stats.AggregateReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if report.Username != "alice" || report.TotalItems != 2 {
		t.Errorf("report = %+v", report)
	}
	if len(report.Top) != 2 {
		t.Errorf("top has %d entries, want 2", len(report.Top))
	}
	if len(report.Entries) != 3 {
		t.Errorf("entries has %d entries, want 3", len(report.Entries))
	}
}

func TestCategories_Members(t *testing.T) {
	setupCatalog(t)

	out, err := run(t, "categories", "alice", "--members")
	if err != nil {
		t.Fatalf("categories error = %v", err)
	}
	if !strings.Contains(out, "Carcassonne") {
		t.Errorf("output missing member names:\n%s", out)
	}
}

func TestYears(t *testing.T) {
	setupCatalog(t)

	out, err := run(t, "years", "alice", "--json")
	if err != nil {
		t.Fatalf("years error = %v", err)
	}

	var report stats.YearReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(report.Series) != 2000-1995+1 {
		t.Errorf("series length = %d, want 6", len(report.Series))
	}
}

func TestYears_Text(t *testing.T) {
	setupCatalog(t)

	out, err := run(t, "years", "alice")
	if err != nil {
		t.Fatalf("years error = %v", err)
	}
	for _, year := range []string{"1995", "1996", "1999", "2000"} {
		if !strings.Contains(out, year) {
			t.Errorf("output missing year %s:\n%s", year, out)
		}
	}
}

func TestRadar(t *testing.T) {
	setupCatalog(t)

	out, err := run(t, "radar", "alice", "--json")
	if err != nil {
		t.Fatalf("radar error = %v", err)
	}

	var c stats.Comparison
	if err := json.Unmarshal([]byte(out), &c); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	want := []string{"Dice Rolling", "Tile Placement", "Trading"}
	if strings.Join(c.Labels, "|") != strings.Join(want, "|") {
		t.Errorf("labels = %v, want %v", c.Labels, want)
	}
	if len(c.Datasets) != 1 || c.Datasets[0].Values[0] != 50 {
		t.Errorf("datasets = %+v", c.Datasets)
	}
}

func TestVersus(t *testing.T) {
	setupCatalog(t)

	out, err := run(t, "versus", "alice", "bob")
	if err != nil {
		t.Fatalf("versus error = %v", err)
	}
	for _, want := range []string{"MECHANIC", "alice", "bob", "Cooperative Game", "50.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestArgsValidation(t *testing.T) {
	setupCatalog(t)

	tests := [][]string{
		{"categories"},
		{"versus", "alice"},
		{"radar", "a", "b"},
		{"categories", "alice", "--top", "-1"},
		{"categories", "alice", "--log-level", "loud"},
	}
	for _, args := range tests {
		if _, err := run(t, args...); err == nil {
			t.Errorf("run(%v) expected error", args)
		}
	}
}

func TestFetchFailure(t *testing.T) {
	mock := setupCatalog(t)
	mock.SetResponse("/collection", testutil.NewServerErrorResponse())

	_, err := run(t, "categories", "alice")
	if !errors.Is(err, client.ErrTransportFailure) {
		t.Errorf("error = %v, want transport failure", err)
	}
}

func TestServe_Shutdown(t *testing.T) {
	setupCatalog(t)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	cfg.Server.Addr = "127.0.0.1:0"

	a, err := newApp(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, a) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve() did not return after cancel")
	}
}
