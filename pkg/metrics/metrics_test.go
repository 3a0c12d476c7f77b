package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	// register collectors
	_ "github.com/Sternrassler/bgg-stats/pkg/client"
	_ "github.com/Sternrassler/bgg-stats/pkg/collection"
	_ "github.com/Sternrassler/bgg-stats/pkg/ratelimit"
)

func TestRegistry(t *testing.T) {
	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
	if Gatherer != prometheus.DefaultGatherer {
		t.Error("Gatherer should be the default Prometheus gatherer")
	}
}

// Unlabelled collectors are exported as soon as their package is linked.
func TestUnlabelledCollectorsRegistered(t *testing.T) {
	families, err := Gatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}

	for _, name := range []string{
		"bgg_queued_retry_exhausted_total",
		"bgg_pacer_wait_seconds",
		"bgg_batches_total",
		"bgg_items_folded_total",
	} {
		if !names[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestCatalogueUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, name := range Catalogue {
		if !strings.HasPrefix(name, "bgg_") {
			t.Errorf("metric %s lacks bgg_ prefix", name)
		}
		if seen[name] {
			t.Errorf("metric %s listed twice", name)
		}
		seen[name] = true
	}
}

func TestHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "bgg_batches_total") {
		t.Error("metrics output missing bgg_batches_total")
	}
}
