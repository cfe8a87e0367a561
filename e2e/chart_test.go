package e2e

import (
	"encoding/json"
	"net/http"
	"testing"
)

func getChart(t *testing.T, ta *testApp, path string) []map[string]interface{} {
	t.Helper()

	resp, err := doRequest(ta.app, http.MethodGet, path, "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	body := readBody(t, resp)
	var slices []map[string]interface{}
	if err := json.Unmarshal([]byte(body), &slices); err != nil {
		t.Fatalf("failed to parse chart: %v\nbody: %s", err, body)
	}
	return slices
}

func TestChart_Default(t *testing.T) {
	ta := setupApp(t)

	slices := getChart(t, ta, "/api/chart")
	if len(slices) != 5 {
		t.Fatalf("expected 5 slices, got %d", len(slices))
	}
	if slices[0]["name"] != "Unicorn Potential" {
		t.Errorf("expected Unicorn Potential first, got %v", slices[0]["name"])
	}
}

func TestChart_SeededSumsTo100(t *testing.T) {
	ta := setupApp(t)

	slices := getChart(t, ta, "/api/chart?file=Acme_Deck.pdf")

	total := 0.0
	for _, s := range slices {
		total += s["value"].(float64)
	}
	if total != 100 {
		t.Errorf("expected slice values to sum to 100, got %v", total)
	}
}

func TestChart_Deterministic(t *testing.T) {
	ta := setupApp(t)

	a := getChart(t, ta, "/api/chart?file=deck.pdf")
	b := getChart(t, ta, "/api/chart?file=deck.pdf")

	for i := range a {
		if a[i]["value"] != b[i]["value"] {
			t.Errorf("slice %d: expected deterministic value, got %v vs %v", i, a[i]["value"], b[i]["value"])
		}
	}
}
