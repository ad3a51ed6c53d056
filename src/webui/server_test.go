package webui

import (
	"AirlineSafety/src/config"
	"AirlineSafety/src/datasource"
	"AirlineSafety/src/datasource/db"
	"AirlineSafety/src/processor"
	"AirlineSafety/src/storage"
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

type staticReports struct {
	rep *processor.Report
	err error
}

func (s staticReports) Get(context.Context) (*processor.Report, error) { return s.rep, s.err }

func testRecords() []processor.AirlineRecord {
	return []processor.AirlineRecord{
		{Airline: "Air A", AvailSeatKmPerWeek: 100, Incidents8599: 10, FatalAccidents8599: 1, Incidents0014: 5},
		{Airline: "Air B", AvailSeatKmPerWeek: 250, Incidents8599: 4, FatalAccidents8599: 2, Incidents0014: 8},
		{Airline: "Air C", AvailSeatKmPerWeek: 300, Incidents8599: 3, Incidents0014: 3},
		{Airline: "Air D", AvailSeatKmPerWeek: 310, Incidents8599: 6, Incidents0014: 1},
		{Airline: "Air E", AvailSeatKmPerWeek: 400, Incidents8599: 2, Incidents0014: 2},
	}
}

func newTestServer(t *testing.T, src ReportSource) (*httptest.Server, *storage.Logger) {
	t.Helper()
	logger := storage.Discard()
	cfg := config.Default().Server
	ts := httptest.NewServer(NewServer(src, nil, logger, cfg).Router())
	t.Cleanup(ts.Close)
	return ts, logger
}

func reportSource(t *testing.T) ReportSource {
	t.Helper()
	rep, err := processor.Build(testRecords())
	if err != nil {
		t.Fatal(err)
	}
	return staticReports{rep: rep}
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *APIError       `json:"error"`
}

func get(t *testing.T, ts *httptest.Server, path string, wantStatus int) envelope {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", path, resp.StatusCode, wantStatus)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return env
}

func TestAirlines(t *testing.T) {
	ts, _ := newTestServer(t, reportSource(t))
	env := get(t, ts, "/api/airlines", http.StatusOK)
	var names []string
	if err := json.Unmarshal(env.Data, &names); err != nil {
		t.Fatal(err)
	}
	if len(names) != 5 || names[0] != "Air A" || names[4] != "Air E" {
		t.Errorf("airlines = %v", names)
	}
}

func TestPeersEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, reportSource(t))
	env := get(t, ts, "/api/peers/Air%20C", http.StatusOK)
	var peers []struct {
		Airline string `json:"airline"`
		Rank    int    `json:"rank"`
	}
	if err := json.Unmarshal(env.Data, &peers); err != nil {
		t.Fatal(err)
	}
	want := []string{"Air D", "Air B", "Air E"}
	if len(peers) != len(want) {
		t.Fatalf("peers = %+v", peers)
	}
	for i, p := range peers {
		if p.Airline != want[i] || p.Rank != i+1 {
			t.Errorf("peer %d = %+v, want %s", i, p, want[i])
		}
	}

	env = get(t, ts, "/api/peers/Nowhere", http.StatusNotFound)
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestCompareEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, reportSource(t))
	env := get(t, ts, "/api/compare/incident/Air%20C", http.StatusOK)
	var bars []processorBar
	if err := json.Unmarshal(env.Data, &bars); err != nil {
		t.Fatal(err)
	}
	if len(bars) != 4 || bars[0].Airline != "Air C" || !bars[0].Selected || bars[1].Selected {
		t.Fatalf("bars = %+v", bars)
	}
}

type processorBar struct {
	Airline   string `json:"airline"`
	Selected  bool   `json:"selected"`
	Label8599 string `json:"label_85_99"`
}

func TestRateChangeEndpoints(t *testing.T) {
	ts, _ := newTestServer(t, reportSource(t))

	env := get(t, ts, "/api/rate-change/incident", http.StatusOK)
	var rows []processor.RateChangeRow
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 || rows[0].Airline != "Air B" || rows[0].PctChange != "100.00%" {
		t.Errorf("rows[0] = %+v", rows[0])
	}

	env = get(t, ts, "/api/rate-change/incident/Air%20D", http.StatusOK)
	var row processor.RateChangeRow
	if err := json.Unmarshal(env.Data, &row); err != nil {
		t.Fatal(err)
	}
	if row.PctChange != "-83.33%" {
		t.Errorf("Air D pct = %q", row.PctChange)
	}

	get(t, ts, "/api/rate-change/bogus", http.StatusBadRequest)
	get(t, ts, "/api/rate-change/incident/Nowhere", http.StatusNotFound)
}

func TestTablesEndpoints(t *testing.T) {
	ts, _ := newTestServer(t, reportSource(t))
	for _, path := range []string{
		"/api/enriched", "/api/long", "/api/long/pivot",
		"/api/periods/means", "/api/periods/totals", "/api/periods/change",
		"/api/correlation/fatal_accidents", "/healthz",
	} {
		env := get(t, ts, path, http.StatusOK)
		if env.Status != "ok" || len(env.Data) == 0 {
			t.Errorf("GET %s = %+v", path, env)
		}
	}
}

func TestDataUnavailable(t *testing.T) {
	err := datasource.NewDataAccessError("sqlite:missing", "open", errors.New("no such file"))
	ts, _ := newTestServer(t, staticReports{err: err})
	env := get(t, ts, "/api/airlines", http.StatusServiceUnavailable)
	if env.Error == nil || env.Error.Code != "DATA_UNAVAILABLE" {
		t.Errorf("error = %+v", env.Error)
	}
	get(t, ts, "/healthz", http.StatusServiceUnavailable)
}

func TestLogsStream(t *testing.T) {
	ts, logger := newTestServer(t, reportSource(t))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/logs", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	logger.Info("stream check")
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(line, "stream check") {
		t.Errorf("line = %q", line)
	}
}

func TestPeersTrimmedParam(t *testing.T) {
	ts, _ := newTestServer(t, reportSource(t))
	env := get(t, ts, "/api/peers/%20Air%20C%20", http.StatusOK)
	var peers []struct {
		Airline string `json:"airline"`
	}
	if err := json.Unmarshal(env.Data, &peers); err != nil {
		t.Fatal(err)
	}
	if len(peers) != 3 || peers[0].Airline != "Air D" {
		t.Errorf("peers = %+v", peers)
	}
}

func TestCompareWithSQLitePeers(t *testing.T) {
	ctx := context.Background()
	store, err := db.Open(filepath.Join(t.TempDir(), "airline"), "airline_safety", db.WithCreate())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	stored := testRecords()
	stored[2].Airline = "Air C  "
	if err := store.Seed(ctx, stored); err != nil {
		t.Fatal(err)
	}

	dataset := datasource.NewDataset(store, storage.Discard())
	ts := httptest.NewServer(NewServer(dataset, store, storage.Discard(), config.Default().Server).Router())
	defer ts.Close()

	env := get(t, ts, "/api/compare/incident/Air%20C", http.StatusOK)
	var bars []processorBar
	if err := json.Unmarshal(env.Data, &bars); err != nil {
		t.Fatal(err)
	}
	if len(bars) != 4 || bars[0].Airline != "Air C" {
		t.Errorf("bars = %+v", bars)
	}

	// Air D 的同行里包含库中带空白的 "Air C  "
	env = get(t, ts, "/api/compare/incident/Air%20D", http.StatusOK)
	if err := json.Unmarshal(env.Data, &bars); err != nil {
		t.Fatal(err)
	}
	if len(bars) != 4 || bars[1].Airline != "Air C" {
		t.Errorf("bars = %+v", bars)
	}
}
