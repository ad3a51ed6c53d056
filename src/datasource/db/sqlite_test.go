package db

import (
	"AirlineSafety/src/datasource"
	"AirlineSafety/src/processor"
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func fixture() []processor.AirlineRecord {
	return []processor.AirlineRecord{
		{Airline: "A", AvailSeatKmPerWeek: 100, Incidents8599: 2, FatalAccidents8599: 1, Fatalities8599: 10, Incidents0014: 1},
		{Airline: "B", AvailSeatKmPerWeek: 250, Incidents8599: 4},
		{Airline: "C", AvailSeatKmPerWeek: 300, Incidents8599: 1, Fatalities0014: 3},
		{Airline: "D", AvailSeatKmPerWeek: 310},
		{Airline: "E", AvailSeatKmPerWeek: 400, FatalAccidents0014: 2},
		{Airline: "Ghost Air", AvailSeatKmPerWeek: 0, Incidents0014: 5},
	}
}

func seeded(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "airline")
	s, err := Open(path, "airline_safety", WithCreate())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Seed(context.Background(), fixture()); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"), "airline_safety")
	if !errors.Is(err, datasource.ErrDataAccess) {
		t.Fatalf("err = %v, want ErrDataAccess", err)
	}
}

func TestOpenBadTable(t *testing.T) {
	_, err := Open(":memory:", "airline_safety; DROP TABLE x")
	if !errors.Is(err, ErrBadTable) {
		t.Fatalf("err = %v, want ErrBadTable", err)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	s := seeded(t)
	df, err := s.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if df.Nrow() != len(fixture()) {
		t.Fatalf("Nrow = %d", df.Nrow())
	}
	records, err := datasource.Records(df, s.Source())
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range fixture() {
		if records[i] != want {
			t.Errorf("row %d = %+v, want %+v", i, records[i], want)
		}
	}
}

func TestLoadMissingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airline")
	s, err := Open(path, "airline_safety", WithCreate())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.Load(context.Background()); !errors.Is(err, datasource.ErrDataAccess) {
		t.Fatalf("err = %v, want ErrDataAccess", err)
	}
}

func TestPeers(t *testing.T) {
	s := seeded(t)
	peers, err := s.Peers(context.Background(), "C")
	if err != nil {
		t.Fatal(err)
	}
	got := processor.PeerNames(peers)
	want := []string{"D", "B", "E"}
	for i := range want {
		if got[i] != want[i] || peers[i].Rank != i+1 {
			t.Fatalf("peers = %v, want %v", got, want)
		}
	}
}

func TestPeersMatchMemory(t *testing.T) {
	s := seeded(t)
	mem := processor.MemoryPeers{Records: fixture()}
	ctx := context.Background()

	for _, r := range fixture() {
		sqlPeers, err := s.Peers(ctx, r.Airline)
		if err != nil {
			t.Fatalf("%s: %v", r.Airline, err)
		}
		memPeers, err := mem.Peers(ctx, r.Airline)
		if err != nil {
			t.Fatalf("%s: %v", r.Airline, err)
		}
		if len(sqlPeers) != len(memPeers) {
			t.Fatalf("%s: %d vs %d peers", r.Airline, len(sqlPeers), len(memPeers))
		}
		for i := range sqlPeers {
			if sqlPeers[i].Airline != memPeers[i].Airline || sqlPeers[i].Distance.Valid() != memPeers[i].Distance.Valid() {
				t.Errorf("%s rank %d: sql %+v, memory %+v", r.Airline, i+1, sqlPeers[i], memPeers[i])
			}
		}
	}
}

func TestPeersNotFound(t *testing.T) {
	s := seeded(t)
	_, err := s.Peers(context.Background(), "Nowhere Air")
	if !errors.Is(err, processor.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPeersUntrimmedStoredName(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "airline")
	s, err := Open(path, "airline_safety", WithCreate())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	stored := []processor.AirlineRecord{
		{Airline: "Aer Lingus ", AvailSeatKmPerWeek: 100, Incidents8599: 2},
		{Airline: "B", AvailSeatKmPerWeek: 120, Incidents8599: 1},
		{Airline: "C", AvailSeatKmPerWeek: 130},
		{Airline: "D", AvailSeatKmPerWeek: 400},
	}
	if err := s.Seed(ctx, stored); err != nil {
		t.Fatal(err)
	}

	df, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	records, err := datasource.Records(df, s.Source())
	if err != nil {
		t.Fatal(err)
	}
	rep, err := processor.Build(records)
	if err != nil {
		t.Fatal(err)
	}
	mem := processor.MemoryPeers{Records: rep.Records}

	for _, name := range rep.Airlines() {
		peers, err := s.Peers(ctx, name)
		if err != nil {
			t.Fatalf("Peers(%q): %v", name, err)
		}
		want, _ := mem.Peers(ctx, name)
		got := processor.PeerNames(peers)
		for i := range want {
			if got[i] != want[i].Airline {
				t.Errorf("Peers(%q) = %q, want %q", name, got, processor.PeerNames(want))
				break
			}
		}
		if _, err := rep.Comparison(processor.FamilyIncident, name, got); err != nil {
			t.Errorf("Comparison(%q): %v", name, err)
		}
	}

	if _, err := s.Peers(ctx, " Aer Lingus"); err != nil {
		t.Errorf("lookup with surrounding space: %v", err)
	}
}
