package datasource

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

func frame(rows ...[]string) dataframe.DataFrame {
	cols := ExpectedColumns()
	values := make([][]string, len(cols))
	for _, row := range rows {
		for i := range cols {
			values[i] = append(values[i], row[i])
		}
	}
	list := make([]series.Series, len(cols))
	for i, name := range cols {
		list[i] = series.New(values[i], series.String, name)
	}
	return dataframe.New(list...)
}

func TestRecordsCoercion(t *testing.T) {
	df := frame(
		[]string{"Alaska Airlines*", "965346773", "5", "0", "0", "5", "1", "88"},
		[]string{" Avianca ", "396922563.0", "5.9", "3", "323", "0", "0", "0"},
	)
	records, err := Records(df, "test")
	if err != nil {
		t.Fatal(err)
	}
	if records[1].Airline != "Avianca" {
		t.Errorf("name not trimmed: %q", records[1].Airline)
	}
	if records[1].AvailSeatKmPerWeek != 396922563 || records[1].Incidents8599 != 5 {
		t.Errorf("coercion = %+v", records[1])
	}
	if records[0].Fatalities0014 != 88 {
		t.Errorf("record = %+v", records[0])
	}
}

func TestRecordsNormalizesNames(t *testing.T) {
	// e + 组合重音符 与 é 视为同一航司
	df := frame(
		[]string{"Aerolin\u00e9", "1", "0", "0", "0", "0", "0", "0"},
		[]string{"Aerolin\u0065\u0301", "2", "0", "0", "0", "0", "0", "0"},
	)
	_, err := Records(df, "test")
	if !errors.Is(err, ErrDataAccess) {
		t.Fatalf("err = %v, want duplicate rejected", err)
	}
}

func TestRecordsBadValue(t *testing.T) {
	df := frame([]string{"X", "many", "0", "0", "0", "0", "0", "0"})
	if _, err := Records(df, "test"); !errors.Is(err, ErrDataAccess) {
		t.Fatalf("err = %v, want ErrDataAccess", err)
	}
	df = frame([]string{"X", "NaN", "0", "0", "0", "0", "0", "0"})
	if _, err := Records(df, "test"); !errors.Is(err, ErrDataAccess) {
		t.Fatalf("err = %v, want ErrDataAccess for missing value", err)
	}
	df = frame([]string{"X", "1", "1e20", "0", "0", "0", "0", "0"})
	if _, err := Records(df, "test"); !errors.Is(err, ErrDataAccess) {
		t.Fatalf("err = %v, want ErrDataAccess for oversized count", err)
	}
	// 周容量乘以780后溢出
	df = frame([]string{"X", "20000000000000000", "0", "0", "0", "0", "0", "0"})
	if _, err := Records(df, "test"); !errors.Is(err, ErrDataAccess) {
		t.Fatalf("err = %v, want ErrDataAccess for oversized capacity", err)
	}
}

func TestRecordsMissingColumns(t *testing.T) {
	df := dataframe.New(series.New([]string{"X"}, series.String, "airline"))
	_, err := Records(df, "test")
	var dae *DataAccessError
	if !errors.As(err, &dae) || dae.Op != "schema" {
		t.Fatalf("err = %v, want schema DataAccessError", err)
	}
}

func TestParseCount(t *testing.T) {
	tests := map[string]int64{"12": 12, "12.9": 12, "-3.5": -3, "3.2e+08": 320000000}
	for in, want := range tests {
		got, err := parseCount(in)
		if err != nil || got != want {
			t.Errorf("parseCount(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"Inf", "1e20", "-1e30", "9223372036854775808", "9.3e18"} {
		if v, err := parseCount(in); err == nil {
			t.Errorf("parseCount(%q) = %d, want error", in, v)
		}
	}
}

type countingLoader struct {
	calls atomic.Int32
	df    dataframe.DataFrame
	err   error
}

func (l *countingLoader) Load(context.Context) (dataframe.DataFrame, error) {
	l.calls.Add(1)
	return l.df, l.err
}

func (l *countingLoader) Source() string { return "memory" }

func TestDatasetLoadsOnce(t *testing.T) {
	l := &countingLoader{df: frame(
		[]string{"A", "100", "1", "0", "0", "2", "0", "0"},
		[]string{"B", "200", "3", "1", "5", "0", "0", "0"},
	)}
	d := NewDataset(l, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := d.Get(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if n := l.calls.Load(); n != 1 {
		t.Errorf("loader called %d times", n)
	}
	rep, _ := d.Get(context.Background())
	if got := rep.Airlines(); len(got) != 2 || got[0] != "A" {
		t.Errorf("Airlines = %v", got)
	}
}

func TestDatasetLoadError(t *testing.T) {
	l := &countingLoader{err: NewDataAccessError("memory", "open", errors.New("boom"))}
	d := NewDataset(l, nil)
	for i := 0; i < 2; i++ {
		if _, err := d.Get(context.Background()); !errors.Is(err, ErrDataAccess) {
			t.Fatalf("err = %v", err)
		}
	}
	if n := l.calls.Load(); n != 1 {
		t.Errorf("loader called %d times", n)
	}
}
