// Package datasource 读取原始航司安全数据并转换为记录
package datasource

import (
	"AirlineSafety/src/processor"
	"AirlineSafety/src/utils"
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// ErrDataAccess 数据源不可达或结构不符
var ErrDataAccess = errors.New("data access error")

// DataAccessError 启动阶段的致命错误
type DataAccessError struct {
	Source string
	Op     string
	Err    error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Source, e.Err)
}

func (e *DataAccessError) Unwrap() error        { return e.Err }
func (e *DataAccessError) Is(target error) bool { return target == ErrDataAccess }

// NewDataAccessError 包装数据访问错误
func NewDataAccessError(source, op string, err error) error {
	return &DataAccessError{Source: source, Op: op, Err: err}
}

// Loader 从数据源读取原始表
type Loader interface {
	Load(ctx context.Context) (dataframe.DataFrame, error)
	Source() string
}

// 原始表的列
const (
	ColAirline     = "airline"
	ColWeeklySeats = "avail_seat_km_per_week"
)

// CountColumns 六个计数列，顺序与原始表一致
func CountColumns() []string {
	var cols []string
	for _, p := range processor.Periods() {
		for _, f := range processor.Families() {
			cols = append(cols, processor.Column(f.CountMetric(), p))
		}
	}
	return cols
}

// ExpectedColumns 原始表必须包含的全部列
func ExpectedColumns() []string {
	return append([]string{ColAirline, ColWeeklySeats}, CountColumns()...)
}

// Records 将原始表转换为记录
// 除航司名外所有列都强制转换为整数；航司名经 processor.AirlineKey 规范化后作为唯一键
func Records(df dataframe.DataFrame, source string) ([]processor.AirlineRecord, error) {
	if df.Err != nil {
		return nil, NewDataAccessError(source, "read", df.Err)
	}
	if missing := utils.MissingColumns(df, ExpectedColumns()...); len(missing) > 0 {
		return nil, NewDataAccessError(source, "schema", fmt.Errorf("缺少列: %s", strings.Join(missing, ", ")))
	}

	ints := make(map[string][]int64)
	for _, col := range append([]string{ColWeeklySeats}, CountColumns()...) {
		values, err := intColumn(df, col)
		if err != nil {
			return nil, NewDataAccessError(source, "schema", err)
		}
		ints[col] = values
	}
	for i, weekly := range ints[ColWeeklySeats] {
		if _, ok := processor.TotalCapacity(weekly); !ok {
			return nil, NewDataAccessError(source, "schema", fmt.Errorf("列 %s 第%d行超出范围: %d", ColWeeklySeats, i+1, weekly))
		}
	}

	names := df.Col(ColAirline).Records()
	seen := make(map[string]bool, len(names))
	records := make([]processor.AirlineRecord, 0, len(names))
	for i, raw := range names {
		name := processor.AirlineKey(raw)
		if name == "" {
			return nil, NewDataAccessError(source, "schema", fmt.Errorf("第%d行航司名为空", i+1))
		}
		if seen[name] {
			return nil, NewDataAccessError(source, "schema", fmt.Errorf("航司名重复: %q", name))
		}
		seen[name] = true

		cols := CountColumns()
		records = append(records, processor.AirlineRecord{
			Airline:            name,
			AvailSeatKmPerWeek: ints[ColWeeklySeats][i],
			Incidents8599:      ints[cols[0]][i],
			FatalAccidents8599: ints[cols[1]][i],
			Fatalities8599:     ints[cols[2]][i],
			Incidents0014:      ints[cols[3]][i],
			FatalAccidents0014: ints[cols[4]][i],
			Fatalities0014:     ints[cols[5]][i],
		})
	}
	return records, nil
}

func intColumn(df dataframe.DataFrame, col string) ([]int64, error) {
	s := df.Col(col)
	out := make([]int64, s.Len())
	for i := 0; i < s.Len(); i++ {
		el := s.Elem(i)
		if el.IsNA() {
			return nil, fmt.Errorf("列 %s 第%d行为空", col, i+1)
		}
		v, err := parseCount(el.String())
		if err != nil {
			return nil, fmt.Errorf("列 %s 第%d行: %w", col, i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseCount 整数直接解析，浮点数向零截断；超出int64范围的值视为错误
func parseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return v, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("超出整数范围: %q", s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("无法转换为整数: %q", s)
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("超出整数范围: %q", s)
	}
	return int64(f), nil
}
