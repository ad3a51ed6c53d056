package processor

import (
	"fmt"
	"regexp"
	"strings"
)

// 宽表列名：基础指标名 + 时段后缀，如 fatal_accidents_rate_00_14
var wideColumn = regexp.MustCompile(`^([a-z_]+?)_([0-9]{2}_[0-9]{2})$`)

// LongRecord 长表中的一行：(航司, 时段, 指标) 对应一个数值
type LongRecord struct {
	Airline     string `json:"airline"`
	AvailSeatKm int64  `json:"avail_seat_km"`
	Period      Period `json:"period"`
	Metric      string `json:"metric"`
	Value       Rate   `json:"value"`
}

// PeriodRow 透视后的行，每个(航司, 时段)一行，每个基础指标一列
type PeriodRow struct {
	Airline     string          `json:"airline"`
	AvailSeatKm int64           `json:"avail_seat_km"`
	Period      Period          `json:"period"`
	Values      map[string]Rate `json:"values"`
}

// Get 取某个基础指标的值
func (r PeriodRow) Get(metric string) Rate {
	return r.Values[metric]
}

// IsRateMetric 判断基础指标是否为比率类
func IsRateMetric(metric string) bool {
	return strings.HasSuffix(metric, "_rate")
}

// BaseMetrics 计数类在前，比率类在后
func BaseMetrics() []string {
	var metrics []string
	for _, f := range Families() {
		metrics = append(metrics, f.CountMetric())
	}
	for _, f := range Families() {
		metrics = append(metrics, f.RateMetric())
	}
	return metrics
}

// ParseColumn 将宽表列名拆成(基础指标, 时段)
func ParseColumn(name string) (string, Period, error) {
	m := wideColumn.FindStringSubmatch(name)
	if m == nil {
		return "", "", &columnError{name: name, err: ErrUnknownColumn}
	}
	p, err := PeriodFromSuffix(m[2])
	if err != nil {
		return "", "", err
	}
	if !knownMetric(m[1]) {
		return "", "", &columnError{name: name, err: ErrUnknownColumn}
	}
	return m[1], p, nil
}

func knownMetric(metric string) bool {
	for _, b := range BaseMetrics() {
		if b == metric {
			return true
		}
	}
	return false
}

// Melt 将宽表转换为长表
// 计数与比率两类指标放在同一张长表中，通过Metric区分
func Melt(records []EnrichedRecord) ([]LongRecord, error) {
	out := make([]LongRecord, 0, len(records)*len(Periods())*len(BaseMetrics()))
	for _, r := range records {
		for _, cell := range r.Wide() {
			metric, period, err := ParseColumn(cell.Column)
			if err != nil {
				return nil, fmt.Errorf("melt %s: %w", r.Airline, err)
			}
			out = append(out, LongRecord{
				Airline:     r.Airline,
				AvailSeatKm: r.AvailSeatKm,
				Period:      period,
				Metric:      metric,
				Value:       cell.Value,
			})
		}
	}
	return out, nil
}

// Pivot 按(航司, 时段)分组，将键值对还原为每个基础指标一列
// 时段按先后排序，同一时段内航司保持首次出现的顺序
func Pivot(long []LongRecord) ([]PeriodRow, error) {
	type key struct {
		airline string
		period  Period
	}
	index := make(map[key]int)
	byPeriod := make(map[Period][]PeriodRow)

	for _, lr := range long {
		k := key{lr.Airline, lr.Period}
		rows := byPeriod[lr.Period]
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, PeriodRow{
				Airline:     lr.Airline,
				AvailSeatKm: lr.AvailSeatKm,
				Period:      lr.Period,
				Values:      make(map[string]Rate),
			})
			byPeriod[lr.Period] = rows
		}
		if _, dup := rows[i].Values[lr.Metric]; dup {
			return nil, fmt.Errorf("%w: %s/%s/%s", ErrDuplicateKey, lr.Airline, lr.Period, lr.Metric)
		}
		rows[i].Values[lr.Metric] = lr.Value
	}

	out := make([]PeriodRow, 0, len(index))
	for _, p := range Periods() {
		out = append(out, byPeriod[p]...)
	}
	return out, nil
}
