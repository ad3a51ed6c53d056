package processor

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// RateChangeRow 某航司两个时段之间比率的变化
type RateChangeRow struct {
	Airline   string  `json:"airline"`
	Rate8599  float64 `json:"rate_85_99"`
	Rate0014  float64 `json:"rate_00_14"`
	Change    float64 `json:"-"`
	PctChange string  `json:"pct_change"`
}

// RateChanges 计算每个航司的比率变化百分比并按数值降序排列
// 任一比率无定义或基准为0的行被丢弃
func RateChanges(records []EnrichedRecord, f Family) []RateChangeRow {
	rows := make([]RateChangeRow, 0, len(records))
	for _, r := range records {
		ref, cur := r.Rate(Period8599, f), r.Rate(Period0014, f)
		change, ok := percentChange(ref, cur).Value()
		if !ok {
			continue
		}
		rows = append(rows, RateChangeRow{
			Airline:  r.Airline,
			Rate8599: ref.Float(),
			Rate0014: cur.Float(),
			Change:   change,
		})
	}

	// 先按数值排序再格式化，格式化后的字符串不能用来排序
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Change > rows[j].Change
	})
	for i := range rows {
		rows[i].PctChange = fmt.Sprintf("%.2f%%", rows[i].Change)
	}
	return rows
}

// FindRateChange 在结果中查找指定航司
func FindRateChange(rows []RateChangeRow, airline string) (RateChangeRow, error) {
	for _, r := range rows {
		if r.Airline == airline {
			return r, nil
		}
	}
	return RateChangeRow{}, &NotFoundError{Airline: airline, Op: "rate change"}
}

// Correlation 两个时段比率的皮尔逊相关系数，只使用两者都有定义的航司
func Correlation(records []EnrichedRecord, f Family) Rate {
	var x, y []float64
	for _, r := range records {
		a, ok1 := r.Rate(Period8599, f).Value()
		b, ok2 := r.Rate(Period0014, f).Value()
		if ok1 && ok2 {
			x = append(x, a)
			y = append(y, b)
		}
	}
	if len(x) < 2 {
		return Undefined()
	}
	return NewRate(stat.Correlation(x, y, nil))
}
