package processor

import (
	"fmt"
	"sort"
)

// Report 一次加载后计算出的全部输出表，数据静态，不再变化
type Report struct {
	Records     []AirlineRecord
	Enriched    []EnrichedRecord
	Long        []LongRecord
	Pivot       []PeriodRow
	Means       []PeriodAggregate
	Totals      []PeriodTotal
	MeanChange  []PeriodChange
	RateChanges map[Family][]RateChangeRow
}

// Build 派生指标 -> 长表 -> 汇总；比率变化直接基于派生结果
func Build(records []AirlineRecord) (*Report, error) {
	enriched := Derive(records)

	long, err := Melt(enriched)
	if err != nil {
		return nil, fmt.Errorf("长表转换失败: %w", err)
	}
	pivot, err := Pivot(long)
	if err != nil {
		return nil, fmt.Errorf("透视失败: %w", err)
	}

	means := PeriodMeans(long)
	rep := &Report{
		Records:     records,
		Enriched:    enriched,
		Long:        long,
		Pivot:       pivot,
		Means:       means,
		Totals:      PeriodTotals(long),
		MeanChange:  PeriodMeanChange(means),
		RateChanges: make(map[Family][]RateChangeRow, len(Families())),
	}
	for _, f := range Families() {
		rep.RateChanges[f] = RateChanges(enriched, f)
	}
	return rep, nil
}

// Airlines 排序后的航司名，供选择器使用
func (r *Report) Airlines() []string {
	names := make([]string, len(r.Records))
	for i, rec := range r.Records {
		names[i] = rec.Airline
	}
	sort.Strings(names)
	return names
}

// Record 按航司名查找派生记录
func (r *Report) Record(airline string) (EnrichedRecord, error) {
	for _, e := range r.Enriched {
		if e.Airline == airline {
			return e, nil
		}
	}
	return EnrichedRecord{}, &NotFoundError{Airline: airline, Op: "record"}
}

// ComparisonBar 对比柱状图中的一个航司
type ComparisonBar struct {
	Airline   string `json:"airline"`
	Selected  bool   `json:"selected"`
	Rate8599  Rate   `json:"rate_85_99"`
	Rate0014  Rate   `json:"rate_00_14"`
	Label8599 string `json:"label_85_99"`
	Label0014 string `json:"label_00_14"`
}

// Comparison 所选航司在前，其后为可比航司，给出两个时段的比率
func (r *Report) Comparison(f Family, airline string, peers []string) ([]ComparisonBar, error) {
	names := append([]string{airline}, peers...)
	bars := make([]ComparisonBar, 0, len(names))
	for i, name := range names {
		rec, err := r.Record(name)
		if err != nil {
			return nil, err
		}
		ref, cur := rec.Rate(Period8599, f), rec.Rate(Period0014, f)
		bars = append(bars, ComparisonBar{
			Airline:   name,
			Selected:  i == 0,
			Rate8599:  ref,
			Rate0014:  cur,
			Label8599: ref.Format(2),
			Label0014: cur.Format(2),
		})
	}
	return bars, nil
}
