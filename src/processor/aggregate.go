package processor

import (
	"fmt"
	"math"
)

// PeriodAggregate 各时段的平均比率
type PeriodAggregate struct {
	Period             Period `json:"period"`
	IncidentRate       Rate   `json:"incident_rate"`
	FatalAccidentsRate Rate   `json:"fatal_accidents_rate"`
}

// PeriodTotal 各时段的事故总数及占比
type PeriodTotal struct {
	Period                Period `json:"period"`
	Incidents             int64  `json:"incidents"`
	FatalAccidents        int64  `json:"fatal_accidents"`
	Total                 int64  `json:"total"`
	PercOfIncidents       Rate   `json:"perc_of_incidents"`
	PercOfFatalAccidents  Rate   `json:"perc_of_fatal_accidents"`
	DisplayIncidents      string `json:"display_incidents"`
	DisplayFatalAccidents string `json:"display_fatal_accidents"`
}

// PeriodChange 两个时段之间平均比率的变化
type PeriodChange struct {
	Metric    string `json:"metric"`
	Reference Rate   `json:"reference"`
	Value     Rate   `json:"value"`
	Change    Rate   `json:"change"`
}

type meanAcc struct {
	sum float64
	n   int
}

func (a *meanAcc) add(r Rate) {
	if v, ok := r.Value(); ok {
		a.sum += v
		a.n++
	}
}

func (a meanAcc) mean() Rate {
	if a.n == 0 {
		return Undefined()
	}
	return NewRate(a.sum / float64(a.n))
}

// PeriodMeans 按时段计算平均事故率和平均致命事故率
// 无定义的比率不计入分子和分母
func PeriodMeans(long []LongRecord) []PeriodAggregate {
	incident := FamilyIncident.RateMetric()
	fatal := FamilyFatalAccidents.RateMetric()

	seen := make(map[Period]bool)
	inc := make(map[Period]*meanAcc)
	fat := make(map[Period]*meanAcc)
	for _, p := range Periods() {
		inc[p] = &meanAcc{}
		fat[p] = &meanAcc{}
	}

	for _, lr := range long {
		// 未知时段不参与汇总
		if _, ok := inc[lr.Period]; !ok {
			continue
		}
		seen[lr.Period] = true
		switch lr.Metric {
		case incident:
			inc[lr.Period].add(lr.Value)
		case fatal:
			fat[lr.Period].add(lr.Value)
		}
	}

	var out []PeriodAggregate
	for _, p := range Periods() {
		if !seen[p] {
			continue
		}
		out = append(out, PeriodAggregate{
			Period:             p,
			IncidentRate:       inc[p].mean(),
			FatalAccidentsRate: fat[p].mean(),
		})
	}
	return out
}

// PeriodTotals 按时段汇总事故数与致命事故数（只汇总计数，不汇总比率）
func PeriodTotals(long []LongRecord) []PeriodTotal {
	incident := FamilyIncident.CountMetric()
	fatal := FamilyFatalAccidents.CountMetric()

	seen := make(map[Period]bool)
	totals := make(map[Period]*PeriodTotal)
	for _, p := range Periods() {
		totals[p] = &PeriodTotal{Period: p}
	}

	for _, lr := range long {
		t, known := totals[lr.Period]
		if !known {
			continue
		}
		seen[lr.Period] = true
		v, ok := lr.Value.Value()
		if !ok {
			continue
		}
		switch lr.Metric {
		case incident:
			t.Incidents += int64(math.Round(v))
		case fatal:
			t.FatalAccidents += int64(math.Round(v))
		}
	}

	var out []PeriodTotal
	for _, p := range Periods() {
		if !seen[p] {
			continue
		}
		t := totals[p]
		t.Total = t.Incidents + t.FatalAccidents
		if t.Total > 0 {
			t.PercOfIncidents = NewRate(float64(t.Incidents) / float64(t.Total) * 100)
			t.PercOfFatalAccidents = NewRate(float64(t.FatalAccidents) / float64(t.Total) * 100)
		}
		t.DisplayIncidents = displayShare(t.Incidents, t.PercOfIncidents)
		t.DisplayFatalAccidents = displayShare(t.FatalAccidents, t.PercOfFatalAccidents)
		out = append(out, *t)
	}
	return out
}

// displayShare 格式如 "188 - 37%"，百分比四舍六入五成双
func displayShare(sum int64, perc Rate) string {
	v, ok := perc.Value()
	if !ok {
		return fmt.Sprintf("%d - 0%%", sum)
	}
	return fmt.Sprintf("%d - %.0f%%", sum, math.RoundToEven(v))
}

// PeriodMeanChange 以1985-1999为基准，计算2000-2014平均比率的变化百分比
func PeriodMeanChange(means []PeriodAggregate) []PeriodChange {
	var ref, cur *PeriodAggregate
	for i := range means {
		switch means[i].Period {
		case Period8599:
			ref = &means[i]
		case Period0014:
			cur = &means[i]
		}
	}
	if ref == nil || cur == nil {
		return nil
	}
	return []PeriodChange{
		periodChange(FamilyIncident.RateMetric(), ref.IncidentRate, cur.IncidentRate),
		periodChange(FamilyFatalAccidents.RateMetric(), ref.FatalAccidentsRate, cur.FatalAccidentsRate),
	}
}

func periodChange(metric string, ref, cur Rate) PeriodChange {
	return PeriodChange{
		Metric:    metric,
		Reference: ref,
		Value:     cur,
		Change:    percentChange(ref, cur),
	}
}

// percentChange (cur - ref) / ref * 100，任一无定义或基准为0时无定义
func percentChange(ref, cur Rate) Rate {
	r, ok1 := ref.Value()
	c, ok2 := cur.Value()
	if !ok1 || !ok2 {
		return Undefined()
	}
	return NewRate((c - r) / r * 100)
}
