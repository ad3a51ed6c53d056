// tables.go
package processor

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// 以下函数将输出结果转换为DataFrame，供导出和展示层使用
// 无定义的比率写入NaN，在DataFrame中表现为NA

// EnrichedTable 派生宽表，列顺序与原始数据表一致
func EnrichedTable(records []EnrichedRecord) dataframe.DataFrame {
	airlines := make([]string, len(records))
	weekly := make([]int, len(records))
	total := make([]int, len(records))
	for i, r := range records {
		airlines[i] = r.Airline
		weekly[i] = int(r.AvailSeatKmPerWeek)
		total[i] = int(r.AvailSeatKm)
	}

	cols := []series.Series{
		series.New(airlines, series.String, "airline"),
		series.New(weekly, series.Int, "avail_seat_km_per_week"),
	}

	// 宽表列：计数列为整数，比率列为浮点数
	wide := make([][]WideValue, len(records))
	for i, r := range records {
		wide[i] = r.Wide()
	}
	if len(records) > 0 {
		for j, cell := range wide[0] {
			metric, _, _ := ParseColumn(cell.Column)
			if IsRateMetric(metric) {
				vals := make([]float64, len(records))
				for i := range records {
					vals[i] = wide[i][j].Value.Float()
				}
				cols = append(cols, series.New(vals, series.Float, cell.Column))
				continue
			}
			vals := make([]int, len(records))
			for i := range records {
				vals[i] = int(wide[i][j].Value.Float())
			}
			cols = append(cols, series.New(vals, series.Int, cell.Column))
		}
	}
	cols = append(cols, series.New(total, series.Int, "avail_seat_km"))
	return dataframe.New(cols...)
}

// LongTable 长表
func LongTable(long []LongRecord) dataframe.DataFrame {
	n := len(long)
	airlines := make([]string, n)
	ask := make([]int, n)
	periods := make([]string, n)
	metrics := make([]string, n)
	values := make([]float64, n)
	for i, lr := range long {
		airlines[i] = lr.Airline
		ask[i] = int(lr.AvailSeatKm)
		periods[i] = string(lr.Period)
		metrics[i] = lr.Metric
		values[i] = lr.Value.Float()
	}
	return dataframe.New(
		series.New(airlines, series.String, "airline"),
		series.New(ask, series.Int, "avail_seat_km"),
		series.New(periods, series.String, "period"),
		series.New(metrics, series.String, "variable"),
		series.New(values, series.Float, "value"),
	)
}

// PivotTable 每个(航司, 时段)一行
func PivotTable(rows []PeriodRow) dataframe.DataFrame {
	n := len(rows)
	airlines := make([]string, n)
	ask := make([]int, n)
	periods := make([]string, n)
	for i, r := range rows {
		airlines[i] = r.Airline
		ask[i] = int(r.AvailSeatKm)
		periods[i] = string(r.Period)
	}
	cols := []series.Series{
		series.New(airlines, series.String, "airline"),
		series.New(ask, series.Int, "avail_seat_km"),
		series.New(periods, series.String, "period"),
	}
	for _, metric := range BaseMetrics() {
		vals := make([]float64, n)
		for i, r := range rows {
			vals[i] = r.Get(metric).Float()
		}
		cols = append(cols, series.New(vals, series.Float, metric))
	}
	return dataframe.New(cols...)
}

// PeriodMeansTable 时段平均比率
func PeriodMeansTable(means []PeriodAggregate) dataframe.DataFrame {
	periods := make([]string, len(means))
	inc := make([]float64, len(means))
	fat := make([]float64, len(means))
	for i, m := range means {
		periods[i] = string(m.Period)
		inc[i] = m.IncidentRate.Float()
		fat[i] = m.FatalAccidentsRate.Float()
	}
	return dataframe.New(
		series.New(periods, series.String, "period"),
		series.New(inc, series.Float, "incident_rate"),
		series.New(fat, series.Float, "fatal_accidents_rate"),
	)
}

// PeriodTotalsTable 时段总数及占比
func PeriodTotalsTable(totals []PeriodTotal) dataframe.DataFrame {
	n := len(totals)
	periods := make([]string, n)
	inc := make([]int, n)
	fat := make([]int, n)
	total := make([]int, n)
	percInc := make([]float64, n)
	percFat := make([]float64, n)
	dispInc := make([]string, n)
	dispFat := make([]string, n)
	for i, t := range totals {
		periods[i] = string(t.Period)
		inc[i] = int(t.Incidents)
		fat[i] = int(t.FatalAccidents)
		total[i] = int(t.Total)
		percInc[i] = t.PercOfIncidents.Float()
		percFat[i] = t.PercOfFatalAccidents.Float()
		dispInc[i] = t.DisplayIncidents
		dispFat[i] = t.DisplayFatalAccidents
	}
	return dataframe.New(
		series.New(periods, series.String, "period"),
		series.New(inc, series.Int, "incidents"),
		series.New(fat, series.Int, "fatal_accidents"),
		series.New(total, series.Int, "total"),
		series.New(percInc, series.Float, "perc_of_incidents"),
		series.New(percFat, series.Float, "perc_of_fatal_accidents"),
		series.New(dispInc, series.String, "display_incidents"),
		series.New(dispFat, series.String, "display_fatal_accidents"),
	)
}

// RateChangeTable 比率变化表，列名沿用仪表盘表头
func RateChangeTable(rows []RateChangeRow, f Family) dataframe.DataFrame {
	n := len(rows)
	airlines := make([]string, n)
	ref := make([]float64, n)
	cur := make([]float64, n)
	pct := make([]string, n)
	for i, r := range rows {
		airlines[i] = r.Airline
		ref[i] = r.Rate8599
		cur[i] = r.Rate0014
		pct[i] = r.PctChange
	}
	return dataframe.New(
		series.New(airlines, series.String, "airline"),
		series.New(ref, series.Float, Column(f.RateMetric(), Period8599)),
		series.New(cur, series.Float, Column(f.RateMetric(), Period0014)),
		series.New(pct, series.String, f.Title()+" Rate % Change"),
	)
}
