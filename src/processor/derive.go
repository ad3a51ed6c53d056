package processor

// Derive 计算15年总可用座公里及六个比率列
// 总容量为0时比率为无定义，由下游过滤，不视为错误
// 周容量超出范围时按0处理
func Derive(records []AirlineRecord) []EnrichedRecord {
	out := make([]EnrichedRecord, 0, len(records))
	for _, r := range records {
		total, _ := TotalCapacity(r.AvailSeatKmPerWeek)
		out = append(out, EnrichedRecord{
			AirlineRecord:          r,
			AvailSeatKm:            total,
			IncidentRate8599:       perTrillion(r.Incidents8599, total),
			FatalAccidentsRate8599: perTrillion(r.FatalAccidents8599, total),
			FatalitiesRate8599:     perTrillion(r.Fatalities8599, total),
			IncidentRate0014:       perTrillion(r.Incidents0014, total),
			FatalAccidentsRate0014: perTrillion(r.FatalAccidents0014, total),
			FatalitiesRate0014:     perTrillion(r.Fatalities0014, total),
		})
	}
	return out
}

func perTrillion(count, total int64) Rate {
	if total <= 0 {
		return Undefined()
	}
	return NewRate(RateScale * float64(count) / float64(total))
}
