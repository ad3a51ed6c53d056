// data.go
package processor

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// 容量与比率换算常量
const (
	WeeksPerYear   = 52
	YearsObserved  = 15
	CapacityFactor = WeeksPerYear * YearsObserved // 780，15年运营
	RateScale      = 1e12                         // 每万亿可用座公里
	PeerCount      = 3

	// MaxWeeklyCapacity 乘以CapacityFactor后不溢出int64的最大周容量
	MaxWeeklyCapacity = math.MaxInt64 / CapacityFactor
)

// AirlineKey 航司名的唯一键：去掉首尾空白并做NFC规范化
// 加载、查询和数据库排名结果都经过这里
func AirlineKey(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// TotalCapacity 15年总可用座公里；周容量为负或相乘溢出时返回false
func TotalCapacity(weekly int64) (int64, bool) {
	if weekly < 0 || weekly > MaxWeeklyCapacity {
		return 0, false
	}
	return weekly * CapacityFactor, true
}

// Period 统计时段
type Period string

const (
	Period8599 Period = "1985-1999"
	Period0014 Period = "2000-2014"
)

// Periods 按时间先后返回全部时段
func Periods() []Period {
	return []Period{Period8599, Period0014}
}

// Suffix 返回宽表列名中的时段后缀
func (p Period) Suffix() string {
	switch p {
	case Period8599:
		return "85_99"
	case Period0014:
		return "00_14"
	}
	return ""
}

// PeriodFromSuffix 将列名后缀映射为展示用时段
func PeriodFromSuffix(suffix string) (Period, error) {
	switch suffix {
	case "85_99":
		return Period8599, nil
	case "00_14":
		return Period0014, nil
	}
	return "", &columnError{name: suffix, err: ErrUnknownPeriod}
}

// Family 事故类别
type Family string

const (
	FamilyIncident       Family = "incident"
	FamilyFatalAccidents Family = "fatal_accidents"
	FamilyFatalities     Family = "fatalities"
)

// Families 全部事故类别
func Families() []Family {
	return []Family{FamilyIncident, FamilyFatalAccidents, FamilyFatalities}
}

// ParseFamily 解析事故类别
func ParseFamily(s string) (Family, error) {
	for _, f := range Families() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", &columnError{name: s, err: ErrUnknownFamily}
}

// CountMetric 返回计数列的基础名
func (f Family) CountMetric() string {
	switch f {
	case FamilyIncident:
		return "incidents"
	case FamilyFatalAccidents:
		return "fatal_accidents"
	case FamilyFatalities:
		return "fatalities"
	}
	return ""
}

// Title 表头用的类别名，如 "Fatal Accidents"
func (f Family) Title() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(f), "_", " "))
}

// RateMetric 返回比率列的基础名
func (f Family) RateMetric() string {
	if f == "" {
		return ""
	}
	return string(f) + "_rate"
}

// Column 返回宽表列名，如 incident_rate_85_99
func Column(metric string, p Period) string {
	return metric + "_" + p.Suffix()
}

// Rate 可选的数值；容量为0时比率无定义
type Rate struct {
	value float64
	valid bool
}

// NewRate 非有限值(NaN/Inf)视为无定义
func NewRate(v float64) Rate {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Rate{}
	}
	return Rate{value: v, valid: true}
}

// Undefined 无定义的比率
func Undefined() Rate { return Rate{} }

func (r Rate) Value() (float64, bool) { return r.value, r.valid }
func (r Rate) Valid() bool            { return r.valid }

// Float 无定义时返回NaN，用于写入DataFrame
func (r Rate) Float() float64 {
	if !r.valid {
		return math.NaN()
	}
	return r.value
}

// Format 按指定小数位格式化，无定义时返回空串
func (r Rate) Format(prec int) string {
	if !r.valid {
		return ""
	}
	return strconv.FormatFloat(r.value, 'f', prec, 64)
}

// MarshalJSON 无定义的比率输出为null
func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, r.value, 'g', -1, 64), nil
}

// AirlineRecord 原始航司记录，加载后不可变
type AirlineRecord struct {
	Airline            string `json:"airline"`
	AvailSeatKmPerWeek int64  `json:"avail_seat_km_per_week"`
	Incidents8599      int64  `json:"incidents_85_99"`
	FatalAccidents8599 int64  `json:"fatal_accidents_85_99"`
	Fatalities8599     int64  `json:"fatalities_85_99"`
	Incidents0014      int64  `json:"incidents_00_14"`
	FatalAccidents0014 int64  `json:"fatal_accidents_00_14"`
	Fatalities0014     int64  `json:"fatalities_00_14"`
}

// Count 按时段与类别取计数
func (r AirlineRecord) Count(p Period, f Family) int64 {
	switch p {
	case Period8599:
		switch f {
		case FamilyIncident:
			return r.Incidents8599
		case FamilyFatalAccidents:
			return r.FatalAccidents8599
		case FamilyFatalities:
			return r.Fatalities8599
		}
	case Period0014:
		switch f {
		case FamilyIncident:
			return r.Incidents0014
		case FamilyFatalAccidents:
			return r.FatalAccidents0014
		case FamilyFatalities:
			return r.Fatalities0014
		}
	}
	return 0
}

// EnrichedRecord 原始记录加派生指标
type EnrichedRecord struct {
	AirlineRecord
	AvailSeatKm            int64 `json:"avail_seat_km"`
	IncidentRate8599       Rate  `json:"incident_rate_85_99"`
	FatalAccidentsRate8599 Rate  `json:"fatal_accidents_rate_85_99"`
	FatalitiesRate8599     Rate  `json:"fatalities_rate_85_99"`
	IncidentRate0014       Rate  `json:"incident_rate_00_14"`
	FatalAccidentsRate0014 Rate  `json:"fatal_accidents_rate_00_14"`
	FatalitiesRate0014     Rate  `json:"fatalities_rate_00_14"`
}

// Rate 按时段与类别取比率
func (r EnrichedRecord) Rate(p Period, f Family) Rate {
	switch p {
	case Period8599:
		switch f {
		case FamilyIncident:
			return r.IncidentRate8599
		case FamilyFatalAccidents:
			return r.FatalAccidentsRate8599
		case FamilyFatalities:
			return r.FatalitiesRate8599
		}
	case Period0014:
		switch f {
		case FamilyIncident:
			return r.IncidentRate0014
		case FamilyFatalAccidents:
			return r.FatalAccidentsRate0014
		case FamilyFatalities:
			return r.FatalitiesRate0014
		}
	}
	return Undefined()
}

// WideValue 宽表中的一个单元格
type WideValue struct {
	Column string
	Value  Rate
}

// Wide 按原始宽表列顺序展开计数列和比率列
func (r EnrichedRecord) Wide() []WideValue {
	cols := make([]WideValue, 0, 12)
	for _, p := range Periods() {
		for _, f := range Families() {
			cols = append(cols, WideValue{
				Column: Column(f.CountMetric(), p),
				Value:  NewRate(float64(r.Count(p, f))),
			})
		}
	}
	for _, p := range Periods() {
		for _, f := range Families() {
			cols = append(cols, WideValue{
				Column: Column(f.RateMetric(), p),
				Value:  r.Rate(p, f),
			})
		}
	}
	return cols
}
