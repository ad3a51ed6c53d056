package main

import (
	"AirlineSafety/src/datasource"
	"AirlineSafety/src/metrics"
	"AirlineSafety/src/processor"
	"AirlineSafety/src/storage"
	"AirlineSafety/src/utils"
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// reportSheets 输出表按固定顺序排列，每个表一个工作表
func reportSheets(rep *processor.Report) []utils.Sheet {
	sheets := []utils.Sheet{
		{Name: "enriched", DF: processor.EnrichedTable(rep.Enriched)},
		{Name: "long", DF: processor.LongTable(rep.Long)},
		{Name: "long_pivot", DF: processor.PivotTable(rep.Pivot)},
		{Name: "period_means", DF: processor.PeriodMeansTable(rep.Means)},
		{Name: "period_totals", DF: processor.PeriodTotalsTable(rep.Totals)},
	}
	for _, f := range processor.Families() {
		sheets = append(sheets, utils.Sheet{
			Name: f.RateMetric() + "_change",
			DF:   processor.RateChangeTable(rep.RateChanges[f], f),
		})
	}
	return sheets
}

// exportReport 导出报表，文件名带时间戳
func exportReport(rep *processor.Report, dir string, now time.Time) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("airline_safety_%s.xlsx", now.Format("20060102_150405")))
	if err := utils.SaveWorkbook(path, reportSheets(rep)...); err != nil {
		return "", err
	}
	return path, nil
}

func runExport(dataset *datasource.Dataset, dir string, logger *storage.Logger) {
	t1 := time.Now()
	rep, err := dataset.Get(context.Background())
	if err != nil {
		metrics.ExportRuns.WithLabelValues("error").Inc()
		logger.Error("导出报表失败: " + err.Error())
		return
	}
	path, err := exportReport(rep, dir, t1)
	if err != nil {
		metrics.ExportRuns.WithLabelValues("error").Inc()
		logger.Error("导出报表失败: " + err.Error())
		return
	}
	metrics.ExportRuns.WithLabelValues("ok").Inc()
	logger.Info(fmt.Sprintf("报表已导出: %s (%v)", path, time.Since(t1)))
}
