package datasource

import (
	"AirlineSafety/src/metrics"
	"AirlineSafety/src/processor"
	"AirlineSafety/src/storage"
	"context"
	"fmt"
	"sync"
	"time"
)

// Dataset 进程内共享的只读数据集
// 首次访问时加载并计算，之后不再失效（原始数据是静态的）
type Dataset struct {
	loader Loader
	logger *storage.Logger

	once   sync.Once
	report *processor.Report
	err    error
}

func NewDataset(loader Loader, logger *storage.Logger) *Dataset {
	if logger == nil {
		logger = storage.Discard()
	}
	return &Dataset{loader: loader, logger: logger}
}

// Get 返回计算好的输出表；加载失败时每次都返回同一个错误
func (d *Dataset) Get(ctx context.Context) (*processor.Report, error) {
	d.once.Do(func() {
		d.report, d.err = d.load(ctx)
	})
	return d.report, d.err
}

// Source 数据源标识
func (d *Dataset) Source() string {
	return d.loader.Source()
}

func (d *Dataset) load(ctx context.Context) (*processor.Report, error) {
	t1 := time.Now()
	source := d.loader.Source()

	df, err := d.loader.Load(ctx)
	if err != nil {
		metrics.DatasetLoads.WithLabelValues("error").Inc()
		return nil, err
	}
	records, err := Records(df, source)
	if err != nil {
		metrics.DatasetLoads.WithLabelValues("error").Inc()
		return nil, err
	}

	report, err := processor.Build(records)
	if err != nil {
		metrics.DatasetLoads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("数据处理失败: %w", err)
	}

	elapsed := time.Since(t1)
	metrics.DatasetLoads.WithLabelValues("ok").Inc()
	metrics.DatasetAirlines.Set(float64(len(records)))
	metrics.PipelineDuration.Observe(elapsed.Seconds())
	d.logger.Zero().Info().
		Str("source", source).
		Int("airlines", len(records)).
		Dur("elapsed", elapsed).
		Msg("数据加载完成")
	return report, nil
}
