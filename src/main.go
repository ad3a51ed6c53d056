package main

import (
	"AirlineSafety/src/config"
	"AirlineSafety/src/datasource"
	"AirlineSafety/src/datasource/db"
	"AirlineSafety/src/datasource/file"
	"AirlineSafety/src/processor"
	"AirlineSafety/src/storage"
	"AirlineSafety/src/webui"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，默认查找 config.yaml")
	exportOnce := flag.Bool("export", false, "导出一次报表后退出")
	seedCSV := flag.String("seed", "", "从CSV文件导入数据到SQLite后退出")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// 初始化日志系统
	logger, err := storage.NewLoggerWithConfig(cfg.Log)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *seedCSV != "" {
		if err := seed(ctx, cfg.Data, *seedCSV); err != nil {
			logger.Fatal("导入数据失败: " + err.Error())
			os.Exit(1)
		}
		logger.Info("数据已导入: " + cfg.Data.Path)
		return
	}

	loader, peers, closer, err := openSource(cfg.Data)
	if err != nil {
		logger.Fatal("打开数据源失败: " + err.Error())
		os.Exit(1)
	}
	defer closer.Close()

	// 启动时加载数据，数据错误直接退出
	dataset := datasource.NewDataset(loader, logger)
	rep, err := dataset.Get(ctx)
	if err != nil {
		logger.Fatal("加载数据失败: " + err.Error())
		os.Exit(1)
	}

	if *exportOnce {
		path, err := exportReport(rep, cfg.Export.Dir, time.Now())
		if err != nil {
			logger.Fatal("导出报表失败: " + err.Error())
			os.Exit(1)
		}
		logger.Info("报表已导出: " + path)
		return
	}

	// 设置定时任务
	c := cron.New()
	if err := c.AddFunc("@every 1m", func() {
		if err := logger.CheckRotate(cfg); err != nil {
			logger.Error("日志轮转失败: " + err.Error())
		}
	}); err != nil {
		logger.Error("创建日志轮转任务失败: " + err.Error())
	}
	if cfg.Export.Enabled {
		err := c.AddFunc(cfg.Export.Schedule, func() {
			runExport(dataset, cfg.Export.Dir, logger)
		})
		if err != nil {
			logger.Fatal("创建导出任务失败: " + err.Error())
			os.Exit(1)
		}
		logger.Info(fmt.Sprintf("定时导出已启动(%s)", cfg.Export.Schedule))
	}
	c.Start()
	defer c.Stop()

	go reopenOnHangup(ctx, logger, cfg.Log.File)

	if cfg.Watch.Enabled && cfg.Data.Path != ":memory:" {
		watchData(ctx, cfg.Data.Path, logger)
	}

	srv := webui.NewServer(dataset, peers, logger, cfg.Server)
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("HTTP服务异常退出: " + err.Error())
	}
	logger.Info("服务已停止")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openSource 按配置选择数据源
// 返回值:
//
//	datasource.Loader: 原始表读取器
//	processor.PeerFinder: SQLite时在数据库中排名，否则为nil(内存排名)
//	io.Closer: 关闭数据源
func openSource(cfg config.DataConfig) (datasource.Loader, processor.PeerFinder, io.Closer, error) {
	switch cfg.Driver {
	case "sqlite":
		store, err := db.Open(cfg.Path, cfg.Table)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, store, nil
	case "xlsx":
		return file.XLSXLoader{Path: cfg.Path, Sheet: cfg.Sheet, HeaderRow: cfg.HeaderRow}, nil, nopCloser{}, nil
	case "csv":
		return file.CSVLoader{Path: cfg.Path}, nil, nopCloser{}, nil
	}
	return nil, nil, nil, fmt.Errorf("未知的数据源类型: %s", cfg.Driver)
}

// seed 读取CSV并写入SQLite表
func seed(ctx context.Context, cfg config.DataConfig, csvPath string) error {
	l := file.CSVLoader{Path: csvPath}
	df, err := l.Load(ctx)
	if err != nil {
		return err
	}
	records, err := datasource.Records(df, l.Source())
	if err != nil {
		return err
	}

	table := cfg.Table
	if table == "" {
		table = config.Default().Data.Table
	}
	store, err := db.Open(cfg.Path, table, db.WithCreate())
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Seed(ctx, records)
}

// reopenOnHangup 收到SIGHUP后重新打开日志文件，配合外部日志切割
func reopenOnHangup(ctx context.Context, logger *storage.Logger, path string) {
	if path == "" {
		return
	}
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigChan:
			if err := logger.Reopen(path); err != nil {
				log.Println("重新打开日志文件失败:", err)
				continue
			}
			logger.Info("日志文件已重新打开")
		}
	}
}

// watchData 数据集不会重新加载，文件变更只提示重启
func watchData(ctx context.Context, path string, logger *storage.Logger) {
	monitor, err := file.NewFileMonitor(path)
	if err != nil {
		logger.Warning("无法监视数据文件: " + err.Error())
		return
	}
	go func() {
		err := monitor.Watch(ctx, func(name string) {
			logger.Warning(fmt.Sprintf("数据文件已变更: %s，重启服务后生效", name))
		})
		if err != nil {
			logger.Error("数据文件监视异常: " + err.Error())
		}
	}()
}
