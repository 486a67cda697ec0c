package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron"

	"FlightWeatherQuality/src/config"
	"FlightWeatherQuality/src/datasource/email"
	"FlightWeatherQuality/src/datasource/file"
	"FlightWeatherQuality/src/processor"
	"FlightWeatherQuality/src/storage"
)

func main() {
	jsonFolder := "./config"
	jsonFile := "config.json"
	dataJsonFile := "dataconfig.json"
	cfg, dcfg, err := config.LoadConfig(jsonFolder, jsonFile, dataJsonFile)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// 初始化日志系统
	logger, err := storage.NewLogger(cfg.LogName)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Close()

	pipe := processor.NewPipeline(cfg, dcfg, logger)

	switch cfg.RunMode {
	case "cron":
		runScheduled(pipe, cfg, logger)
	case "watch":
		runWatched(pipe, cfg, dcfg, logger)
	default:
		if err := runOnce(pipe, cfg, logger); err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
	}
}

// runOnce 单次运行：可选地先从邮箱拉批次文件，然后跑一遍流水线
func runOnce(pipe *processor.Pipeline, cfg *config.Config, logger *storage.Logger) error {
	if cfg.Email.Enabled {
		ingestFromMailbox(pipe, cfg, logger)
	}

	t1 := time.Now()
	res, err := pipe.Run()
	if err != nil {
		return fmt.Errorf("流水线运行失败: %w", err)
	}
	logger.Info(fmt.Sprintf("数据处理时间：%v", time.Since(t1)))

	if cfg.SendEmail.Enabled {
		body := fmt.Sprintf("航班总数: %d\n匹配: %d\n未匹配: %d\n匹配率: %.2f%%\n",
			res.Summary.Total, res.Summary.Matched, res.Summary.Unmatched, res.Summary.MatchRate)
		attachments := []string{
			filepath.Join(cfg.OutputDir, "flight_quality.xlsx"),
			filepath.Join(cfg.OutputDir, "weather_quality.xlsx"),
		}
		if err := email.SendSummary(cfg, body, attachments); err != nil {
			logger.Error("发送合并摘要失败: " + err.Error())
		}
	}

	logger.CheckRotate(cfg.LogMaxSize)
	return nil
}

// ingestFromMailbox 从邮箱拉取批次文件附件到输入目录
func ingestFromMailbox(pipe *processor.Pipeline, cfg *config.Config, logger *storage.Logger) {
	emailClient := email.NewEmailClient(
		cfg.Email.Server,
		cfg.Email.Username,
		cfg.Email.Password)

	handler := email.NewBatchAttachmentHandler(
		cfg.FlightDir, cfg.WeatherDir,
		pipe.Dcfg.FlightPattern, pipe.Dcfg.WxPattern)

	emails, err := email.CheckAndProcessEmails(emailClient, cfg.Email.TargetSubject, logger)
	if err != nil {
		logger.Error("检查处理邮件失败: " + err.Error())
		return
	}
	for _, e := range emails {
		if err := handler.Handle(e, logger); err != nil {
			logger.Error(fmt.Sprintf("处理邮件失败(UID:%d): %v", e.UID, err))
		}
	}
}

// runScheduled cron定时运行
func runScheduled(pipe *processor.Pipeline, cfg *config.Config, logger *storage.Logger) {
	c := cron.New()

	interval := time.Duration(cfg.CheckInterval).String() // 例如 "5m0s"
	cronSpec := fmt.Sprintf("@every %s", interval)

	err := c.AddFunc(cronSpec, func() {
		logger.Info(fmt.Sprintf("开始定时运行(间隔: %v)...", cronSpec))
		if err := runOnce(pipe, cfg, logger); err != nil {
			logger.Error(err.Error())
		}
	})
	if err != nil {
		logger.Error("创建定时任务失败: " + err.Error())
		return
	}

	c.Start()
	defer c.Stop()

	logger.Info(fmt.Sprintf("定时运行已启动(间隔: %v)，按Ctrl+C退出", interval))
	waitForShutdown(logger)
}

// runWatched 监视输入目录，新批次文件落地即触发运行
func runWatched(pipe *processor.Pipeline, cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger) {
	monitor, err := file.NewBatchMonitor("*", cfg.FlightDir, cfg.WeatherDir)
	if err != nil {
		logger.Error("创建目录监视失败: " + err.Error())
		return
	}
	defer monitor.Close()

	logger.Info(fmt.Sprintf("目录监视已启动: %s, %s", cfg.FlightDir, cfg.WeatherDir))

	go func() {
		if err := monitor.Watch(func(path string) {
			logger.Info("检测到新批次文件: " + path)
			if err := runOnce(pipe, cfg, logger); err != nil {
				logger.Error(err.Error())
			}
		}); err != nil {
			logger.Error("目录监视出错: " + err.Error())
		}
	}()

	waitForShutdown(logger)
}

func waitForShutdown(logger *storage.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Received signal: " + sig.String() + ", shutting down...")
}
