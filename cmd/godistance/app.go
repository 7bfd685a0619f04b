package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Kevin-Rudy/godistance/pkg/session"
	"github.com/Kevin-Rudy/godistance/pkg/storage"
	"github.com/Kevin-Rudy/godistance/pkg/tui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

// runApp 主要应用逻辑处理函数
func runApp(c *cli.Context) error {
	if c.NArg() > 0 {
		return cli.Exit(fmt.Sprintf("错误: 不需要位置参数，收到 %v\n使用 --url 指定服务地址", c.Args().Slice()), 1)
	}

	// 构建并验证配置
	appConfig, err := buildConfigFromCLI(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("配置验证失败: %v", err), 1)
	}

	// 显示运行配置
	printRunningConfig(appConfig)

	logger, closeLog, err := newLogger(appConfig.Log)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法打开日志文件: %v", err), 1)
	}
	defer closeLog()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := session.NewMetrics(registry)

	if appConfig.Metrics.Addr != "" {
		srv := startMetricsServer(appConfig.Metrics.Addr, registry, logger)
		defer shutdownMetricsServer(srv, logger)
		fmt.Printf("指标服务: http://%s/metrics\n", appConfig.Metrics.Addr)
	}

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithMetrics(metrics),
	}

	if appConfig.Storage.Record != "" {
		recorder, err := storage.OpenSqliteRecorder(appConfig.Storage.Record)
		if err != nil {
			return cli.Exit(fmt.Sprintf("无法打开记录文件: %v", err), 1)
		}
		defer func() {
			if err := recorder.Close(); err != nil {
				logger.Error("close recorder", "error", err)
			}
		}()
		opts = append(opts, session.WithRecorder(recorder))
		fmt.Printf("记录文件: %s\n", appConfig.Storage.Record)
	}

	fmt.Println("\n正在初始化会话控制器...")

	controller, err := session.NewController(appConfig.SessionConfig, opts...)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法创建会话控制器: %v", err), 1)
	}

	fmt.Println("会话控制器初始化成功")
	fmt.Println("\n正在启动TUI界面...")

	// 显示使用说明
	printUsageInstructions()

	logger.Info("godistance started", "endpoint", appConfig.SessionConfig.Endpoint, "version", AppVersion)

	// 启动TUI界面 - 这会阻塞直到用户退出
	tuiInstance := tui.NewTUI(controller, appConfig.TUIConfig)
	runErr := tuiInstance.Run()

	// 等待接收goroutine退出，确保会话结果已写入记录文件
	_ = controller.Close()
	logger.Info("godistance stopped")

	if runErr != nil {
		return cli.Exit(fmt.Sprintf("TUI运行出错: %v", runErr), 1)
	}

	fmt.Println("\n程序已退出")
	return nil
}

// startMetricsServer 在后台启动Prometheus指标服务
func startMetricsServer(addr string, registry *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server exited", "error", err)
		}
	}()

	return srv
}

func shutdownMetricsServer(srv *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown", "error", err)
	}
}

// printRunningConfig 打印运行配置信息
func printRunningConfig(config *AppConfig) {
	s := config.SessionConfig
	fmt.Printf("服务地址: %s\n", s.Endpoint)
	fmt.Printf("显示单位: %s\n", s.Unit)
	fmt.Printf("连接超时: %v\n", s.ConnectTimeout)
	if s.ProxyURL != "" {
		fmt.Printf("代理: %s\n", s.ProxyURL)
	}
	fmt.Printf("历史长度: %d\n", s.HistorySize)
	fmt.Printf("刷新间隔: %v\n", config.TUIConfig.RefreshInterval)
}
