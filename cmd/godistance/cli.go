package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/urfave/cli/v2"
)

// createCliApp 创建CLI应用实例
func createCliApp() *cli.App {
	app := &cli.App{
		Name:    AppName,
		Version: AppVersion,
		Usage:   AppDesc,
		Flags:   createCliFlags(),
		Action:  runApp,
		Before: func(c *cli.Context) error {
			// 显示启动信息
			fmt.Printf("正在启动 %s v%s...\n", AppName, AppVersion)
			return nil
		},
	}

	// 添加版本子命令
	app.Commands = createCommands()

	return app
}

// createCliFlags 创建CLI参数定义
func createCliFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML配置文件路径，命令行参数优先于配置文件",
		},
		&cli.StringFlag{
			Name:    "url",
			Aliases: []string{"u"},
			Value:   "ws://localhost:8000/ws",
			EnvVars: []string{"GODISTANCE_URL"},
			Usage:   "测距服务的WebSocket地址",
		},
		&cli.StringFlag{
			Name:  "unit",
			Value: "m",
			Usage: "初始显示单位 (m 或 cm)",
		},
		&cli.DurationFlag{
			Name:  "connect-timeout",
			Value: 10 * time.Second,
			Usage: "连接超时时间 (例如: 5s, 500ms)",
		},
		&cli.Int64Flag{
			Name:  "max-message-size",
			Value: 8 << 20,
			Usage: "单条消息的最大字节数",
		},
		&cli.StringFlag{
			Name:  "proxy",
			Usage: "SOCKS5代理地址 (例如: socks5://127.0.0.1:1080)",
		},
		&cli.BoolFlag{
			Name:  "live-frames",
			Usage: "无效测量携带的图像也刷新画面",
		},
		&cli.BoolFlag{
			Name:  "autostart",
			Usage: "启动后立即开始测距会话",
		},
		&cli.DurationFlag{
			Name:    "refresh-rate",
			Aliases: []string{"r"},
			Value:   200 * time.Millisecond,
			Usage:   "UI刷新频率 (例如: 100ms, 500ms)",
		},
		&cli.IntFlag{
			Name:  "chart-height",
			Value: 0,
			Usage: "图像和图表区域的高度，0表示占满剩余空间",
		},
		&cli.StringFlag{
			Name:  "record",
			Usage: "把会话和样本记录到指定的sqlite文件",
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "Prometheus指标监听地址 (例如: :9100)，为空时不启动",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "日志文件路径，为空时丢弃日志",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "日志级别 (debug, info, warn, error)",
		},
	}
}

// createCommands 创建子命令
func createCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:    "version",
			Aliases: []string{"v"},
			Usage:   "显示详细版本信息",
			Action: func(c *cli.Context) error {
				fmt.Printf("%s v%s\n", AppName, AppVersion)
				fmt.Printf("描述: %s\n", AppDesc)
				fmt.Printf("系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
				fmt.Printf("Go: %s\n", runtime.Version())
				return nil
			},
		},
	}
}
