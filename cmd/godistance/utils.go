package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// 程序信息常量
const (
	AppName    = "godistance"
	AppVersion = "0.1.0"
	AppDesc    = "实时显示摄像头测距结果的终端客户端"
)

// newLogger 创建日志记录器
// TUI占用终端，日志只能写入文件，未指定文件时丢弃
func newLogger(config LogConfig) (*slog.Logger, func(), error) {
	level, err := parseLogLevel(config.Level)
	if err != nil {
		return nil, nil, err
	}

	if config.File == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	f, err := os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = f.Close() }, nil
}

// printUsageInstructions 显示TUI操作说明
func printUsageInstructions() {
	fmt.Println("操作说明:")
	fmt.Println("  s 或 Enter  - 开始/停止测距")
	fmt.Println("  u           - 切换米/厘米")
	fmt.Println("  t 或 Tab    - 切换图表/表格")
	fmt.Println("  q 或 Ctrl+C - 退出程序")
	fmt.Println("========================================")
}
