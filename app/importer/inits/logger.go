package inits

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger 初始化 zap ：非生产环境用开发配置（人类可读），生产环境输出 JSON
func Logger(debugMode bool) (*zap.Logger, error) {
	build := zap.NewProduction
	if debugMode {
		build = zap.NewDevelopment
	}

	l, err := build()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	return l, nil
}
