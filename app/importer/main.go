package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"

	"student-score-network/app/importer/client"
	"student-score-network/app/importer/inits"
)

func main() {
	// 初始化配置
	cfg, err := inits.Config()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	// 初始化日志
	l, err := inits.Logger(!cfg.IsProd)
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}

	// 切换日志系统
	l.Debug("logger initialized")

	// 登录并上传
	c := client.New(cfg, l)
	if err := c.Login(); err != nil {
		l.Fatal("error logging in", zap.Error(err))
	}

	message, err := c.Upload()
	if err != nil {
		l.Fatal("error importing csv", zap.Error(err))
	}

	l.Info("import finished", zap.String("message", message))
}
