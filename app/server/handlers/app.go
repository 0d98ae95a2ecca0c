package handlers

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-score-network/app/server/repository"
)

type App struct {
	l      *zap.Logger                 // 日志
	db     *gorm.DB                    // 数据库
	rdb    *redis.Client               // Redis
	scores *repository.ScoreRepository // 成绩存储
}

func NewApp(l *zap.Logger, db *gorm.DB, rdb *redis.Client) *App {
	return &App{
		l:      l,
		db:     db,
		rdb:    rdb,
		scores: repository.NewScoreRepository(db),
	}
}
