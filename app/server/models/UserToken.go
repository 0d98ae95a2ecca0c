package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserToken struct {
	gorm.Model

	Token     uuid.UUID `gorm:"column:token;type:uuid;uniqueIndex"` // 对外发放的 bearer 凭据
	ExpiredAt time.Time `gorm:"column:expired_at"`                  // 绝对过期时间
	UserID    uint      `gorm:"column:user_id;index"`               // 所属用户

	// 连接模型时使用
	User User `gorm:"foreignKey:UserID"` // 所属用户
}

// 过期是计算出来的判断，不是存储的状态：now >= expired_at 即为过期
func (t *UserToken) IsExpired() bool {
	return !time.Now().Before(t.ExpiredAt)
}
