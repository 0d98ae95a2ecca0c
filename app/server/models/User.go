package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model

	// 基础信息
	Username string         `gorm:"column:username;uniqueIndex"` // 用户名，全局唯一
	Email    string         `gorm:"column:email;uniqueIndex"`    // 邮箱，全局唯一
	Name     string         `gorm:"column:name"`                 // 名
	LastName string         `gorm:"column:last_name"`            // 姓
	Roles    pq.StringArray `gorm:"column:roles;type:text[]"`    // 角色标签（ admin / user ），默认只有 user

	// 登录与授权认证相关
	Password string `gorm:"column:password"` // 密码摘要（ argon2id ，十六进制编码）
	Salt     string `gorm:"column:salt"`     // 盐，每次修改密码时重新生成

	// 连接模型时使用
	Tokens []UserToken `gorm:"foreignKey:UserID"` // 该用户持有的所有会话 token
}
