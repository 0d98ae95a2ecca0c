package constants

import "time"

const (
	AuthTokenDuration = 30 * time.Minute // 会话 token 的寿命，登录与刷新时从当前时间起算
)

const (
	PasswordSaltLength   = 32                 // 盐的固定长度
	PasswordSaltAlphabet = "0123456789abcdef" // 盐的受限字母表
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
