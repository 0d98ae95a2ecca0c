package models

import "gorm.io/gorm"

type Faculty struct {
	gorm.Model

	Name string `gorm:"column:name;uniqueIndex"` // 学院名称，全局唯一，首次引用时惰性创建
}
