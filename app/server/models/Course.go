package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model

	Name string `gorm:"column:name;uniqueIndex"` // 课程名称，全局唯一，首次引用时惰性创建
}
