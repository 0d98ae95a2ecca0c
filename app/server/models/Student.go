package models

import "gorm.io/gorm"

type Student struct {
	gorm.Model

	// 学生的自然键是（名、姓、学院）三元组，由唯一索引保证并发 get-or-create 不产生重复行
	FirstName string `gorm:"column:first_name;uniqueIndex:idx_students_identity"`
	LastName  string `gorm:"column:last_name;uniqueIndex:idx_students_identity"`
	FacultyID uint   `gorm:"column:faculty_id;uniqueIndex:idx_students_identity"`

	// 连接模型时使用
	Faculty Faculty `gorm:"foreignKey:FacultyID"` // 所属学院
}
