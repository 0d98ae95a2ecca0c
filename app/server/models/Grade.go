package models

import "gorm.io/gorm"

type Grade struct {
	gorm.Model

	// 每个学生每门课程至多一条成绩，重复提交会覆盖分数而不是新增行
	StudentID uint `gorm:"column:student_id;uniqueIndex:idx_grades_student_course"`
	CourseID  uint `gorm:"column:course_id;uniqueIndex:idx_grades_student_course"`
	Score     int  `gorm:"column:score"` // 分数，范围 [0,100] ，在持久化之前校验

	// 连接模型时使用
	Student Student `gorm:"foreignKey:StudentID"` // 学生
	Course  Course  `gorm:"foreignKey:CourseID"`  // 课程
}
