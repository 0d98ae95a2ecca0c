package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"student-score-network/app/server/constants"
	"student-score-network/app/server/models"
)

// ScoreRepository 封装成绩相关的存储操作：惰性创建实体链、成绩 upsert 、
// 过滤分页查询与批量导入。所有写操作都在单个事务里完成。
type ScoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// 打平后的查询结果行
type ScoreRow struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Faculty   string `json:"faculty"`
	Course    string `json:"course"`
	Score     int    `json:"score"`
}

// List 返回一页打平的成绩记录和过滤后（分页前）的总数。
// faculty / course 为空字符串表示不过滤，非空则为大小写敏感的精确匹配，两者同时给出时取 AND 。
func (r *ScoreRepository) List(ctx context.Context, faculty string, course string, skip int, limit int) ([]ScoreRow, int64, error) {
	// 同一组过滤条件要构建两次：一次取总数，一次取当前页
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Grade{}).
			Joins("JOIN students ON students.id = grades.student_id").
			Joins("JOIN faculties ON faculties.id = students.faculty_id").
			Joins("JOIN courses ON courses.id = grades.course_id")
		if faculty != "" {
			q = q.Where("faculties.name = ?", faculty)
		}
		if course != "" {
			q = q.Where("courses.name = ?", course)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count grades: %w", err)
	}

	// 固定按 grades.id 升序，保证 skip / limit 的结果可复现
	rows := []ScoreRow{}
	if err := base().
		Select("grades.id AS id, students.first_name AS first_name, students.last_name AS last_name, faculties.name AS faculty, courses.name AS course, grades.score AS score").
		Order("grades.id ASC").
		Offset(skip).Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list grades: %w", err)
	}

	return rows, total, nil
}

// AddScore 在一个事务里解析（或创建）学院、学生、课程，然后插入或覆盖成绩
func (r *ScoreRepository) AddScore(ctx context.Context, firstName string, lastName string, facultyName string, courseName string, score int) (*models.Grade, error) {
	var grade *models.Grade
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		grade, err = upsertGrade(tx, firstName, lastName, facultyName, courseName, score)
		return err
	}); err != nil {
		return nil, err
	}

	return grade, nil
}

// ImportCSV 逐行应用与 AddScore 相同的 upsert 。整批共用一个事务，
// 任何一行失败都会整体回滚。返回成功导入的行数。
func (r *ScoreRepository) ImportCSV(ctx context.Context, input io.Reader) (int, error) {
	count := 0

	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reader := csv.NewReader(input)

		// 第一行是表头，各列按名字解析，不依赖列的顺序
		header, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read csv header: %w", err)
		}

		columns := make(map[string]int, len(header))
		for i, name := range header {
			columns[strings.TrimSpace(name)] = i
		}
		for _, required := range []string{
			constants.CSVHeaderLastName,
			constants.CSVHeaderFirstName,
			constants.CSVHeaderFaculty,
			constants.CSVHeaderCourse,
			constants.CSVHeaderScore,
		} {
			if _, ok := columns[required]; !ok {
				return fmt.Errorf("missing csv column: %s", required)
			}
		}

		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return fmt.Errorf("read csv record: %w", err)
			}

			scoreStr := strings.TrimSpace(record[columns[constants.CSVHeaderScore]])
			score, err := strconv.Atoi(scoreStr)
			if err != nil {
				return fmt.Errorf("invalid score value %q: %w", scoreStr, err)
			}
			if score < constants.ScoreMin || score > constants.ScoreMax {
				return fmt.Errorf("score %d out of range [%d,%d]", score, constants.ScoreMin, constants.ScoreMax)
			}

			if _, err := upsertGrade(tx,
				record[columns[constants.CSVHeaderFirstName]],
				record[columns[constants.CSVHeaderLastName]],
				record[columns[constants.CSVHeaderFaculty]],
				record[columns[constants.CSVHeaderCourse]],
				score,
			); err != nil {
				return err
			}

			count++
		}

		return nil
	}); err != nil {
		return 0, err
	}

	return count, nil
}

func upsertGrade(tx *gorm.DB, firstName string, lastName string, facultyName string, courseName string, score int) (*models.Grade, error) {
	// 逐级解析实体链
	faculty, err := getFaculty(tx, facultyName)
	if err != nil {
		return nil, err
	}

	student, err := getStudent(tx, firstName, lastName, faculty.ID)
	if err != nil {
		return nil, err
	}

	course, err := getCourse(tx, courseName)
	if err != nil {
		return nil, err
	}

	// 成绩按（学生、课程）定位：存在则覆盖分数，不存在则插入
	var grade models.Grade
	if err := tx.First(&grade, "student_id = ? AND course_id = ?", student.ID, course.ID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("query grade: %w", err)
		}

		grade = models.Grade{
			StudentID: student.ID,
			CourseID:  course.ID,
			Score:     score,
		}
		// 并发写同一（学生、课程）时交给唯一索引仲裁，输掉插入的一方转为覆盖
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"score":      score,
				"updated_at": time.Now(),
			}),
		}).Create(&grade).Error; err != nil {
			return nil, fmt.Errorf("create grade: %w", err)
		}

		return &grade, nil
	}

	if err := tx.Model(&grade).Update("score", score).Error; err != nil {
		return nil, fmt.Errorf("update grade: %w", err)
	}

	return &grade, nil
}

func getFaculty(tx *gorm.DB, name string) (*models.Faculty, error) {
	var faculty models.Faculty
	err := tx.First(&faculty, "name = ?", name).Error
	if err == nil {
		return &faculty, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("query faculty: %w", err)
	}

	// 惰性创建；输掉唯一索引竞争时 DO NOTHING ，然后回查赢家的行
	faculty = models.Faculty{Name: name}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&faculty).Error; err != nil {
		return nil, fmt.Errorf("create faculty: %w", err)
	}
	if faculty.ID == 0 {
		if err := tx.First(&faculty, "name = ?", name).Error; err != nil {
			return nil, fmt.Errorf("requery faculty: %w", err)
		}
	}

	return &faculty, nil
}

func getStudent(tx *gorm.DB, firstName string, lastName string, facultyID uint) (*models.Student, error) {
	var student models.Student
	err := tx.First(&student, "first_name = ? AND last_name = ? AND faculty_id = ?", firstName, lastName, facultyID).Error
	if err == nil {
		return &student, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("query student: %w", err)
	}

	student = models.Student{
		FirstName: firstName,
		LastName:  lastName,
		FacultyID: facultyID,
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&student).Error; err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}
	if student.ID == 0 {
		if err := tx.First(&student, "first_name = ? AND last_name = ? AND faculty_id = ?", firstName, lastName, facultyID).Error; err != nil {
			return nil, fmt.Errorf("requery student: %w", err)
		}
	}

	return &student, nil
}

func getCourse(tx *gorm.DB, name string) (*models.Course, error) {
	var course models.Course
	err := tx.First(&course, "name = ?", name).Error
	if err == nil {
		return &course, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("query course: %w", err)
	}

	course = models.Course{Name: name}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&course).Error; err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	if course.ID == 0 {
		if err := tx.First(&course, "name = ?", name).Error; err != nil {
			return nil, fmt.Errorf("requery course: %w", err)
		}
	}

	return &course, nil
}
