package repository

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepository(t *testing.T) (*ScoreRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}

	return NewScoreRepository(db), mock
}

func TestListFilterComposition(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "grades"`)).
		WithArgs("CS", "Algo").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT grades.id AS id`)).
		WithArgs("CS", "Algo", 100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "faculty", "course", "score"}).
			AddRow(5, "Bob", "Lee", "CS", "Algo", 90))

	rows, total, err := repo.List(context.Background(), "CS", "Algo", 0, 100)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
	if len(rows) != 1 || rows[0].ID != 5 || rows[0].Score != 90 {
		t.Errorf("unexpected rows: %+v", rows)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestAddScoreOverwritesExistingGrade(t *testing.T) {
	repo, mock := newTestRepository(t)

	// 同一（学生、课程）再次写入时覆盖分数，不产生新行
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "faculties" WHERE name = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "CS"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "students" WHERE (first_name = $1 AND last_name = $2 AND faculty_id = $3)`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "faculty_id"}).
			AddRow(2, "Bob", "Lee", 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "courses" WHERE name = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "Algo"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "grades" WHERE (student_id = $1 AND course_id = $2)`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "course_id", "score"}).
			AddRow(5, 2, 3, 60))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "grades" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	grade, err := repo.AddScore(context.Background(), "Bob", "Lee", "CS", "Algo", 95)
	if err != nil {
		t.Fatalf("AddScore: %v", err)
	}
	if grade.ID != 5 {
		t.Errorf("grade ID = %d, want existing row 5", grade.ID)
	}
	if grade.Score != 95 {
		t.Errorf("score = %d, want 95", grade.Score)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetFacultyRequeriesAfterConflict(t *testing.T) {
	repo, mock := newTestRepository(t)

	// 并发创建输掉唯一索引竞争：insert 没有返回行，接着回查赢家的行
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "faculties" WHERE name = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "faculties"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "faculties" WHERE name = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(9, "CS"))

	faculty, err := getFaculty(repo.db, "CS")
	if err != nil {
		t.Fatalf("getFaculty: %v", err)
	}
	if faculty.ID != 9 {
		t.Errorf("faculty ID = %d, want 9", faculty.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestImportCSVCountsRows(t *testing.T) {
	repo, mock := newTestRepository(t)

	// 两行数据命中同一条已有实体链，只做两次覆盖
	mock.ExpectBegin()
	for i := 0; i < 2; i++ {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "faculties" WHERE name = $1`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "CS"))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "students" WHERE (first_name = $1 AND last_name = $2 AND faculty_id = $3)`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "faculty_id"}).
				AddRow(2, "Bob", "Lee", 1))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "courses" WHERE name = $1`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "Algo"))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "grades" WHERE (student_id = $1 AND course_id = $2)`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "course_id", "score"}).
				AddRow(5, 2, 3, 60))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "grades" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	csvData := "last_name,first_name,faculty,course,score\nLee,Bob,CS,Algo,90\nLee,Bob,CS,Algo,95\n"
	count, err := repo.ImportCSV(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestImportCSVRejectsOutOfRangeScore(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	csvData := "last_name,first_name,faculty,course,score\nLee,Bob,CS,Algo,150\n"
	if _, err := repo.ImportCSV(context.Background(), strings.NewReader(csvData)); err == nil {
		t.Fatal("expected out-of-range error")
	} else if !strings.Contains(err.Error(), "out of range") {
		t.Errorf("err = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
