package constants

const (
	ScoreMin = 0   // 分数下界
	ScoreMax = 100 // 分数上界
)

const (
	ScoreListDefaultLimit = 100 // 列表查询没有指定 limit 时的默认值
)

// CSV 导入时按表头名（而不是列的位置）解析各字段
const (
	CSVHeaderLastName  = "last_name"
	CSVHeaderFirstName = "first_name"
	CSVHeaderFaculty   = "faculty"
	CSVHeaderCourse    = "course"
	CSVHeaderScore     = "score"
)
