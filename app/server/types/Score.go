package types

type ScoreCreateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Faculty   string `json:"faculty"`
	Course    string `json:"course"`
	Score     *int   `json:"score"` // 指针用于区分「未提供」与 0 分
}

type ScoreResponse struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Faculty   string `json:"faculty"`
	Course    string `json:"course"`
	Score     int    `json:"score"`
}

type ScoreListResponse struct {
	Items []ScoreResponse `json:"items"`
	Total int64           `json:"total"`
}

type ImportCSVResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}
