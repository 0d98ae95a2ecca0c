package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-score-network/app/server/constants"
	"student-score-network/app/server/models"
	"student-score-network/app/server/types"
)

func (a *App) ScoreList(c echo.Context) error {
	rctx := c.Request().Context()

	skip, limit := a.parseSkipLimit(c.QueryParam("skip"), c.QueryParam("limit"))

	rows, total, err := a.scores.List(rctx, c.QueryParam("faculty"), c.QueryParam("course"), skip, limit)
	if err != nil {
		a.l.Error("failed to list scores", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	items := make([]types.ScoreResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, types.ScoreResponse{
			ID:        row.ID,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Faculty:   row.Faculty,
			Course:    row.Course,
			Score:     row.Score,
		})
	}

	return c.JSON(http.StatusOK, &types.ScoreListResponse{
		Items: items,
		Total: total,
	})
}

func (a *App) ScoreCreate(c echo.Context) error {
	// 抓取 user 信息（认证）
	if _, err, statusCode := a.getCurrentUser(c); err != nil {
		a.l.Error("failed to get user", zap.Error(err))
		return a.erCredential(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体：形状不对（比如非整数的分数）和字段缺失同属一类校验错误
	var req types.ScoreCreateRequest
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusUnprocessableEntity)
	}

	// 校验在任何持久化之前完成
	if req.FirstName == "" || req.LastName == "" || req.Faculty == "" || req.Course == "" || req.Score == nil {
		return a.er(c, http.StatusUnprocessableEntity)
	}
	if *req.Score < constants.ScoreMin || *req.Score > constants.ScoreMax {
		return a.erMsg(c, http.StatusUnprocessableEntity,
			fmt.Sprintf("Score must be between %d and %d", constants.ScoreMin, constants.ScoreMax))
	}

	grade, err := a.scores.AddScore(rctx, req.FirstName, req.LastName, req.Faculty, req.Course, *req.Score)
	if err != nil {
		a.l.Error("failed to add score", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusCreated, &types.ScoreResponse{
		ID:        grade.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Faculty:   req.Faculty,
		Course:    req.Course,
		Score:     grade.Score,
	})
}

func (a *App) ScoreDelete(c echo.Context) error {
	// 抓取 user 信息（认证）
	if _, err, statusCode := a.getCurrentUser(c); err != nil {
		a.l.Error("failed to get user", zap.Error(err))
		return a.erCredential(c, statusCode)
	}

	rctx := c.Request().Context()

	// 提取 ID
	idUint64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}
	id := uint(idUint64)

	// 从数据库中获得指定的成绩
	var grade models.Grade
	if err := a.db.WithContext(rctx).First(&grade, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.erMsg(c, http.StatusNotFound, fmt.Sprintf("Score with ID %d not found", id))
		} else {
			a.l.Error("failed to get score", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 硬删除：留下软删除的行会占住（学生、课程）的唯一索引，
	// 之后同一组合就无法重新录入成绩了
	if err := a.db.WithContext(rctx).Unscoped().Delete(&grade).Error; err != nil {
		a.l.Error("failed to delete score", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.NoContent(http.StatusNoContent)
}
