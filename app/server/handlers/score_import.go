package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"student-score-network/app/server/types"
)

func (a *App) ScoreImportCSV(c echo.Context) error {
	// 抓取 user 信息（认证）：批量导入也是写操作
	if _, err, statusCode := a.getCurrentUser(c); err != nil {
		a.l.Error("failed to get user", zap.Error(err))
		return a.erCredential(c, statusCode)
	}

	rctx := c.Request().Context()

	// 提取上传的文件
	fileHeader, err := c.FormFile("file")
	if err != nil {
		a.l.Error("failed to get uploaded file", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	src, err := fileHeader.Open()
	if err != nil {
		a.l.Error("failed to open uploaded file", zap.String("filename", fileHeader.Filename), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	defer src.Close()

	// 整批在一个事务里导入，任何一行失败都整体回滚，
	// 触发错误的原因信息原样带回给调用方
	count, err := a.scores.ImportCSV(rctx, src)
	if err != nil {
		a.l.Error("failed to import csv", zap.String("filename", fileHeader.Filename), zap.Error(err))
		return a.erMsg(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, &types.ImportCSVResponse{
		Status:  true,
		Message: fmt.Sprintf("Imported records: %d", count),
	})
}
