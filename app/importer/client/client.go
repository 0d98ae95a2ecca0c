package client

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"student-score-network/app/importer/config"
	"student-score-network/app/server/types"
)

type Client struct {
	cfg *config.Config
	l   *zap.Logger

	token string
}

func New(cfg *config.Config, l *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		l:   l,
	}
}

// Login 用配置里的凭据换取 bearer token
func (c *Client) Login() error {
	loginReqUrl, err := url.JoinPath(c.cfg.ServerEndpoint, "/user/login")
	if err != nil {
		c.l.Error("failed to join login request url", zap.String("server", c.cfg.ServerEndpoint), zap.Error(err))
		return fmt.Errorf("fail to join login request url: %w", err)
	}

	form := url.Values{}
	form.Set("username", c.cfg.Username)
	form.Set("password", c.cfg.Password)

	// 发送请求
	loginRes, err := http.PostForm(loginReqUrl, form)
	if err != nil {
		c.l.Error("failed to send login request", zap.String("url", loginReqUrl), zap.Error(err))
		return fmt.Errorf("fail to send login request: %w", err)
	}

	defer loginRes.Body.Close()

	if loginRes.StatusCode != http.StatusOK {
		c.l.Error("login rejected", zap.Int("code", loginRes.StatusCode))
		return fmt.Errorf("login rejected with status %d", loginRes.StatusCode)
	}

	// 解析请求体
	var loginResBody types.TokenResponse
	if err := json.NewDecoder(loginRes.Body).Decode(&loginResBody); err != nil {
		c.l.Error("failed to decode login response", zap.Error(err))
		return fmt.Errorf("fail to decode login response: %w", err)
	}

	c.token = loginResBody.AccessToken

	return nil
}

// Upload 把 CSV 文件作为 multipart 表单推给服务端，返回服务端的导入摘要
func (c *Client) Upload() (string, error) {
	importReqUrl, err := url.JoinPath(c.cfg.ServerEndpoint, "/score/import-csv")
	if err != nil {
		c.l.Error("failed to join import request url", zap.String("server", c.cfg.ServerEndpoint), zap.Error(err))
		return "", fmt.Errorf("fail to join import request url: %w", err)
	}

	// 打开文件
	f, err := os.Open(c.cfg.CSVPath)
	if err != nil {
		c.l.Error("failed to open csv file", zap.String("path", c.cfg.CSVPath), zap.Error(err))
		return "", fmt.Errorf("fail to open csv file: %w", err)
	}

	defer f.Close()

	// 组装 multipart 请求体
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(c.cfg.CSVPath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	importReq, err := http.NewRequest("POST", importReqUrl, pr)
	if err != nil {
		c.l.Error("failed to prepare import request", zap.String("url", importReqUrl), zap.Error(err))
		return "", fmt.Errorf("fail to prepare import request: %w", err)
	}
	importReq.Header.Set("Authorization", "Bearer "+c.token)
	importReq.Header.Set("Content-Type", mw.FormDataContentType())

	// 发送请求
	importRes, err := http.DefaultClient.Do(importReq)
	if err != nil {
		c.l.Error("failed to send import request", zap.String("url", importReqUrl), zap.Error(err))
		return "", fmt.Errorf("fail to send import request: %w", err)
	}

	defer importRes.Body.Close()

	if importRes.StatusCode != http.StatusOK {
		// 失败时带回服务端给出的原因
		var errBody types.ErrorMessage
		if err := json.NewDecoder(importRes.Body).Decode(&errBody); err != nil {
			return "", fmt.Errorf("import rejected with status %d", importRes.StatusCode)
		}
		return "", fmt.Errorf("import rejected with status %d: %s", importRes.StatusCode, errBody.Message)
	}

	// 解析请求体
	var importResBody types.ImportCSVResponse
	if err := json.NewDecoder(importRes.Body).Decode(&importResBody); err != nil {
		c.l.Error("failed to decode import response", zap.Error(err))
		return "", fmt.Errorf("fail to decode import response: %w", err)
	}

	return importResBody.Message, nil
}
