package errors

import (
	"errors"
	"fmt"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// UnavailableError 下游服务不可用错误
// 区别于普通业务错误：单项操作中应返回 503 而非 500/409；
// 发布循环中按行捕获并记入失败报告（与业务错误同等处理）。
type UnavailableError struct {
	Service string // 不可用的下游服务名（如 "users-service"）
	Op      string // 当时执行的操作
	Err     error  // 底层错误
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("服务 %s 不可用（操作: %s）: %v", e.Service, e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// NewUnavailable 构造下游不可用错误
func NewUnavailable(service, op string, err error) *UnavailableError {
	return &UnavailableError{Service: service, Op: op, Err: err}
}

// IsUnavailable 判断错误链中是否存在下游不可用错误
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
