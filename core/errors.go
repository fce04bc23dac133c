package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），也支持 errors.Is / errors.As
//
// 使用场景：
//   - 挖掘错误：INVALID_INPUT（空事务集、非法物品名）
//   - 查询错误：CONFIGURATION_ERROR（top_n、sort_by 非法）
//   - 生命周期错误：NOT_FOUND（模型尚未构建）
type DomainError struct {
	Code    string // 错误代码（如 "INVALID_INPUT", "NOT_FOUND"）
	Message string // 错误消息
	Module  string // 模块名称（如 "mining", "recall", "store"）
	Err     error  // 底层错误，可为空
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is 按 Module、Code 与 Message 判等，便于 errors.Is(err, core.ErrEmptyTransactions) 这类检查。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Module == t.Module && e.Message == t.Message
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取 DomainError（沿 wrap 链查找），如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// Errorf 创建带格式化消息的领域错误
func Errorf(module, code, format string, args ...any) *DomainError {
	return NewDomainError(module, code, fmt.Sprintf(format, args...))
}

// WrapDomainError 用领域错误包装底层错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"           // 资源不存在
	ErrorCodeUnavailable   = "UNAVAILABLE"         // 服务不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"       // 输入无效
	ErrorCodeConfiguration = "CONFIGURATION_ERROR" // 参数/配置非法
)

// 模块名称常量
const (
	ModuleCore    = "core"    // 数据模型
	ModuleStore   = "store"   // 事务数据源
	ModuleMining  = "mining"  // 频繁项集与规则挖掘
	ModuleRecall  = "recall"  // 索引与召回
	ModuleService = "service" // 推荐引擎
	ModuleConfig  = "config"  // 配置
)

var (
	// ErrEmptyItem 表示物品名为空或只包含空白
	ErrEmptyItem = NewDomainError(ModuleCore, ErrorCodeInvalidInput, "core: empty item name")

	// ErrEmptyTransactions 表示事务集为空，support 无定义
	ErrEmptyTransactions = NewDomainError(ModuleMining, ErrorCodeInvalidInput, "mining: empty transaction set")
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool { return hasCode(err, ErrorCodeUnavailable) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsConfiguration 检查错误是否为 CONFIGURATION_ERROR
func IsConfiguration(err error) bool { return hasCode(err, ErrorCodeConfiguration) }
