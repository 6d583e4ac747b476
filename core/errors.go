package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误语义（对齐引擎的降级策略）：
//   - NOT_FOUND：未知用户/商品——画像与排序降级为 空/冷启动，不向上抛
//   - UNAVAILABLE：日志或目录协作方不可达——作为可重试失败向上传播，
//     引擎不会在不完整数据上打分
//   - INVALID_INTERACTION：未知行为类型——权重按 0 处理，从不拒绝
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "UNAVAILABLE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "catalog", "log"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
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

// 错误代码常量
const (
	ErrorCodeNotFound           = "NOT_FOUND"            // 资源不存在
	ErrorCodeNotSupported       = "NOT_SUPPORTED"        // 操作不支持
	ErrorCodeUnavailable        = "UNAVAILABLE"          // 协作方不可达（可重试）
	ErrorCodeInvalidInput       = "INVALID_INPUT"        // 输入无效
	ErrorCodeInvalidInteraction = "INVALID_INTERACTION"  // 未知行为类型
)

// 模块名称常量
const (
	ModuleStore   = "store"   // 存储模块
	ModuleLog     = "log"     // 行为日志协作方
	ModuleCatalog = "catalog" // 商品目录协作方
	ModuleUsers   = "users"   // 用户目录协作方
	ModuleEngine  = "engine"  // 打分/排序引擎
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsUnavailable 检查错误是否为 UNAVAILABLE（可重试）
func IsUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnavailable
	}
	return false
}

// IsInvalidInteraction 检查错误是否为未知行为类型
func IsInvalidInteraction(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInteraction
	}
	return false
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotSupported
	}
	return false
}

// 常用领域错误
var (
	// ErrUserNotFound 表示用户不存在
	ErrUserNotFound = NewDomainError(ModuleUsers, ErrorCodeNotFound, "users: user not found")

	// ErrProductNotFound 表示商品不存在
	ErrProductNotFound = NewDomainError(ModuleCatalog, ErrorCodeNotFound, "catalog: product not found")

	// ErrLogUnavailable 表示行为日志不可达
	ErrLogUnavailable = NewDomainError(ModuleLog, ErrorCodeUnavailable, "log: interaction log unavailable")

	// ErrCatalogUnavailable 表示商品目录不可达
	ErrCatalogUnavailable = NewDomainError(ModuleCatalog, ErrorCodeUnavailable, "catalog: catalog unavailable")

	// ErrInvalidInteraction 表示未知行为类型
	ErrInvalidInteraction = NewDomainError(ModuleEngine, ErrorCodeInvalidInteraction, "engine: unknown interaction type")
)
