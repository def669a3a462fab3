package errs

import (
	"errors"
	"fmt"
)

// Category 错误分类,对应用户可见的消息类别
type Category string

const (
	CategoryUnauthorized Category = "unauthorized" // 权限不足,不重试
	CategoryConflict     Category = "conflict"     // 状态冲突,不重试
	CategoryInvalid      Category = "invalid"      // 本地校验失败,不发起网络请求
	CategoryNetwork      Category = "network"      // 传输层瞬时失败
	CategoryServer       Category = "server"       // 服务端非 2xx 响应
	CategoryData         Category = "data"         // 响应解码失败,数据完整性信号
)

// Error 带分类的错误
// Path 仅在解码错误时填写,指向不符合预期的字段路径;
// Status 仅在服务端错误时填写,为 HTTP 状态码
type Error struct {
	Category Category
	Message  string
	Path     string
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (field %q)", e.Category, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewAuthorization 构造权限错误
func NewAuthorization(message string) *Error {
	return &Error{Category: CategoryUnauthorized, Message: message}
}

// NewStateConflict 构造状态冲突错误
func NewStateConflict(format string, args ...interface{}) *Error {
	return &Error{Category: CategoryConflict, Message: fmt.Sprintf(format, args...)}
}

// NewValidation 构造本地校验错误
func NewValidation(format string, args ...interface{}) *Error {
	return &Error{Category: CategoryInvalid, Message: fmt.Sprintf(format, args...)}
}

// NewTransient 构造瞬时网络错误
func NewTransient(message string, err error) *Error {
	return &Error{Category: CategoryNetwork, Message: message, Err: err}
}

// NewServer 构造服务端错误,message 原样透传给调用方
func NewServer(status int, message string) *Error {
	return &Error{Category: CategoryServer, Status: status, Message: message}
}

// NewDecoding 构造解码错误,path 为出错的字段路径
func NewDecoding(path string, err error) *Error {
	return &Error{Category: CategoryData, Message: "response payload did not match expected shape", Path: path, Err: err}
}

// CategoryOf 返回错误的分类,无法识别时归为 network 以外的空分类
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return ""
}

func is(err error, c Category) bool {
	var e *Error
	return errors.As(err, &e) && e.Category == c
}

// IsAuthorization 判断是否为权限错误
func IsAuthorization(err error) bool { return is(err, CategoryUnauthorized) }

// IsStateConflict 判断是否为状态冲突错误
func IsStateConflict(err error) bool { return is(err, CategoryConflict) }

// IsValidation 判断是否为本地校验错误
func IsValidation(err error) bool { return is(err, CategoryInvalid) }

// IsTransient 判断是否为瞬时网络错误
func IsTransient(err error) bool { return is(err, CategoryNetwork) }

// IsServer 判断是否为服务端错误
func IsServer(err error) bool { return is(err, CategoryServer) }

// IsDecoding 判断是否为解码错误
func IsDecoding(err error) bool { return is(err, CategoryData) }
