package common

import (
	"errors"
	"net/http"
)

// BusinessError 业务错误
type BusinessError struct {
	Code    int    // 错误码
	Message string // 错误信息
}

// Error 实现error接口
func (e *BusinessError) Error() string {
	return e.Message
}

// HTTPStatus 业务错误码映射到 HTTP 状态码
func (e *BusinessError) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidRequest, CodeTenantRequired, CodeInvalidTransition:
		return http.StatusBadRequest
	case CodeNotFound, CodeTenantNotFound, CodePromptNotFound, CodeVersionNotFound,
		CodeCommentNotFound, CodeShareNotFound, CodeApprovalNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsValidation 是否为校验类错误
func (e *BusinessError) IsValidation() bool {
	return e.HTTPStatus() == http.StatusBadRequest
}

// IsNotFound 是否为资源不存在错误
func (e *BusinessError) IsNotFound() bool {
	return e.HTTPStatus() == http.StatusNotFound
}

// NewBusinessError 创建业务错误
func NewBusinessError(code int, message string) *BusinessError {
	if message == "" {
		message = GetErrorMessage(code)
	}
	return &BusinessError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError 缺少必填参数或参数非法
func NewValidationError(message string) *BusinessError {
	return NewBusinessError(CodeInvalidRequest, message)
}

// NewNotFoundError 租户、Prompt 或子资源不存在
func NewNotFoundError(code int, message string) *BusinessError {
	if code == 0 {
		code = CodeNotFound
	}
	return NewBusinessError(code, message)
}

// AsBusinessError 从错误链中取出 BusinessError
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsNotFound 判断错误链中是否为 NotFound
func IsNotFound(err error) bool {
	be, ok := AsBusinessError(err)
	return ok && be.IsNotFound()
}

// IsValidation 判断错误链中是否为校验错误
func IsValidation(err error) bool {
	be, ok := AsBusinessError(err)
	return ok && be.IsValidation()
}
