package response

// AppError 携带接口错误码的错误包装
// Message 面向调用方，Err 保留原始错误供日志使用。
type AppError struct {
	Code    int
	Message string
	Err     error
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap 暴露原始错误，支持 errors.Is / errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 将原始错误包装为带错误码的 AppError
func WrapError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
