package services

import "errors"

// ValidationError 输入校验失败：只回报给发送方，不产生任何副作用
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func newValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsValidationError 判断错误是否为校验类错误
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
