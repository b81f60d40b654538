package httpapi

// Result 前端 Axios 拦截器约定的响应包裹
// - code: 2000 = success
// - type: 'success' | 'error' | 'warning'
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

func Warn(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "warning", Message: message, Result: nil}
}
