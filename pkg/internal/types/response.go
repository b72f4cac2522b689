package types

// AckResponse 无返回数据的操作结果.
type AckResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorBody 错误信息.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse 统一错误响应.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// HealthResponse 存活检查响应.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ComponentHealth 单个依赖组件的健康状态.
type ComponentHealth struct {
	Component string `json:"component"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}
