package serverutils

type APIResponse[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) APIResponse[T] {
	return APIResponse[T]{
		Message: message,
		Data:    data,
	}
}

type APIError struct {
	Message string `json:"message"`
}

func ErrorResponse(message string) APIError {
	return APIError{Message: message}
}
