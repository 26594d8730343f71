package serverutils

// Response is the uniform JSON envelope returned by every endpoint.
type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(message, kind string) Response[any] {
	return Response[any]{
		Success: false,
		Message: message,
		Kind:    kind,
	}
}
