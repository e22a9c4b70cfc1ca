package serverutils

type APIResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(message string, errs interface{}) APIResponse {
	return APIResponse{
		Message: message,
		Errors:  errs,
	}
}
