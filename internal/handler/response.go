package handler

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

// NewListResponse always renders a JSON array, never null.
func NewListResponse[T any](items []T) *Response {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return &Response{
		Status: "success",
		Data:   items,
		Count:  &n,
	}
}
