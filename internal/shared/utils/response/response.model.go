package response

type StandardApiResponse struct {
	Status     string      `json:"status"`           // "success" or "error"
	StatusCode int         `json:"status_code"`      // HTTP status code
	Message    string      `json:"message"`          // Human-readable message
	Data       interface{} `json:"data,omitempty"`   // Payload for success
	Errors     interface{} `json:"errors,omitempty"` // Validation or error details
}

// Page is the envelope for offset-paginated listings
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// TotalPages returns ceil(total / pageSize)
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// MaxPage bounds client-supplied page numbers so offsets cannot overflow
const MaxPage = 1_000_000

// ClampPage maps a requested page into [1, MaxPage]
func ClampPage(page int) int {
	return min(max(page, 1), MaxPage)
}

// Offset returns the number of rows to skip for a 1-based page
func Offset(page, pageSize int) int {
	return pageSize * (ClampPage(page) - 1)
}
