// Package params reads typed path and query parameters for gin handlers.
package params

import (
	"net/http"
	"strconv"

	"wanderly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UUID parses the named path parameter. On failure it writes a 400 and
// returns false.
func UUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid "+name, nil, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// Page reads ?page=, defaulting to 1 and capped at response.MaxPage.
func Page(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		return 1
	}
	return response.ClampPage(page)
}
