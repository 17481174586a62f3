package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/materials-backend/internal/http/response"
	"github.com/yungbote/materials-backend/internal/platform/logger"
	"github.com/yungbote/materials-backend/internal/services"
)

type SearchHandler struct {
	log    *logger.Logger
	search services.SearchService
}

func NewSearchHandler(log *logger.Logger, search services.SearchService) *SearchHandler {
	return &SearchHandler{
		log:    log.With("handler", "SearchHandler"),
		search: search,
	}
}

// GET /api/search?search_term=formula&search_text=...
func (h *SearchHandler) Search(c *gin.Context) {
	term := services.SearchTerm(c.Query("search_term"))
	out, err := h.search.Search(c.Request.Context(), term, c.Query("search_text"))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/search/terms
func (h *SearchHandler) Terms(c *gin.Context) {
	response.RespondOK(c, gin.H{"terms": services.SearchTerms})
}
