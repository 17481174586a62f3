package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/materials-backend/internal/http/response"
	"github.com/yungbote/materials-backend/internal/platform/logger"
	"github.com/yungbote/materials-backend/internal/services"
)

type CatalogHandler struct {
	log     *logger.Logger
	catalog services.CatalogService
}

func NewCatalogHandler(log *logger.Logger, catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		log:     log.With("handler", "CatalogHandler"),
		catalog: catalog,
	}
}

// POST /api/systems
func (h *CatalogHandler) AddSystem(c *gin.Context) {
	actor, err := services.ActorFromContext(c.Request.Context())
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return
	}
	var in services.SystemInput
	if err := c.ShouldBind(&in); err != nil {
		response.RespondFailure(c, services.TextFixErrors)
		return
	}
	sys, err := h.catalog.AddSystem(c.Request.Context(), actor, in)
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return
	}
	response.RespondSuccess(c, services.TextSystemAdded, sys.ID.String())
}

// PUT /api/systems/:id
func (h *CatalogHandler) UpdateSystem(c *gin.Context) {
	actor, err := services.ActorFromContext(c.Request.Context())
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var in services.SystemInput
	if err := c.ShouldBind(&in); err != nil {
		response.RespondFailure(c, services.TextFixErrors)
		return
	}
	sys, err := h.catalog.UpdateSystem(c.Request.Context(), actor, id, in)
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return
	}
	response.RespondSuccess(c, services.TextSaveSuccess, sys.ID.String())
}

// GET /api/systems/:id
func (h *CatalogHandler) GetSystem(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	sys, err := h.catalog.GetSystem(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"system": sys})
}

// GET /api/systems?q=
func (h *CatalogHandler) SearchSystems(c *gin.Context) {
	list, err := h.catalog.SearchSystems(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"systems": list})
}

// POST /api/authors
func (h *CatalogHandler) AddAuthor(c *gin.Context) {
	actor, err := services.ActorFromContext(c.Request.Context())
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return
	}
	var in services.AuthorInput
	if err := c.ShouldBind(&in); err != nil {
		response.RespondFailure(c, services.TextFixErrors)
		return
	}
	author, err := h.catalog.AddAuthor(c.Request.Context(), actor, in)
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return
	}
	response.RespondSuccess(c, services.TextAuthorAdded, author.ID.String())
}

// GET /api/authors?q=
func (h *CatalogHandler) SearchAuthors(c *gin.Context) {
	list, err := h.catalog.SearchAuthors(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"authors": list})
}

// POST /api/publications
// body: { "title": "...", ..., "authors": [{ "first_name", "last_name", "institution" }] }
func (h *CatalogHandler) AddPublication(c *gin.Context) {
	actor, err := services.ActorFromContext(c.Request.Context())
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return
	}
	var in services.PublicationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondFailure(c, services.TextFixErrors)
		return
	}
	pub, err := h.catalog.AddPublication(c.Request.Context(), actor, in)
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return
	}
	response.RespondSuccess(c, services.TextSaveSuccess, pub.ID.String())
}

// GET /api/publications/:id
func (h *CatalogHandler) GetPublication(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	pub, err := h.catalog.GetPublication(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"publication": pub})
}

// GET /api/publications?q=
func (h *CatalogHandler) SearchPublications(c *gin.Context) {
	list, err := h.catalog.SearchPublications(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"publications": list})
}

// vocabularyRequest is the body of the single-field vocabulary forms.
type vocabularyRequest struct {
	Value string `json:"value" form:"value"`
}

func (h *CatalogHandler) bindVocabulary(c *gin.Context) (services.Actor, string, bool) {
	actor, err := services.ActorFromContext(c.Request.Context())
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return services.Actor{}, "", false
	}
	var req vocabularyRequest
	if err := c.ShouldBind(&req); err != nil {
		response.RespondFailure(c, services.TextFixErrors)
		return services.Actor{}, "", false
	}
	return actor, req.Value, true
}

// POST /api/properties
func (h *CatalogHandler) AddProperty(c *gin.Context) {
	actor, name, ok := h.bindVocabulary(c)
	if !ok {
		return
	}
	p, err := h.catalog.AddProperty(c.Request.Context(), actor, name)
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return
	}
	response.RespondSuccess(c, services.PropertyAddedText(p.Name), p.ID.String())
}

// POST /api/units
func (h *CatalogHandler) AddUnit(c *gin.Context) {
	actor, label, ok := h.bindVocabulary(c)
	if !ok {
		return
	}
	u, err := h.catalog.AddUnit(c.Request.Context(), actor, label)
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return
	}
	response.RespondSuccess(c, services.UnitAddedText(u.Label), u.ID.String())
}

// POST /api/phases
func (h *CatalogHandler) AddPhase(c *gin.Context) {
	actor, phase, ok := h.bindVocabulary(c)
	if !ok {
		return
	}
	p, err := h.catalog.AddPhase(c.Request.Context(), actor, phase)
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return
	}
	response.RespondSuccess(c, services.PhaseAddedText(p.Phase), p.ID.String())
}

// POST /api/tags
func (h *CatalogHandler) AddTag(c *gin.Context) {
	actor, tag, ok := h.bindVocabulary(c)
	if !ok {
		return
	}
	t, err := h.catalog.AddTag(c.Request.Context(), actor, tag)
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return
	}
	response.RespondSuccess(c, services.TextTagAdded, t.ID.String())
}

// GET /api/form-options
func (h *CatalogHandler) FormOptions(c *gin.Context) {
	opts, err := h.catalog.FormOptions(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}
