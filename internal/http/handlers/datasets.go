package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/http/response"
	"github.com/yungbote/materials-backend/internal/platform/logger"
	"github.com/yungbote/materials-backend/internal/services"
)

// fieldUploadedFiles carries the raw files attached to a dataset submission.
const fieldUploadedFiles = "uploaded-files"

type DatasetHandler struct {
	log       *logger.Logger
	ingestion services.IngestionService
	datasets  services.DatasetService
	exports   services.ExportService
	plots     services.PlotService
}

func NewDatasetHandler(
	log *logger.Logger,
	ingestion services.IngestionService,
	datasets services.DatasetService,
	exports services.ExportService,
	plots services.PlotService,
) *DatasetHandler {
	return &DatasetHandler{
		log:       log.With("handler", "DatasetHandler"),
		ingestion: ingestion,
		datasets:  datasets,
		exports:   exports,
		plots:     plots,
	}
}

// POST /api/datasets (multipart)
func (h *DatasetHandler) Submit(c *gin.Context) {
	actor, err := services.ActorFromContext(c.Request.Context())
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return
	}
	form, files, err := parseMultipart(c, fieldUploadedFiles)
	if err != nil {
		response.RespondFailure(c, services.TextFixErrors)
		return
	}
	sub, err := services.DecodeSubmission(form, uploadsFromHeaders(files))
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return
	}
	res, err := h.ingestion.Ingest(c.Request.Context(), sub, actor)
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return
	}
	response.RespondSuccess(c, res.Text(), res.DatasetID.String())
}

// GET /api/systems/:id/datasets?all=true
func (h *DatasetHandler) ListBySystem(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	all, _ := strconv.ParseBool(c.Query("all"))
	list, err := h.datasets.ListBySystem(c.Request.Context(), id, all)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"datasets": list})
}

// POST /api/datasets/:id/toggle-visible
func (h *DatasetHandler) ToggleVisible(c *gin.Context) {
	h.toggle(c, h.datasets.ToggleVisible)
}

// POST /api/datasets/:id/toggle-plotted
func (h *DatasetHandler) TogglePlotted(c *gin.Context) {
	h.toggle(c, h.datasets.TogglePlotted)
}

func (h *DatasetHandler) toggle(c *gin.Context, flip func(context.Context, services.Actor, uuid.UUID) (*types.Dataset, error)) {
	actor, err := services.ActorFromContext(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	ds, err := flip(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"dataset": ds})
}

// DELETE /api/datasets/:id
func (h *DatasetHandler) Delete(c *gin.Context) {
	actor, err := services.ActorFromContext(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.datasets.Delete(c.Request.Context(), actor, id); err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "id": id})
}

// GET /api/datasets/:id/data.txt
func (h *DatasetHandler) Data(c *gin.Context) {
	h.download(c, h.exports.DatasetData)
}

// GET /api/datasets/:id/files.zip
func (h *DatasetHandler) Files(c *gin.Context) {
	h.download(c, h.exports.DatasetFiles)
}

// GET /api/datasets/:id/image.png
func (h *DatasetHandler) Image(c *gin.Context) {
	h.download(c, h.plots.DatasetImage)
}

func (h *DatasetHandler) download(c *gin.Context, build func(context.Context, uuid.UUID) (*services.Download, error)) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	dl, err := build(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondAttachment(c, dl.Filename, dl.ContentType, dl.Body)
}
