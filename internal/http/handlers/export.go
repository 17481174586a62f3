package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/materials-backend/internal/http/response"
	"github.com/yungbote/materials-backend/internal/platform/logger"
	"github.com/yungbote/materials-backend/internal/services"
)

type ExportHandler struct {
	log     *logger.Logger
	exports services.ExportService
	reports services.ReportService
}

func NewExportHandler(log *logger.Logger, exports services.ExportService, reports services.ReportService) *ExportHandler {
	return &ExportHandler{
		log:     log.With("handler", "ExportHandler"),
		exports: exports,
		reports: reports,
	}
}

// GET /api/downloads/:kind/:id
//
// For all_atomic_positions the id is a system id; every other kind takes
// the id of its entry.
func (h *ExportHandler) EntryDownload(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	kind := services.DownloadKind(c.Param("kind"))
	dl, err := h.exports.EntryDownload(c.Request.Context(), kind, id)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondAttachment(c, dl.Filename, dl.ContentType, dl.Body)
}

// GET /api/publications/:id/report
func (h *ExportHandler) PublicationReport(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	out, err := h.reports.PublicationReport(c.Request.Context(), id, requestHost(c))
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}
