package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/yungbote/materials-backend/internal/pkg/errors"
	"github.com/yungbote/materials-backend/internal/platform/apierr"
	"github.com/yungbote/materials-backend/internal/platform/ctxutil"
	"github.com/yungbote/materials-backend/internal/platform/logger"
	"github.com/yungbote/materials-backend/internal/services"
)

// RespondServiceError maps a service error onto the API error envelope.
// Unexpected errors are logged and reported as 500.
func RespondServiceError(c *gin.Context, log *logger.Logger, err error) {
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		ae = classify(err)
	}
	if ae.Status >= http.StatusInternalServerError && log != nil {
		fields := append([]interface{}{"route", c.FullPath(), "error", err}, ctxutil.LogFields(c.Request.Context())...)
		log.Error("Request failed", fields...)
	}
	RespondError(c, ae.Status, ae.Code, ae)
}

func classify(err error) *apierr.Error {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return apierr.BadRequest(string(ve.Kind), err)
	case errors.Is(err, services.ErrLoginRequired), errors.Is(err, pkgerrors.ErrUnauthorized):
		return apierr.Unauthorized(err)
	case errors.Is(err, pkgerrors.ErrNotFound):
		return apierr.NotFound("not_found", err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return apierr.BadRequest("invalid_argument", err)
	case errors.Is(err, pkgerrors.ErrConflict):
		return apierr.Conflict(err)
	default:
		return apierr.Internal("internal", err)
	}
}

// RespondSubmissionError reports user-input failures of a form submission in
// the feedback envelope and everything else as an API error.
func RespondSubmissionError(c *gin.Context, log *logger.Logger, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		RespondFailure(c, ve.Error())
	case errors.Is(err, services.ErrLoginRequired):
		RespondFailure(c, services.TextLoginRequired)
	default:
		RespondServiceError(c, log, err)
	}
}
