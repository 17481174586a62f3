package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Feedback is the envelope of every form submission. User-input failures are
// reported with HTTP 200 and Feedback "failure".
type Feedback struct {
	Feedback string `json:"feedback"`
	Text     string `json:"text"`
	ID       string `json:"id,omitempty"`
}

const (
	FeedbackSuccess = "success"
	FeedbackFailure = "failure"
)

// FeedbackKey holds the feedback outcome in the gin context for the access log.
const FeedbackKey = "feedback"

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondFeedback(c *gin.Context, fb Feedback) {
	c.Set(FeedbackKey, fb.Feedback)
	c.JSON(http.StatusOK, fb)
}

func RespondSuccess(c *gin.Context, text string, id string) {
	RespondFeedback(c, Feedback{Feedback: FeedbackSuccess, Text: text, ID: id})
}

func RespondFailure(c *gin.Context, text string) {
	RespondFeedback(c, Feedback{Feedback: FeedbackFailure, Text: text})
}

// RespondAttachment sends body as a download named filename.
func RespondAttachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, contentType, body)
}
