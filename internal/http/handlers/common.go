package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/materials-backend/internal/http/response"
	"github.com/yungbote/materials-backend/internal/services"
)

// maxMultipartMemory is held in memory per form; larger parts spill to disk.
const maxMultipartMemory = 32 << 20

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, err)
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID reads an optional id from the query string. A missing or
// malformed value is uuid.Nil.
func queryUUID(c *gin.Context, name string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// parseMultipart parses a multipart body and returns its values and the
// files posted under fileField. A plain urlencoded body yields no files.
func parseMultipart(c *gin.Context, fileField string) (map[string][]string, []*multipart.FileHeader, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, nil, err
		}
		form := c.Request.MultipartForm
		return form.Value, form.File[fileField], nil
	}
	if err := c.Request.ParseForm(); err != nil {
		return nil, nil, err
	}
	return c.Request.PostForm, nil, nil
}

func uploadFromHeader(fh *multipart.FileHeader) services.Upload {
	return services.Upload{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

func uploadsFromHeaders(fhs []*multipart.FileHeader) []services.Upload {
	out := make([]services.Upload, 0, len(fhs))
	for _, fh := range fhs {
		out = append(out, uploadFromHeader(fh))
	}
	return out
}

// singleUpload returns the first file posted under field, or nil.
func singleUpload(c *gin.Context, field string) *services.Upload {
	if c.Request.MultipartForm == nil {
		return nil
	}
	fhs := c.Request.MultipartForm.File[field]
	if len(fhs) == 0 {
		return nil
	}
	u := uploadFromHeader(fhs[0])
	return &u
}

func formValue(form map[string][]string, key string) string {
	if vals := form[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// formUUID is uuid.Nil for a missing or malformed value; the services report
// the missing reference.
func formUUID(form map[string][]string, key string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(formValue(form, key)))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func optionalFormUUID(form map[string][]string, key string) *uuid.UUID {
	id := formUUID(form, key)
	if id == uuid.Nil {
		return nil
	}
	return &id
}

// requestHost is the scheme and host the client reached us on.
func requestHost(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + c.Request.Host
}
