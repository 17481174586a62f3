package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/materials-backend/internal/platform/ctxutil"
)

// Feedback texts shown to contributors after a form submission.
const (
	TextSaveSuccess       = "Save success!"
	TextFixErrors         = "Failed to submit, please fix the errors, and try again."
	TextLoginRequired     = "Failed to submit, please login and try again."
	TextSystemAdded       = "System successfully added!"
	TextSystemExists      = "Failed to submit, system is already in database."
	TextAuthorAdded       = "Author successfully added!"
	TextAuthorExists      = "Failed to submit, author is already in database."
	TextTagAdded          = "Tag successfully added!"
	TextTagExists         = "Failed to submit, tag is already in database."
	TextAuthorsIncomplete = "Failed to submit, author information is incomplete."
	TextPublicationExists = "Failed to submit, publication is already in database."
)

// ErrLoginRequired is returned by every write when the caller is anonymous.
var ErrLoginRequired = errors.New(TextLoginRequired)

type ValidationKind string

const (
	KindMissingField     ValidationKind = "missing_field"
	KindInvalidNumber    ValidationKind = "invalid_number"
	KindMissingReference ValidationKind = "missing_reference"
	KindDuplicate        ValidationKind = "duplicate"
	KindIncomplete       ValidationKind = "incomplete"
	KindInvalidChoice    ValidationKind = "invalid_choice"
)

// ValidationError is a user-input failure. Msg is the text shown to the user.
type ValidationError struct {
	Kind  ValidationKind
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	}
	return string(e.Kind)
}

func invalid(kind ValidationKind, field string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Msg: TextFixErrors}
}

// Actor is the authenticated user a write is attributed to.
type Actor struct {
	UserID uuid.UUID
}

// ActorFromContext reads the identity attached by the auth middleware.
func ActorFromContext(ctx context.Context) (Actor, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return Actor{}, ErrLoginRequired
	}
	return Actor{UserID: rd.UserID}, nil
}

// Clock supplies timestamps for attribution.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

func clean(s string) string { return strings.TrimSpace(s) }

func eventPayload(v map[string]any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}
