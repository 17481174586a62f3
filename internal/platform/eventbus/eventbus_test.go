package eventbus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/materials-backend/internal/domain/catalog"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

func TestEncode(t *testing.T) {
	id := uuid.New()
	subject := uuid.New()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	raw, err := Encode(&catalog.CatalogEvent{
		ID:        id,
		Kind:      catalog.EventDatasetCreated,
		SubjectID: subject,
		Payload:   datatypes.JSON(`{"datapoints":3}`),
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.ID != id.String() || msg.SubjectID != subject.String() || msg.Kind != "dataset.created" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if string(msg.Payload) != `{"datapoints":3}` {
		t.Fatalf("payload: got=%s", msg.Payload)
	}
	if !msg.CreatedAt.Equal(at) {
		t.Fatalf("created_at: got=%v", msg.CreatedAt)
	}
	if _, err := Encode(nil); err == nil {
		t.Fatalf("Encode(nil) should fail")
	}
}

func TestNopBus(t *testing.T) {
	b := NewNop()
	if err := b.Publish(context.Background(), &catalog.CatalogEvent{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if Client(b) != nil {
		t.Fatalf("nop bus has no redis client")
	}
}

func TestNewRedisBusRequiresAddr(t *testing.T) {
	log, _ := logger.New("test")
	if _, err := NewRedisBus(log, " ", ""); err == nil {
		t.Fatalf("expected error for empty addr")
	}
	if _, err := NewRedisBus(nil, "localhost:6379", ""); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}
