package logger

import "testing"

func TestSanitizeKVsRedactsSecretsAndHashesIdentities(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"access_token", "abc",
		"user_id", "0b5e5f8a-4b52-4a8c-9a55-1f4e3c1f1f11",
		"dataset_id", "42",
		"dangling",
	})
	if len(out) != 7 {
		t.Fatalf("unexpected length: %d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("token not redacted: %v", out[1])
	}
	hashed, _ := out[3].(string)
	if len(hashed) != len("hash:")+12 {
		t.Fatalf("user_id not hashed: %v", out[3])
	}
	if out[5] != "42" {
		t.Fatalf("dataset_id should pass through: %v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("dangling key dropped: %v", out[6])
	}
}

func TestLooksLikeJWT(t *testing.T) {
	if !looksLikeJWT("eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig") {
		t.Fatalf("expected jwt-shaped string to match")
	}
	if looksLikeJWT("550-600") {
		t.Fatalf("range text must not look like a jwt")
	}
}

func TestNewTestModeIsQuiet(t *testing.T) {
	l, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.With("service", "x").Info("discarded", "k", "v")
	l.Sync()
}
