package logger

import "testing"

func TestSanitizeKVsRedactsSecretsAndContactFields(t *testing.T) {
	redactOnce.Do(func() {})
	redactionEnabled = true
	hashSalt = ""

	out := sanitizeKVs([]interface{}{
		"password", "hunter2",
		"visitor_phone", "+91 99999 00000",
		"id_proof", "AADHAAR-1234",
		"asset_code", "ASSET202600001",
	})
	if len(out) != 8 {
		t.Fatalf("kv length: want=8 got=%d", len(out))
	}
	if out[1] != "[REDACTED]" || out[3] != "[REDACTED]" || out[5] != "[REDACTED]" {
		t.Fatalf("expected redaction, got=%v", out)
	}
	if out[7] != "ASSET202600001" {
		t.Fatalf("asset_code should pass through, got=%v", out[7])
	}
}

func TestSanitizeKVsHashesActorIdentifiers(t *testing.T) {
	redactOnce.Do(func() {})
	redactionEnabled = true

	out := sanitizeKVs([]interface{}{"actor_id", "7f0c2d7e-3f0a-4f65-9d3c-5b1e4e0d2a11"})
	got, ok := out[1].(string)
	if !ok || len(got) != len("hash:")+12 {
		t.Fatalf("expected hashed actor id, got=%v", out[1])
	}
}
