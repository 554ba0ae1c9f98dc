package firebase

import "testing"

func TestChunkTokens(t *testing.T) {
	tokens := make([]string, 1203)
	for i := range tokens {
		tokens[i] = "t"
	}

	chunks := chunkTokens(tokens, fcmBatchLimit)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if len(chunks[0]) != 500 || len(chunks[1]) != 500 || len(chunks[2]) != 203 {
		t.Errorf("chunk sizes = %d %d %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if got := chunkTokens(nil, fcmBatchLimit); len(got) != 0 {
		t.Errorf("empty input produced %d chunks", len(got))
	}
}

func TestRedact(t *testing.T) {
	tests := map[string]string{
		"short":                     "****",
		"fcm-token-abcdefgh12345678": "****12345678",
	}
	for in, want := range tests {
		if got := redact(in); got != want {
			t.Errorf("redact(%q) = %q, want %q", in, got, want)
		}
	}
}
