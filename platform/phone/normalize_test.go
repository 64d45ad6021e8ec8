package phone

import "testing"

func TestNormalizeE164KoreanMobile(t *testing.T) {
	got := NormalizeE164(" 010-1234-5678 ")
	if got != "+821012345678" {
		t.Fatalf("expected +821012345678, got %q", got)
	}
}

func TestNormalizeE164KeepsUnparseableInput(t *testing.T) {
	got := NormalizeE164("call the office")
	if got != "call the office" {
		t.Fatalf("expected input to be kept, got %q", got)
	}
}

func TestNormalizeE164Empty(t *testing.T) {
	if got := NormalizeE164("   "); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
