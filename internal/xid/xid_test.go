package xid

import (
	"strings"
	"testing"
)

func TestNewIsPrefixedAndUnique(t *testing.T) {
	a, b := New("req"), New("req")
	if !strings.HasPrefix(a, "req-") {
		t.Fatalf("expected req- prefix, got %s", a)
	}
	if a == b {
		t.Fatalf("expected distinct ids, got %s twice", a)
	}
}
