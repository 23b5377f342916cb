package presence

import (
	"context"
	"testing"
	"time"
)

func TestSlotScriptsCompile(t *testing.T) {
	// Compile-time smoke test: scripts should be initialized.
	if slotAcquireScript == nil || slotReleaseScript == nil {
		t.Fatalf("expected scripts to be initialized")
	}
}

func TestAcquireConsoleSlot_RejectsInvalidArgs(t *testing.T) {
	if _, err := AcquireConsoleSlot(context.Background(), nil, "a", time.Minute); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestReleaseConsoleSlot_RejectsInvalidArgs(t *testing.T) {
	if err := ReleaseConsoleSlot(context.Background(), nil, "a"); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestSnapshot_RejectsNilClient(t *testing.T) {
	c := NewCache(nil, time.Minute, nil)
	if _, err := c.Snapshot(context.Background()); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
