package audit

import (
	"context"
	"testing"
)

func TestService_AppendRequiresTypeAndActor(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Event{ActorUserID: "u"}); err == nil {
		t.Fatalf("expected error")
	}
	if err := svc.Append(context.Background(), Event{Type: EventTypeAccountCreated}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestService_AppendsImmutableEvents(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogAccountAction(context.Background(), EventTypeAccountDeleted, "admin-1", "admin", "1.2.3.4", "emp-9", "deleted account"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event")
	}
	if evs[0].IPAddress != "1.2.3.4" {
		t.Fatalf("expected ip captured")
	}
	if evs[0].Type != EventTypeAccountDeleted {
		t.Fatalf("expected account_deleted")
	}
	if evs[0].ID == "" || evs[0].CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp assigned")
	}
}
