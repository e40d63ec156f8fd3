package auth

import (
	"context"
	"testing"
)

func TestIdentityContext(t *testing.T) {
	ctx := WithIdentity(context.Background(), "user-1", "support")

	uid, err := UserID(ctx)
	if err != nil || uid != "user-1" {
		t.Fatalf("UserID = %q, %v", uid, err)
	}
	role, err := Role(ctx)
	if err != nil || role != "support" {
		t.Fatalf("Role = %q, %v", role, err)
	}
}

func TestIdentityContextMissing(t *testing.T) {
	if _, err := UserID(context.Background()); err == nil {
		t.Fatal("expected error for missing user_id")
	}
	if _, err := Role(context.Background()); err == nil {
		t.Fatal("expected error for missing role")
	}
}
