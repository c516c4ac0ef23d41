package grpcserver

import (
	"context"
	"testing"

	"github.com/and161185/factshare/internal/model"
	"github.com/gofrs/uuid/v5"
)

func TestWithIdentity_And_IdentityFromCtx(t *testing.T) {
	t.Parallel()

	if _, ok := IdentityFromCtx(context.Background()); ok {
		t.Fatalf("expected no identity in empty ctx")
	}

	want := Identity{User: model.User{ID: uuid.Must(uuid.NewV4()), Name: "Alice"}, SessionID: uuid.Must(uuid.NewV4())}
	got, ok := IdentityFromCtx(WithIdentity(context.Background(), want))
	if !ok {
		t.Fatalf("expected identity in ctx")
	}
	if got.User.ID != want.User.ID || got.SessionID != want.SessionID {
		t.Fatalf("mismatch: got %+v, want %+v", got, want)
	}

	bad := context.WithValue(context.Background(), identityKey, "not-identity")
	if _, ok := IdentityFromCtx(bad); ok {
		t.Fatalf("expected miss on wrong typed value")
	}
	if _, ok := IdentityFromCtx(WithIdentity(context.Background(), Identity{})); ok {
		t.Fatalf("expected miss on zero identity")
	}
}
