package grpcserver

import (
	"context"

	"github.com/and161185/factshare/internal/model"
	"github.com/gofrs/uuid/v5"
)

type ctxKey string

const identityKey ctxKey = "fs.identity"

// Identity is the authenticated caller of an RPC.
type Identity struct {
	User      model.User
	SessionID uuid.UUID
}

// WithIdentity stores the authenticated caller in context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromCtx fetches the authenticated caller from context.
func IdentityFromCtx(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.User.ID == uuid.Nil {
		return Identity{}, false
	}
	return id, true
}
