package docstore

import (
	"context"
	"encoding/json"

	"github.com/klokku/studyplan/pkg/user"
)

// SessionRouter sends demo sessions to the ephemeral backend and every other
// session to the durable one. Both backends hold documents of the same shape.
type SessionRouter struct {
	durable   Store
	ephemeral Store
}

func NewSessionRouter(durable Store, ephemeral Store) *SessionRouter {
	return &SessionRouter{durable: durable, ephemeral: ephemeral}
}

func (r *SessionRouter) pick(ctx context.Context) Store {
	if u, err := user.CurrentUser(ctx); err == nil && u.Demo {
		return r.ephemeral
	}
	return r.durable
}

func (r *SessionRouter) GetDocument(ctx context.Context, owner string, collection string, id string) (json.RawMessage, error) {
	return r.pick(ctx).GetDocument(ctx, owner, collection, id)
}

func (r *SessionRouter) SetDocument(ctx context.Context, owner string, collection string, id string, data json.RawMessage) error {
	return r.pick(ctx).SetDocument(ctx, owner, collection, id, data)
}

func (r *SessionRouter) DeleteDocument(ctx context.Context, owner string, collection string, id string) error {
	return r.pick(ctx).DeleteDocument(ctx, owner, collection, id)
}

func (r *SessionRouter) ListAllDocuments(ctx context.Context, owner string, collection string) (map[string]json.RawMessage, error) {
	return r.pick(ctx).ListAllDocuments(ctx, owner, collection)
}
