// Package requestctx carries the authenticated actor and client details
// through a request's context.
package requestctx

import "context"

type ctxKey int

const (
	actorKey ctxKey = iota
	clientKey
	correlationKey
)

// Actor is the authenticated employee performing a request.
type Actor struct {
	ID          string
	Email       string
	Designation string
}

// Client describes where a request came from.
type Client struct {
	IP        string
	UserAgent string
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey).(Actor)
	return actor, ok
}

// ActorID returns the actor id or nil when the request is anonymous.
func ActorID(ctx context.Context) *string {
	actor, ok := ActorFrom(ctx)
	if !ok || actor.ID == "" {
		return nil
	}
	id := actor.ID
	return &id
}

func WithClient(ctx context.Context, client Client) context.Context {
	return context.WithValue(ctx, clientKey, client)
}

func ClientFrom(ctx context.Context) Client {
	client, _ := ctx.Value(clientKey).(Client)
	return client
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey, id)
}

func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey).(string)
	return id
}
