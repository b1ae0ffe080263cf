package ctxutil

import "context"

type requestDataKey struct{}

// RequestData carries the authenticated identity for the current request.
// UserID is the opaque Memberstack member id (e.g. "mem_abc123"), never a
// local database key.
type RequestData struct {
	UserID string
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey{})
	rd, ok := val.(*RequestData)
	if !ok {
		return nil
	}
	return rd
}
