package contextkeys

import "context"

type updateKindKey struct{}
type langKey struct{}

// UpdateKind is the routing class of an inbound update, computed once by the
// middleware chain.
type UpdateKind string

const (
	UpdateKindCommand  UpdateKind = "command"
	UpdateKindText     UpdateKind = "text"
	UpdateKindCallback UpdateKind = "callback"
	UpdateKindUnknown  UpdateKind = "unknown"
)

func WithUpdateKind(ctx context.Context, kind UpdateKind) context.Context {
	return context.WithValue(ctx, updateKindKey{}, kind)
}

func GetUpdateKind(ctx context.Context) (UpdateKind, bool) {
	v := ctx.Value(updateKindKey{})
	if v == nil {
		return UpdateKindUnknown, false
	}
	return v.(UpdateKind), true
}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

func GetLang(ctx context.Context) (string, bool) {
	v := ctx.Value(langKey{})
	if v == nil {
		return "", false
	}
	return v.(string), true
}
