package entity

import "context"

type (
	CtxKeyLogger struct{}
	CtxKeyPage   struct{}
)

func PageFromCtx(ctx context.Context) Page {
	page, ok := ctx.Value(CtxKeyPage{}).(Page)
	if !ok {
		return ""
	}

	return page
}
