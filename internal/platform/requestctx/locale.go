// Package requestctx carries per-request values through context.
package requestctx

import (
	"context"

	"golang.org/x/text/language"
)

// localeContextKey is the context key for the resolved request locale.
type localeContextKey struct{}

// WithLocale stores a resolved language tag in context.
func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, localeContextKey{}, tag)
}

// LocaleFromContext returns the language tag stored in context.
// It falls back to English when no locale was resolved.
func LocaleFromContext(ctx context.Context) language.Tag {
	if ctx == nil {
		return language.English
	}
	value, ok := ctx.Value(localeContextKey{}).(language.Tag)
	if !ok {
		return language.English
	}
	return value
}
