package web

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/ebriony/castlight/internal/platform/requestctx"
)

var supportedLocales = language.NewMatcher([]language.Tag{
	language.English, // fallback
	language.Italian,
	language.German,
	language.French,
})

// resolveLocale picks the response locale from the lang query parameter,
// falling back to Accept-Language.
func resolveLocale(r *http.Request) language.Tag {
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		if tag, err := language.Parse(lang); err == nil {
			matched, _, _ := supportedLocales.Match(tag)
			return matched
		}
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return language.English
	}
	matched, _, _ := supportedLocales.Match(tags...)
	return matched
}

// withLocale attaches the resolved request locale to the request context and
// echoes it in the Content-Language response header.
func withLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := resolveLocale(r)
		w.Header().Set("Content-Language", locale.String())
		ctx := requestctx.WithLocale(r.Context(), locale)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
