package i18n

import (
	"net/http"
)

// Middleware extracts locale from Accept-Language header and adds it to context.
// A ?lang= query parameter naming a supported locale wins over the header so
// report download links can pin a language.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := r.URL.Query().Get("lang")
		if !IsSupported(locale) {
			locale = ParseAcceptLanguage(r.Header.Get("Accept-Language"))
		}

		next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), locale)))
	})
}
