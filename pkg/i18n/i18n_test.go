package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAcceptLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", LocaleEnglish},
		{"ar", LocaleArabic},
		{"ar-EG,ar;q=0.9,en;q=0.8", LocaleArabic},
		{"en-US,en;q=0.9,ar;q=0.5", LocaleEnglish},
		{"fr-FR,ar;q=0.7", LocaleArabic},
		{"de-DE", LocaleEnglish},
		{"not a language;;", LocaleEnglish},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAcceptLanguage(tt.header))
		})
	}
}

func TestLocalizer_T(t *testing.T) {
	assert.Equal(t, "N/A", NewLocalizer(LocaleEnglish).T("report.not_available"))
	assert.Equal(t, "غير متوفر", NewLocalizer(LocaleArabic).T("report.not_available"))

	// Unknown locales fall back to English.
	assert.Equal(t, LocaleEnglish, NewLocalizer("xx").GetLocale())

	// Missing keys return the key itself.
	assert.Equal(t, "report.nope", T("report.nope"))

	assert.Equal(t, "Scan job not found", T("errors.not_found", map[string]string{"resource": "Scan job"}))
}

func TestTFromContext(t *testing.T) {
	ctx := WithLocale(context.Background(), LocaleArabic)
	assert.Equal(t, "دقة عالية", TFromContext(ctx, "accuracy.high"))
	assert.Equal(t, "High accuracy", TFromContext(context.Background(), "accuracy.high"))
}

func TestMiddleware(t *testing.T) {
	var got string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetLocaleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ar")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, LocaleArabic, got)

	req = httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	req.Header.Set("Accept-Language", "ar")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, LocaleEnglish, got)

	req = httptest.NewRequest(http.MethodGet, "/?lang=zz", nil)
	req.Header.Set("Accept-Language", "ar")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, LocaleArabic, got)
}
