package middleware

import (
	"net/http"

	"golang.org/x/text/language"
)

// supported is ordered by preference; the first entry wins ties
var supported = language.NewMatcher([]language.Tag{
	language.Bengali,
	language.English,
})

// Language negotiates the response language from Accept-Language.
// A request without the header keeps language.Und so the body's lang field,
// or the Bengali default, decides.
func Language(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Accept-Language")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		tags, _, err := language.ParseAcceptLanguage(header)
		if err != nil || len(tags) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		// A no-confidence match is the matcher's guess, not the caller's choice
		tag := language.Bengali
		if _, index, conf := supported.Match(tags...); conf != language.No && index == 1 {
			tag = language.English
		}

		w.Header().Set("Content-Language", tag.String())
		next.ServeHTTP(w, r.WithContext(WithLanguage(r.Context(), tag)))
	})
}
