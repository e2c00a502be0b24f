// Package i18n resolves request languages and formats dates the way the
// reader's locale writes them.
package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

var (
	dateTags = []language.Tag{
		language.AmericanEnglish,
		language.BritishEnglish,
		language.French,
		language.German,
	}
	dateLayouts = []string{
		"1/2/2006",
		"02/01/2006",
		"02/01/2006",
		"2.1.2006",
	}
	dateMatcher = language.NewMatcher(dateTags)
)

// PreferredTags returns the request's Accept-Language tags in preference
// order, or nil when the header is absent or malformed.
func PreferredTags(r *http.Request) []language.Tag {
	if r == nil {
		return nil
	}
	accept := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if accept == "" {
		return nil
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil {
		return nil
	}
	return tags
}

// FormatDate renders t as a short numeric date for the closest supported
// locale, defaulting to US English.
func FormatDate(t time.Time, preferred ...language.Tag) string {
	if t.IsZero() {
		return ""
	}
	idx := 0
	if len(preferred) > 0 {
		if _, matched, confidence := dateMatcher.Match(preferred...); confidence != language.No {
			idx = matched
		}
	}
	return t.UTC().Format(dateLayouts[idx])
}
