package i18n

import (
	"golang.org/x/text/language"

	"github.com/kevinypfan/my-site/locale"
)

// Negotiate picks the supported locale that best matches an Accept-Language
// header. It returns def when the header is empty, malformed, or matches
// nothing with any confidence.
func Negotiate(acceptLanguage string, supported []locale.Code, def locale.Code) locale.Code {
	if acceptLanguage == "" {
		return def
	}
	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return def
	}

	codes := []locale.Code{def}
	tags := []language.Tag{language.Make(string(def))}
	for _, c := range supported {
		if c == def {
			continue
		}
		tag, err := language.Parse(string(c))
		if err != nil {
			continue
		}
		codes = append(codes, c)
		tags = append(tags, tag)
	}

	_, idx, conf := language.NewMatcher(tags).Match(desired...)
	if conf == language.No || idx < 0 || idx >= len(codes) {
		return def
	}
	return codes[idx]
}
