// Package translate localizes the user-visible messages of the toolchain.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

// DEFAULT_LANGUAGE is used when the host reports no locale.
const DEFAULT_LANGUAGE = "en-US"

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("rvasm: locale: %v", err)
	}

	SetLanguage(locales...)
}

// SetLanguage selects the message language best matching tags, in order
// of preference.
func SetLanguage(tags ...string) {
	if len(tags) == 0 {
		tags = []string{DEFAULT_LANGUAGE}
	}

	printer = message.NewPrinter(message.MatchLanguage(tags...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
