// Package translate formats user visible messages for the host locale.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printerOnce sync.Once
	printer     *message.Printer
)

// DefaultLocale is used when the host locale cannot be determined.
const DefaultLocale = "en-US"

func getPrinter() *message.Printer {
	printerOnce.Do(func() {
		locales, err := locale.GetLocales()
		if err != nil {
			log.Printf("chip8: locale: %v", err)
		}

		if len(locales) == 0 {
			locales = []string{DefaultLocale}
		}

		printer = message.NewPrinter(message.MatchLanguage(locales...))
	})

	return printer
}

// SetLocale forces the message locale, overriding the host locale.
func SetLocale(tag string) (err error) {
	lang, err := language.Parse(tag)
	if err != nil {
		return
	}

	getPrinter()
	printer = message.NewPrinter(lang)
	return
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return getPrinter().Sprintf(key, args...)
}
