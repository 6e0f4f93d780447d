package helpers

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	markdown  = goldmark.New()
	sanitizer = bluemonday.UGCPolicy()
)

// Price formats an amount with locale grouping followed by the currency symbol.
func Price(amount float64, symbol string, tag language.Tag) string {
	formatted := message.NewPrinter(tag).Sprintf("%.2f", amount)
	if symbol = strings.TrimSpace(symbol); symbol == "" {
		return formatted
	}
	return formatted + " " + symbol
}

// ParseLocale resolves a BCP 47 tag, defaulting to English on bad input.
func ParseLocale(raw string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return language.English
	}
	return tag
}

// Markdown renders src as sanitised HTML. Raw HTML in src never survives.
func Markdown(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}

// StockLabel is the badge text for a stock flag.
func StockLabel(inStock bool) string {
	if inStock {
		return "In stock"
	}
	return "Out of stock"
}

// StockTone maps a stock flag to a badge tone.
func StockTone(inStock bool) string {
	if inStock {
		return "success"
	}
	return "muted"
}

// BadgeClass maps semantic tones to utility classes.
func BadgeClass(tone string) string {
	switch tone {
	case "success":
		return "badge badge-success"
	case "danger":
		return "badge badge-danger"
	default:
		return "badge badge-muted"
	}
}
