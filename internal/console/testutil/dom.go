package testutil

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// ParseResponse drains resp and parses the console markup it carries.
func ParseResponse(t testing.TB, resp *http.Response) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(ReadBody(t, resp)))
	if err != nil {
		t.Fatalf("parse console markup: %v", err)
	}
	return doc
}

// SubmissionToken returns the one-shot token rendered into a product form.
func SubmissionToken(t testing.TB, doc *goquery.Document) string {
	t.Helper()

	token := doc.Find("input[name=submission_token]").AttrOr("value", "")
	if token == "" {
		t.Fatalf("product form has no submission token")
	}
	return token
}
