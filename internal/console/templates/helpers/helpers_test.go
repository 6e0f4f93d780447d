package helpers

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/OmerTuregun/product-catalog/internal/console/rbac"
)

func TestPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount float64
		symbol string
		tag    language.Tag
		want   string
	}{
		{name: "english grouping", amount: 1234.5, symbol: "$", tag: language.English, want: "1,234.50 $"},
		{name: "no symbol", amount: 12, symbol: "", tag: language.English, want: "12.00"},
		{name: "turkish separators", amount: 1234.5, symbol: "₺", tag: language.Turkish, want: "1.234,50 ₺"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Price(tc.amount, tc.symbol, tc.tag); got != tc.want {
				t.Errorf("Price(%v) = %q, want %q", tc.amount, got, tc.want)
			}
		})
	}
}

func TestParseLocaleFallsBackToEnglish(t *testing.T) {
	t.Parallel()

	if got := ParseLocale("not a tag!"); got != language.English {
		t.Fatalf("expected English fallback, got %v", got)
	}
	if got := ParseLocale("tr"); got != language.Turkish {
		t.Fatalf("expected Turkish, got %v", got)
	}
}

func TestMarkdownSanitises(t *testing.T) {
	t.Parallel()

	out := string(Markdown("**bold** <script>alert(1)</script>"))
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("expected emphasis rendered, got %q", out)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("script tag must be stripped, got %q", out)
	}
	if Markdown("   ") != "" {
		t.Errorf("blank description should render nothing")
	}
}

func TestHighlight(t *testing.T) {
	t.Parallel()

	segments := Highlight("Desk Lamp lamp", "LAMP")
	if len(segments) != 4 {
		t.Fatalf("expected 4 segments, got %+v", segments)
	}
	if !segments[1].Match || segments[1].Text != "Lamp" {
		t.Errorf("unexpected first match %+v", segments[1])
	}
	if !segments[3].Match || segments[3].Text != "lamp" {
		t.Errorf("unexpected second match %+v", segments[3])
	}

	if got := Highlight("Chair", ""); len(got) != 1 || got[0].Match {
		t.Errorf("empty term should yield one plain segment, got %+v", got)
	}
	if got := Highlight("", "x"); got != nil {
		t.Errorf("empty text should yield nil, got %+v", got)
	}
}

func TestHighlightKeepsRuneBoundaries(t *testing.T) {
	t.Parallel()

	got := Highlight("İ lamp Ⱥ", "lamp")
	want := []Segment{{Text: "İ "}, {Text: "lamp", Match: true}, {Text: " Ⱥ"}}
	if len(got) != len(want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}

	// The Kelvin sign folds to an ASCII k but is three bytes wide.
	got = Highlight("\u212Aelvin lamp", "kelvin")
	if len(got) != 2 || !got[0].Match || got[0].Text != "\u212Aelvin" || got[1].Text != " lamp" {
		t.Errorf("unexpected segments %+v", got)
	}
}

func TestJoinBase(t *testing.T) {
	t.Parallel()

	cases := []struct {
		base, suffix, want string
	}{
		{base: "/", suffix: "/products", want: "/products"},
		{base: "", suffix: "products", want: "/products"},
		{base: "/console/", suffix: "/products", want: "/console/products"},
		{base: "console", suffix: "/categories", want: "/console/categories"},
	}
	for _, tc := range cases {
		if got := JoinBase(tc.base, tc.suffix); got != tc.want {
			t.Errorf("JoinBase(%q, %q) = %q, want %q", tc.base, tc.suffix, got, tc.want)
		}
	}
}

func TestHasCapabilityWithoutUser(t *testing.T) {
	t.Parallel()

	if HasCapability(context.Background(), rbac.CapCatalogView) {
		t.Fatal("anonymous context must not hold capabilities")
	}
}
