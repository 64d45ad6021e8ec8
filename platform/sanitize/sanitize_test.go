package sanitize

import "testing"

func TestStripHTMLRemovesEncodedTags(t *testing.T) {
	got := StripHTML("Stage &lt;script&gt;alert(1)&lt;/script&gt; rental")
	if got != "Stage alert(1) rental" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestNameCollapsesWhitespace(t *testing.T) {
	got := Name("  LED \n\t wall  <b>rental</b> ")
	if got != "LED wall rental" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestTextPtrNil(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Fatal("expected nil")
	}
}
