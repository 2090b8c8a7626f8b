package app

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Cafe de Pijp", "cafe-de-pijp"},
		{"  De Pijp  ", "de-pijp"},
		{"Café! de -- Pijp?", "caf-de-pijp"},
		{"---", ""},
		{"", ""},
		{"ALREADY-GOOD-123", "already-good-123"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeHeader(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Name", "name"},
		{"  Price Level ", "price_level"},
		{"neighborhood-slug", "neighborhood_slug"},
		{"Review   Count", "review_count"},
		{"category_slug", "category_slug"},
	}
	for _, c := range cases {
		if got := NormalizeHeader(c.in); got != c.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormWebsite(t *testing.T) {
	if got := normWebsite("example.com"); got == nil || *got != "https://example.com/" {
		t.Errorf("normWebsite(example.com) = %v", strOrNil(got))
	}
	if got := normWebsite("https://a.example/path"); got == nil || *got != "https://a.example/path" {
		t.Errorf("normWebsite kept path wrong: %v", strOrNil(got))
	}
	if got := normWebsite("not a url"); got != nil {
		t.Errorf("expected nil for junk website, got %q", *got)
	}
	if got := normWebsite("   "); got != nil {
		t.Errorf("expected nil for blank website, got %q", *got)
	}
}

func TestNumericNormalization(t *testing.T) {
	if got := normPriceLevel("3"); got == nil || *got != 3 {
		t.Errorf("price_level=3 not kept: %v", got)
	}
	if got := normPriceLevel("7"); got != nil {
		t.Errorf("price_level=7 should be nil, got %d", *got)
	}
	if got := normPriceLevel("abc"); got != nil {
		t.Errorf("unparseable price_level should be nil, got %d", *got)
	}
	if got := normRating("4.2"); got == nil || *got != 4.2 {
		t.Errorf("rating=4.2 not kept: %v", got)
	}
	if got := normRating("5.5"); got != nil {
		t.Errorf("rating=5.5 should be nil, got %v", *got)
	}
	if got := normReviewCount("123.6"); got != 124 {
		t.Errorf("review_count rounds, got %d", got)
	}
	if got := normReviewCount(""); got != 0 {
		t.Errorf("missing review_count defaults to 0, got %d", got)
	}
	if got := normReviewCount("-5"); got != 0 {
		t.Errorf("negative review_count clamps to 0, got %d", got)
	}
}

func strOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
