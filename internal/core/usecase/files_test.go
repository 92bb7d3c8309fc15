package usecase

import (
	"testing"
	"time"
)

func TestSanitizeTitle(t *testing.T) {
	cases := map[string]string{
		"Fence Replacement":        "fence-replacement",
		"  Déck & Pergola (2026) ": "dck--pergola-2026",
		"???":                      "quote",
		"":                         "quote",
		"Kitchen\tReno  #4":        "kitchen-reno-4",
	}
	for in, want := range cases {
		if got := sanitizeTitle(in); got != want {
			t.Errorf("sanitizeTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPDFKey(t *testing.T) {
	now := time.UnixMilli(1756600000000).UTC()
	if got := pdfKey("Fence Replacement", now); got != "pdfs/fence-replacement-1756600000000.pdf" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := pdfKey("", now); got != "pdfs/quote-1756600000000.pdf" {
		t.Fatalf("fallback key wrong: %s", got)
	}
}

func TestPublicURL(t *testing.T) {
	if got := publicURL("https://api.example.com/", "pdfs/a.pdf"); got != "https://api.example.com/pdfs/a.pdf" {
		t.Fatalf("unexpected url: %s", got)
	}
	if got := publicURL("", "pdfs/a.pdf"); got != "pdfs/a.pdf" {
		t.Fatalf("expected bare key, got %s", got)
	}
}
