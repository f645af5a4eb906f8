package handler

import (
	"testing"

	"vscobot/internal/domain"
)

func TestFormatCaption(t *testing.T) {
	got := FormatCaption("https://vsco.co/alice/media/abc123", &domain.ResolvedMedia{Description: "d", ProfileLink: "p", Name: "n"})
	want := "<b><a href=\"https://vsco.co/alice/media/abc123\">d</a></b>\n<i>By</i> <a href=\"https://p\">n</a>"
	if got != want {
		t.Fatalf("caption mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestFormatCaption_EscapesHTML(t *testing.T) {
	got := FormatCaption("https://vsco.co/a/media/1", &domain.ResolvedMedia{Description: "fish & <chips>", ProfileLink: "vsco.co/a", Name: `"Al"`})
	want := "<b><a href=\"https://vsco.co/a/media/1\">fish &amp; &lt;chips&gt;</a></b>\n<i>By</i> <a href=\"https://vsco.co/a\">&#34;Al&#34;</a>"
	if got != want {
		t.Fatalf("caption mismatch\n got: %q\nwant: %q", got, want)
	}
}
