package i18n

import "testing"

func TestParseAcceptLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   Locale
	}{
		{"", LocaleEn},
		{"en", LocaleEn},
		{"en-US,en;q=0.9", LocaleEn},
		{"hi", LocaleHi},
		{"hi-IN,hi;q=0.9,en-US;q=0.8", LocaleHi},
		{"fr-FR,fr;q=0.9", LocaleEn}, // unsupported → fallback
		{"en-GB", LocaleEn},
	}

	for _, tt := range tests {
		got := ParseAcceptLanguage(tt.header)
		if got != tt.want {
			t.Errorf("ParseAcceptLanguage(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestBundleTranslation(t *testing.T) {
	b := NewBundle(LocaleEn)
	for locale, msgs := range DefaultMessages() {
		b.LoadMessages(locale, msgs)
	}

	// English
	if got := b.T(LocaleEn, "queue.not_found"); got != "Queue item not found" {
		t.Errorf("en queue.not_found = %q", got)
	}

	// Hindi
	if got := b.T(LocaleHi, "queue.not_found"); got != "कतार आइटम नहीं मिला" {
		t.Errorf("hi queue.not_found = %q", got)
	}

	// Unknown key returns the key itself
	if got := b.T(LocaleEn, "unknown.key"); got != "unknown.key" {
		t.Errorf("unknown key = %q, want key itself", got)
	}

	// Format args
	if got := b.T(LocaleEn, "rate_limit.exceeded", 30); got != "Request limit exceeded. Please try again in 30 seconds" {
		t.Errorf("rate_limit with args = %q", got)
	}

	// Notification subject templates render the posting title
	if got := b.T(LocaleEn, "notify.posting_approved.subject", "Diwali photos"); got != "Your posting \"Diwali photos\" has been approved" {
		t.Errorf("approved subject = %q", got)
	}
}

func TestBundleFallbackToEnglish(t *testing.T) {
	b := NewBundle(LocaleEn)
	b.LoadMessages(LocaleEn, map[string]string{"only.english": "English only"})
	b.LoadMessages(LocaleHi, map[string]string{})

	if got := b.T(LocaleHi, "only.english"); got != "English only" {
		t.Errorf("expected fallback to English, got %q", got)
	}
}
