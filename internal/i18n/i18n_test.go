package i18n

import "testing"

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		code string
		want Language
		ok   bool
	}{
		{"zh_CN.UTF-8", LangChinese, true},
		{"zh-TW", LangChinese, true},
		{"EN_us", LangEnglish, true},
		{"en", LangEnglish, true},
		{"C", "", false},
		{"fr_FR", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseLanguage(tt.code)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseLanguage(%q) = %q, %v", tt.code, got, ok)
		}
	}
}

func TestDetectOrder(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Language
	}{
		{"override wins", map[string]string{"STARBYTES_LANG": "zh", "LANG": "en_US.UTF-8"}, LangChinese},
		{"unsupported skipped", map[string]string{"LC_ALL": "C", "LANG": "zh_CN.UTF-8"}, LangChinese},
		{"nothing set", map[string]string{}, LangEnglish},
		{"nothing usable", map[string]string{"LANG": "POSIX"}, LangEnglish},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detect(func(k string) string { return tt.env[k] }); got != tt.want {
				t.Errorf("detect = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranslateFallsBack(t *testing.T) {
	defer SetLanguage(GetLanguage())

	SetLanguage(LangChinese)
	if got := T(ErrUnterminatedString); got == enMessages[ErrUnterminatedString] {
		t.Errorf("chinese text not used: %q", got)
	}
	if got := T("no.such.key"); got != "no.such.key" {
		t.Errorf("unknown key = %q", got)
	}

	SetLanguage(LangEnglish)
	if got := T(ErrExpectedToken, "')'", "EOF"); got != "expected ')', got EOF" {
		t.Errorf("formatted = %q", got)
	}
}

func TestCataloguesCoverSameKeys(t *testing.T) {
	for key := range enMessages {
		if _, ok := zhMessages[key]; !ok {
			t.Errorf("%s has no chinese text", key)
		}
	}
	for key := range zhMessages {
		if _, ok := enMessages[key]; !ok {
			t.Errorf("%s has no english text", key)
		}
	}
}
