package rag

import "testing"

func TestCleanPDFText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "headers page numbers and hyphen wrap",
			in:   "UNDERSTANDING INSURANCE\n4\nThis is the pol-\nicy text.",
			want: "This is the policy text.",
		},
		{
			name: "photo header dropped",
			in:   "PHOTO\nComprehensive cover includes theft.",
			want: "Comprehensive cover includes theft.",
		},
		{
			name: "soft hyphen and nbsp",
			in:   "third­party cover",
			want: "thirdparty cover",
		},
		{
			name: "private use glyph becomes bullet",
			in:   "\uf0fc Fire damage\n\uf0fc Flood damage",
			want: "\u2022 Fire damage \u2022 Flood damage",
		},
		{
			name: "other private use glyphs removed",
			in:   "claims\ue123 process",
			want: "claims process",
		},
		{
			name: "whitespace collapsed",
			in:   "  a \t b \n\n c  ",
			want: "a b c",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanPDFText(tt.in)
			if got != tt.want {
				t.Errorf("CleanPDFText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanPDFTextIdempotent(t *testing.T) {
	inputs := []string{
		"UNDERSTANDING INSURANCE\n4\nThis is the pol-\nicy text.",
		"\uf0fc covered \uf0fc not covered",
		"plain sentence with no artifacts.",
		"  12  \n text around a page number \n 34 ",
	}
	for _, in := range inputs {
		once := CleanPDFText(in)
		twice := CleanPDFText(once)
		if once != twice {
			t.Errorf("CleanPDFText not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
