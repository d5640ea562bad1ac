package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"called owner", "called owner"},
		{"  padded  ", "padded"},
		{"<b>bold</b> move", "bold move"},
		{"<script>alert(1)</script>ok", "alert(1)ok"},
		{"&lt;img src=x onerror=alert(1)&gt;hidden", "hidden"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"line one\nline two", "line one\nline two"},
	}

	for _, tt := range tests {
		if got := Text(tt.in); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hot lead", "hot lead"},
		{" follow \n up\tsoon ", "follow up soon"},
		{"<i>vip</i>", "vip"},
		{"<br>", ""},
	}

	for _, tt := range tests {
		if got := Line(tt.in); got != tt.want {
			t.Errorf("Line(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
