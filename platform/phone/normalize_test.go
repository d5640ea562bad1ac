package phone

import "testing"

func TestRegion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "US"},
		{"us", "US"},
		{"GB", "GB"},
		{"United States", "US"},
		{" canada ", "CA"},
		{"Atlantis", "US"},
	}
	for _, tt := range tests {
		if got := Region(tt.in); got != tt.want {
			t.Errorf("Region(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		in      string
		country string
		want    string
	}{
		{"(201) 555-0123", "", "+12015550123"},
		{"+44 121 234 5678", "", "+441212345678"},
		{"0121 234 5678", "GB", "+441212345678"},
		{"  ", "", ""},
		{"not a number", "", "not a number"},
		{" 123 ", "", "123"},
	}
	for _, tt := range tests {
		if got := NormalizeE164(tt.in, tt.country); got != tt.want {
			t.Errorf("NormalizeE164(%q, %q) = %q, want %q", tt.in, tt.country, got, tt.want)
		}
	}
}
