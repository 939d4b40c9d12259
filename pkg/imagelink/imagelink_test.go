package imagelink

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{
			"https://drive.google.com/file/d/1AbC_d-9/view?usp=sharing",
			"https://drive.google.com/uc?export=view&id=1AbC_d-9",
		},
		{
			"drive.google.com/file/d/XYZ",
			"https://drive.google.com/uc?export=view&id=XYZ",
		},
		{"https://example.com/layer.png", "https://example.com/layer.png"},
		{"/srv/themes/layer1.png", "/srv/themes/layer1.png"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
