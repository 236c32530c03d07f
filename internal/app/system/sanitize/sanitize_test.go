package sanitize_test

import (
	"testing"

	"github.com/nabs-75/SkillArena/internal/app/system/sanitize"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Friday Night Clash", "Friday Night Clash"},
		{"tags stripped", "<b>Friday</b> Night <script>alert(1)</script>Clash", "Friday Night Clash"},
		{"whitespace trimmed", "  Rocket League  ", "Rocket League"},
		{"only markup becomes empty", "<img src=x onerror=alert(1)>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitize.Text(tt.in); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
