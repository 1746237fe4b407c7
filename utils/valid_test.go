package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"escapes html", `<script>alert("x")</script>`, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;"},
		{"strips control characters", "he\x00llo\x1f", "hello"},
		{"plain text untouched", "Beirut, Hamra Street", "Beirut, Hamra Street"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeInput(tt.input))
		})
	}
}

func TestSanitizeEmail(t *testing.T) {
	email, err := SanitizeEmail("  Lina.Haddad@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "lina.haddad@example.com", email)

	for _, bad := range []string{"", "not-an-email", "a@b", "@example.com", "user@"} {
		_, err := SanitizeEmail(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestSanitizeStringArray(t *testing.T) {
	got := SanitizeStringArray([]string{" arabic ", "<b>french</b>", "english"})
	assert.Equal(t, []string{"arabic", "&lt;b&gt;french&lt;/b&gt;", "english"}, got)
}
