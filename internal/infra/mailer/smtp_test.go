package mailer_test

import (
	"testing"

	"maltiti/internal/infra/mailer"
	"maltiti/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_WithAction(t *testing.T) {
	html, err := mailer.Render(notify.Email{
		Name:        "Ama",
		Subject:     "Verify your email",
		Body:        "Please verify.",
		ActionURL:   "https://api.test/auth/verify/u/t",
		ActionLabel: "Verify email",
	})
	require.NoError(t, err)

	s := string(html)
	assert.Contains(t, s, "Hello Ama,")
	assert.Contains(t, s, `href="https://api.test/auth/verify/u/t"`)
	assert.Contains(t, s, "Verify email")
}

func TestRender_EscapesBody(t *testing.T) {
	html, err := mailer.Render(notify.Email{Subject: "x", Body: "<script>alert(1)</script>"})
	require.NoError(t, err)

	s := string(html)
	assert.NotContains(t, s, "<script>")
	assert.Contains(t, s, "Hello there,")
	assert.NotContains(t, s, "<a href")
}
