package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_EscapesUserInput(t *testing.T) {
	html, err := Render(TemplateStatusUpdate, StatusUpdateData{
		FullName: "Jean <script>alert(1)</script>",
		Nupcan:   "GC20250101-ABCDEFGH",
		Title:    "Document rejeté",
		Message:  "Votre document a été rejeté.",
		Reason:   "Scan illisible",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Scan illisible")
	assert.Contains(t, html, "GC20250101-ABCDEFGH")
	assert.NotContains(t, html, "<script>")
}

func TestRender_AdminCredentials(t *testing.T) {
	html, err := Render(TemplateAdminCredentials, AdminCredentialsData{
		FullName:        "Awa Ndong",
		InstitutionName: "ENS Libreville",
		Email:           "awa@ens.ga",
		TempPassword:    "tmp-pass-123",
		LoginURL:        "http://localhost:3000/admin/login",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "tmp-pass-123")
	assert.Contains(t, html, "ENS Libreville")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render("missing.html", nil)
	assert.Error(t, err)
}

func TestSMTPMailer_RejectsEmptyRecipient(t *testing.T) {
	m := NewSMTPMailer(Options{Host: "localhost", Port: 25})
	err := m.Send(context.Background(), Message{Subject: "x", HTML: "<p>x</p>"})
	assert.Error(t, err)
}
