package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	TemplateAdminCredentials = "admin_credentials.html"
	TemplateStatusUpdate     = "status_update.html"
)

type AdminCredentialsData struct {
	FullName        string
	InstitutionName string
	Email           string
	TempPassword    string
	LoginURL        string
}

type StatusUpdateData struct {
	FullName  string
	Nupcan    string
	Title     string
	Message   string
	Reason    string
	Approved  bool
	PortalURL string
}

// Render executes one of the embedded HTML templates.
func Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
