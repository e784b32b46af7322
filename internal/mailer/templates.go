package mailer

import (
	"fmt"
	"strings"
	"text/template"
)

// Known template names.
const (
	TemplateMeetingInvite = "meeting-invite"
)

// Body templates keyed by name. The subject comes from the locals so the
// invite composer can phrase it per meeting.
var bodyTemplates = template.Must(template.New("mailer").Parse(`
{{define "meeting-invite"}}Hi,

{{.Body}}

What: {{.Title}}
When: {{.When}}

This invitation was sent on behalf of {{.Host}}. Reply to this email to
reach them directly.
{{end}}`))

// renderTemplate renders a named body template with the given locals.
func renderTemplate(name string, locals map[string]string) (subject, body string, err error) {
	subject = locals["Subject"]
	if subject == "" {
		subject = locals["Title"]
	}
	if subject == "" {
		return "", "", fmt.Errorf("template %q: no subject in locals", name)
	}

	var b strings.Builder
	if err := bodyTemplates.ExecuteTemplate(&b, name, locals); err != nil {
		return "", "", fmt.Errorf("rendering template %q: %w", name, err)
	}
	return subject, strings.TrimSpace(b.String()) + "\n", nil
}
