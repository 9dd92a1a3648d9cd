package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const (
	KindWelcome  = "welcome"
	KindApproval = "approval"
	KindReset    = "reset"
)

var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937; max-width: 600px; margin: 0 auto; padding: 24px;">
<h1 style="color: #4f46e5;">{{.AppName}}</h1>
{{template "content" .}}
<p style="color: #6b7280; font-size: 12px; margin-top: 32px;">You are receiving this email because of activity on your {{.AppName}} account.</p>
</body>
</html>`))

var contents = map[string]string{
	KindWelcome: `{{define "content"}}
<p>Hi {{.Name}},</p>
<p>Thanks for signing up for {{.AppName}}! Your account is pending approval.</p>
<p>An administrator will review your request shortly. You will receive another email as soon as your account is approved.</p>
{{end}}`,
	KindApproval: `{{define "content"}}
<p>Hi {{.Name}},</p>
<p>Great news! Your {{.AppName}} account has been approved. You can now log in and start tracking your practice.</p>
<p><a href="{{.Link}}" style="background: #4f46e5; color: #ffffff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Log in</a></p>
{{end}}`,
	KindReset: `{{define "content"}}
<p>Hi {{.Name}},</p>
<p>We received a request to reset your {{.AppName}} password. Click the button below to choose a new one.</p>
<p><a href="{{.Link}}" style="background: #4f46e5; color: #ffffff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Reset password</a></p>
<p>This link is valid for 1 hour. If you did not request a reset, you can ignore this email.</p>
{{end}}`,
}

var subjects = map[string]string{
	KindWelcome:  "Welcome to %s - Pending Approval",
	KindApproval: "Your %s Account Has Been Approved!",
	KindReset:    "Reset Your %s Password",
}

type templateData struct {
	AppName string
	Name    string
	Link    string
}

// Templates renders the three transactional emails.
type Templates struct {
	appName string
	baseURL string
	parsed  map[string]*template.Template
}

func NewTemplates(appName, baseURL string) (*Templates, error) {
	parsed := make(map[string]*template.Template, len(contents))
	for kind, body := range contents {
		t, err := template.Must(layout.Clone()).Parse(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", kind, err)
		}
		parsed[kind] = t
	}
	return &Templates{
		appName: appName,
		baseURL: strings.TrimRight(baseURL, "/"),
		parsed:  parsed,
	}, nil
}

func (t *Templates) render(kind, to, name, link string) (Message, error) {
	if name == "" {
		name = "there"
	}
	var buf bytes.Buffer
	data := templateData{AppName: t.appName, Name: name, Link: link}
	if err := t.parsed[kind].Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("failed to render %s email: %w", kind, err)
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf(subjects[kind], t.appName),
		HTML:    buf.String(),
		Kind:    kind,
	}, nil
}

func (t *Templates) Welcome(to, name string) (Message, error) {
	return t.render(KindWelcome, to, name, "")
}

func (t *Templates) Approval(to, name string) (Message, error) {
	return t.render(KindApproval, to, name, t.baseURL+"/login")
}

// Reset takes the full reset link so the URL format stays with the reset flow.
func (t *Templates) Reset(to, name, link string) (Message, error) {
	return t.render(KindReset, to, name, link)
}
