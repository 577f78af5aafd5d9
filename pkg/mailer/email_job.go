package mailer

import (
	htmltpl "html/template"
	"strings"
	texttpl "text/template"
	"time"

	"github.com/samber/oops"
)

// EmailJob is a fully rendered message ready for a Sender.
type EmailJob struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Text     string `json:"text"`
	HTML     string `json:"html,omitempty"`
	Template string `json:"template"`
}

const (
	TemplateWelcome = "welcome"
	TemplateLockout = "account_locked"
)

type templateSet struct {
	subject string
	text    *texttpl.Template
	html    *htmltpl.Template
}

var templates = map[string]templateSet{
	TemplateWelcome: {
		subject: "Welcome aboard",
		text: texttpl.Must(texttpl.New("welcome.txt").Parse(
			"Hi {{.Name}},\n\nYour account {{.AccountID}} is ready. You can sign in now.\n")),
		html: htmltpl.Must(htmltpl.New("welcome.html").Parse(
			`<p>Hi {{.Name}},</p><p>Your account <strong>{{.AccountID}}</strong> is ready. You can sign in now.</p>`)),
	},
	TemplateLockout: {
		subject: "Sign-in temporarily locked",
		text: texttpl.Must(texttpl.New("locked.txt").Parse(
			"Hi {{.Name}},\n\nWe locked sign-in for {{.AccountID}} after repeated failed attempts from {{.IP}}.\n" +
				"You can try again after {{.Until}}.\n")),
		html: htmltpl.Must(htmltpl.New("locked.html").Parse(
			`<p>Hi {{.Name}},</p><p>We locked sign-in for <strong>{{.AccountID}}</strong> after repeated failed attempts from {{.IP}}.</p>` +
				`<p>You can try again after {{.Until}}.</p>`)),
	},
}

// TemplateData is what every template may reference.
type TemplateData struct {
	Name      string
	AccountID string
	IP        string
	Until     string
}

// Render builds the job for template name.
func Render(name, to string, data TemplateData) (EmailJob, error) {
	set, ok := templates[name]
	if !ok {
		return EmailJob{}, oops.Code("MAIL_TEMPLATE_UNKNOWN").With("template", name).Wrapf(ErrUndeliverable, "unknown mail template %q", name)
	}
	var text, html strings.Builder
	if err := set.text.Execute(&text, data); err != nil {
		return EmailJob{}, renderErr(name, err)
	}
	if err := set.html.Execute(&html, data); err != nil {
		return EmailJob{}, renderErr(name, err)
	}
	return EmailJob{To: to, Subject: set.subject, Text: text.String(), HTML: html.String(), Template: name}, nil
}

func renderErr(name string, err error) error {
	return oops.Code("MAIL_RENDER").With("template", name).Wrapf(ErrUndeliverable, "render %s: %v", name, err)
}

func formatUntil(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 MST")
}
