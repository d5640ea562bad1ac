package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

type followUpReminderEmailData struct {
	baseEmailData
	BusinessName string
	Workspace    string
	DueDate      string
	Note         string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderFollowUpReminder(reminder FollowUpReminder) (string, error) {
	return renderEmailTemplate("follow_up_reminder.html", followUpReminderEmailData{
		baseEmailData: baseEmailData{
			Title:   "Follow-up due",
			Heading: "Time to follow up",
		},
		BusinessName: reminder.BusinessName,
		Workspace:    reminder.Workspace,
		DueDate:      reminder.DueAt.UTC().Format("Mon 02 Jan 2006 15:04 MST"),
		Note:         reminder.Note,
	})
}
