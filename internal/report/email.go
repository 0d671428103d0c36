// Package report turns a daily delta into human-readable output: an HTML
// email for the team and styled terminal tables for local preview.
package report

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/rkharel/annoreport/internal/config"
	"github.com/rkharel/annoreport/internal/stats"
)

// Data is everything the daily report renders.
type Data struct {
	ProjectName    string
	Date           string // YYYYMMDD
	Delta          *stats.Delta
	SnapshotPath   string // "" when both save locations failed
	AnnotationsDir string
	Filenames      []string // downloaded annotation exports
}

// NewData assembles report data for one pipeline run.
func NewData(projectName string, delta *stats.Delta, snapshotPath, annotationsDir string, filenames []string, now time.Time) Data {
	return Data{
		ProjectName:    projectName,
		Date:           now.Format("20060102"),
		Delta:          delta,
		SnapshotPath:   snapshotPath,
		AnnotationsDir: annotationsDir,
		Filenames:      filenames,
	}
}

var emailTmpl = template.Must(template.New("report").Parse(`<html>
  <head>
    <style>
      body { font-family: sans-serif; }
      table { border-collapse: collapse; width: 80%; }
      th, td { border: 1px solid #dddddd; text-align: left; padding: 8px; }
      th { background-color: #f2f2f2; }
      ul { margin-top: 5px; }
    </style>
  </head>
  <body>
    <h2>Daily {{.ProjectName}} Annotation Report</h2>
{{- if .Delta}}
    <h3>New Tasks Done Today</h3>
{{- if .Delta.New}}
    <table>
      <tr><th>task_id</th><th>job_id</th><th>task_name</th><th>frames</th><th>Assignee</th><th>frames_annotated</th><th>unique_obj_annotated</th><th>total_obj_annotated</th></tr>
{{- range .Delta.New}}
      <tr><td>{{.TaskID}}</td><td>{{.JobID}}</td><td>{{.TaskName}}</td><td>{{.Frames}}</td><td>{{.Assignee}}</td><td>{{.FramesAnnotated}}</td><td>{{.UniqueObjAnnotated}}</td><td>{{.TotalObjAnnotated}}</td></tr>
{{- end}}
    </table>
{{- else}}
    <p>No new tasks were added today.</p>
{{- end}}
    <br>
    <h3>Updates to Existing Tasks</h3>
{{- if .Delta.Changed}}
    <table>
      <tr><th>task_id</th><th>task_name</th><th>Assignee</th><th>frames_annotated</th><th>total_obj_annotated</th><th>frames_added</th><th>obj_added</th></tr>
{{- range .Delta.Changed}}
      <tr><td>{{.TaskID}}</td><td>{{.TaskName}}</td><td>{{.Assignee}}</td><td>{{.FramesAnnotated}}</td><td>{{.TotalObjAnnotated}}</td><td>{{.FramesAdded}}</td><td>{{.ObjAdded}}</td></tr>
{{- end}}
    </table>
{{- else}}
    <p>No changes were detected in existing tasks.</p>
{{- end}}
{{- else}}
    <p>No previous snapshot was found; comparison was skipped.</p>
{{- end}}
    <hr>
{{- if .Filenames}}
    <h3>{{len .Filenames}} new annotation files downloaded:</h3>
    <p>at: {{.AnnotationsDir}}/{{.Date}}</p>
    <ul>
{{- range .Filenames}}
      <li>{{.}}</li>
{{- end}}
    </ul>
{{- else}}
    <p>No new annotation files were downloaded today.</p>
{{- end}}
    <br>
{{- if .SnapshotPath}}
    <p>Today's full CSV report is saved at: {{.SnapshotPath}}</p>
{{- else}}
    <p>Today's CSV report could not be saved.</p>
{{- end}}
  </body>
</html>
`))

// ComposeHTML renders the email body.
func ComposeHTML(data Data) (string, error) {
	var sb strings.Builder
	if err := emailTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return sb.String(), nil
}

// Mailer sends the daily report over SMTP.
type Mailer struct {
	cfg config.Email
	log *slog.Logger
}

// NewMailer creates a mailer from email config.
func NewMailer(log *slog.Logger, cfg config.Email) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// Send composes and mails the report. A send failure is logged and
// returned but must not abort the pipeline: the snapshot and exports are
// already on disk at this point.
func (m *Mailer) Send(data Data) error {
	body, err := ComposeHTML(data)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%s annotation report for %s", data.ProjectName, data.Date)
	recipients := append([]string{m.cfg.Destination}, m.cfg.CC...)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.Sender)
	fmt.Fprintf(&msg, "To: %s\r\n", m.cfg.Destination)
	if len(m.cfg.CC) > 0 {
		fmt.Fprintf(&msg, "Cc: %s\r\n", strings.Join(m.cfg.CC, ", "))
	}
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPServer, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPServer)

	if err := smtp.SendMail(addr, auth, m.cfg.Sender, recipients, []byte(msg.String())); err != nil {
		m.log.Error("could not send report email", "date", data.Date, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info("report email sent", "recipients", recipients)
	return nil
}
