package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

// EmailLogger is the operational notification sink: every message becomes a
// self-addressed email. Delivery failures are logged and surfaced to the
// caller, but callers treat the sink as fire-and-forget.
type EmailLogger struct {
	Host     string
	Port     int
	User     string
	Password string
	To       string
}

func NewEmailLogger(host string, port int, user, password string) *EmailLogger {
	return &EmailLogger{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		To:       user,
	}
}

func (s *EmailLogger) LogInfo(message string) error {
	return s.send("Info Notification", message)
}

func (s *EmailLogger) LogSuccess(message string) error {
	return s.send("Success Notification", message)
}

func (s *EmailLogger) LogError(message string) error {
	return s.send("Error Notification", message)
}

func (s *EmailLogger) send(subject, message string) error {
	body, err := renderNotification(notificationData{
		Subject:   subject,
		Timestamp: time.Now().Format(time.RFC1123),
		Lines:     splitLines(message),
	})
	if err != nil {
		return fmt.Errorf("render notification template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.User)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		log.Printf("❌ EmailLogger: failed to send %q email: %v", subject, err)
		return fmt.Errorf("send notification email: %w", err)
	}

	return nil
}

func splitLines(message string) []string {
	var lines []string
	for _, line := range strings.Split(message, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

var notificationTmpl = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <title>{{.Subject}}</title>
  </head>
  <body style="font-family: 'Segoe UI', Arial, sans-serif; background-color: #f6f8fb; margin: 0; padding: 24px;">
    <table role="presentation" style="max-width: 640px; margin: 0 auto; background-color: #ffffff; border-radius: 12px; padding: 32px;">
      <tr>
        <td>
          <p style="text-transform: uppercase; letter-spacing: 0.08em; font-size: 12px; color: #8992a3; margin: 0 0 8px;">{{.Timestamp}}</p>
          <h1 style="margin: 0 0 16px; font-size: 22px; color: #0f172a;">{{.Subject}}</h1>
          <div style="line-height: 1.5;">
            {{range .Lines}}<p style="margin: 0 0 12px; color: #1b1e27;">{{.}}</p>
            {{end}}
          </div>
          <p style="margin-top: 24px; font-size: 13px; color: #6b7280;">This email was generated automatically by the reconciliation service.</p>
        </td>
      </tr>
    </table>
  </body>
</html>`))

func renderNotification(data notificationData) (string, error) {
	var buf bytes.Buffer
	if err := notificationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
