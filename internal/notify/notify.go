// Package notify alerts on degraded runs. Delivery rides shoutrrr, so
// one configured URL covers Slack, Teams, Discord, email, and the rest
// of its services; no webhook plumbing of our own.
package notify

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/a8m/envsubst"
	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"
	"go.uber.org/zap"

	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

// DefaultTemplate is the message sent when the configuration does not
// override it: one headline plus a line per degraded category.
const DefaultTemplate = `{{ severityEmoji .Overall }} eos-healthcheck: {{ .Hostname }} is {{ upper .Overall }} ({{ .GeneratedAt }})
{{- range .Degraded }}
{{ severityEmoji .Severity }} {{ .Name }}: {{ .Severity }}
{{- end }}`

// Notifier sends run alerts over a shoutrrr URL. A notifier without a
// URL is valid and does nothing, so callers never branch on config.
type Notifier struct {
	url    string
	tmpl   *template.Template
	logger *zap.Logger

	// send defaults to shoutrrr delivery; overridden in tests.
	send func(rawURL, message string) error
}

// New builds a notifier. ${VAR} references in the URL are expanded from
// the environment so tokens stay out of config files. An empty URL
// yields a disabled notifier.
func New(rawURL, tmplText string, logger *zap.Logger) (*Notifier, error) {
	expanded, err := envsubst.String(rawURL)
	if err != nil {
		return nil, fmt.Errorf("expand notify url: %w", err)
	}

	if tmplText == "" {
		tmplText = DefaultTemplate
	}
	funcs := sprig.TxtFuncMap()
	funcs["severityEmoji"] = severityEmoji
	tmpl, err := template.New("notify").Funcs(funcs).Parse(tmplText)
	if err != nil {
		return nil, fmt.Errorf("parse notify template: %w", err)
	}

	return &Notifier{
		url:    expanded,
		tmpl:   tmpl,
		logger: logger.Named("notify"),
		send:   sendShoutrrr,
	}, nil
}

// Enabled reports whether a delivery URL is configured.
func (n *Notifier) Enabled() bool { return n.url != "" }

// Notify sends an alert when the report's overall severity is Warning
// or Critical. Healthy reports and disabled notifiers are no-ops.
func (n *Notifier) Notify(report *health.Report) error {
	if !n.Enabled() {
		return nil
	}
	if report.Overall == health.SeverityOk {
		n.logger.Debug("run healthy, no notification", zap.String("hostname", report.Hostname))
		return nil
	}

	msg, err := n.message(report)
	if err != nil {
		return err
	}
	if err := n.send(n.url, msg); err != nil {
		return err
	}

	n.logger.Info("notification sent",
		zap.String("hostname", report.Hostname),
		zap.String("overall", report.Overall.String()))
	return nil
}

// categoryLine is one rendered category entry.
type categoryLine struct {
	Name     string
	Severity string
}

// messageData is what templates see. Severities arrive as their
// lowercase names so string functions apply directly.
type messageData struct {
	Hostname    string
	Overall     string
	GeneratedAt string
	Categories  []categoryLine
	Degraded    []categoryLine
}

func (n *Notifier) message(report *health.Report) (string, error) {
	data := messageData{
		Hostname:    report.Hostname,
		Overall:     report.Overall.String(),
		GeneratedAt: report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"),
	}
	for _, c := range report.Categories() {
		line := categoryLine{Name: c.Name, Severity: c.Severity.String()}
		data.Categories = append(data.Categories, line)
		if c.Severity > health.SeverityOk {
			data.Degraded = append(data.Degraded, line)
		}
	}

	var buf bytes.Buffer
	if err := n.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render notify message: %w", err)
	}
	return buf.String(), nil
}

func severityEmoji(severity string) string {
	switch severity {
	case "critical":
		return "\U0001f534" // 🔴
	case "warning":
		return "\U0001f7e1" // 🟡
	default:
		return "\U0001f7e2" // 🟢
	}
}

func sendShoutrrr(rawURL, message string) error {
	sender, err := shoutrrr.CreateSender(rawURL)
	if err != nil {
		return fmt.Errorf("create notification sender: %w", err)
	}
	params := &types.Params{}
	for _, e := range sender.Send(message, params) {
		if e != nil {
			return fmt.Errorf("send notification: %w", e)
		}
	}
	return nil
}
