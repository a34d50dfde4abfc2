// Package notify delivers best-effort confirmation and failure messages.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/ManuelReschke/CreatorHub/internal/pkg/errreport"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/metrics"
	"github.com/gofiber/fiber/v2/log"
)

// ErrUnknownTemplate is returned for template IDs without a registered template.
var ErrUnknownTemplate = errors.New("unknown notification template")

// Mailer delivers a rendered message.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Payload is the data rendered into a notification template.
type Payload struct {
	To       string
	Name     string
	Title    string
	Amount   int64
	Currency string
	Details  map[string]string
}

// Detail returns a template-specific value, empty when unset.
func (p Payload) Detail(key string) string {
	return p.Details[key]
}

// Outcome is the result of a send attempt. Err is set only for failed
// deliveries; a skipped send is not a failure.
type Outcome struct {
	Sent    bool
	Skipped bool
	Err     error
}

// Failed reports whether delivery was attempted and did not succeed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

type compiled struct {
	subject *texttemplate.Template
	body    *template.Template
}

// Dispatcher renders and sends notifications. Send never returns an error to
// its caller; failures are logged, reported and returned as an Outcome.
type Dispatcher struct {
	mailer    Mailer
	reporter  errreport.Reporter
	templates map[string]compiled
	mu        sync.RWMutex
}

// NewDispatcher compiles the built-in templates. It panics on a broken
// template since those are part of the binary.
func NewDispatcher(mailer Mailer, reporter errreport.Reporter) *Dispatcher {
	if reporter == nil {
		reporter = errreport.NewNopReporter()
	}
	d := &Dispatcher{
		mailer:    mailer,
		reporter:  reporter,
		templates: make(map[string]compiled, len(templateSources)),
	}
	for id, src := range templateSources {
		if err := d.Register(id, src.subject, src.body); err != nil {
			panic(err)
		}
	}
	return d
}

// Register adds or replaces a template.
func (d *Dispatcher) Register(id, subject, body string) error {
	funcs := map[string]interface{}{"amount": FormatAmount}

	st, err := texttemplate.New(id + ":subject").Funcs(funcs).Parse(subject)
	if err != nil {
		return fmt.Errorf("parse subject of %s: %w", id, err)
	}
	bt, err := template.New(id).Funcs(funcs).Parse(layoutHead + body + layoutFoot)
	if err != nil {
		return fmt.Errorf("parse body of %s: %w", id, err)
	}

	d.mu.Lock()
	d.templates[id] = compiled{subject: st, body: bt}
	d.mu.Unlock()
	return nil
}

// Render produces the subject and HTML body of a template.
func (d *Dispatcher) Render(templateID string, payload Payload) (string, string, error) {
	d.mu.RLock()
	tpl, ok := d.templates[templateID]
	d.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownTemplate, templateID)
	}

	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, payload); err != nil {
		return "", "", fmt.Errorf("render subject of %s: %w", templateID, err)
	}
	if err := tpl.body.Execute(&body, payload); err != nil {
		return "", "", fmt.Errorf("render body of %s: %w", templateID, err)
	}
	return strings.TrimSpace(subject.String()), body.String(), nil
}

// Send renders and delivers a notification. A payload without recipient is skipped.
func (d *Dispatcher) Send(ctx context.Context, templateID string, payload Payload) (out Outcome) {
	if strings.TrimSpace(payload.To) == "" {
		log.Debugf("[Notify] Skipping %s: no recipient", templateID)
		return Outcome{Skipped: true}
	}

	defer func() {
		if r := recover(); r != nil {
			out = d.fail(ctx, templateID, fmt.Errorf("panic: %v", r))
		}
	}()

	subject, body, err := d.Render(templateID, payload)
	if err != nil {
		return d.fail(ctx, templateID, err)
	}
	if d.mailer == nil {
		return d.fail(ctx, templateID, errors.New("no mailer configured"))
	}
	if err := d.mailer.Send(ctx, payload.To, subject, body); err != nil {
		return d.fail(ctx, templateID, err)
	}

	log.Infof("[Notify] Sent %s to %s", templateID, payload.To)
	return Outcome{Sent: true}
}

func (d *Dispatcher) fail(ctx context.Context, templateID string, err error) Outcome {
	err = fmt.Errorf("send %s: %w", templateID, err)
	log.Errorf("[Notify] %v", err)
	metrics.NotificationFailures.WithLabelValues(templateID).Inc()
	d.reporter.Report(ctx, err, map[string]string{"component": "notify", "template": templateID})
	return Outcome{Err: err}
}

// FormatAmount renders minor currency units, e.g. 2999 USD as "29.99 USD".
func FormatAmount(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	cur := strings.ToUpper(strings.TrimSpace(currency))
	if cur == "" {
		cur = "USD"
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, minor/100, minor%100, cur)
}
