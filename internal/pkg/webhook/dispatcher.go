package webhook

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/ManuelReschke/CreatorHub/internal/pkg/billing"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/errreport"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/metrics"
	"github.com/gofiber/fiber/v2/log"
)

// AnyProductType registers a handler for every product type of an event type.
const AnyProductType = "*"

type route struct {
	eventType   string
	productType string
}

// HandlerFailure is a handler run whose core mutation failed.
type HandlerFailure struct {
	Handler string
	Err     error
}

// DispatchReport summarizes the handler runs for one event.
type DispatchReport struct {
	Handled     []string
	Skipped     []string
	Failures    []HandlerFailure
	ProductType string
}

// Failed reports whether any handler failed.
func (r DispatchReport) Failed() bool {
	return len(r.Failures) > 0
}

// Err joins all handler failures into one error, nil when none failed.
func (r DispatchReport) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		msgs = append(msgs, fmt.Sprintf("%s: %v", f.Handler, f.Err))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Dispatcher routes events to handlers by event type and product type.
type Dispatcher struct {
	routes   map[route][]Handler
	reporter errreport.Reporter
}

// NewDispatcher creates an empty routing table.
func NewDispatcher(reporter errreport.Reporter) *Dispatcher {
	if reporter == nil {
		reporter = errreport.NewNopReporter()
	}
	return &Dispatcher{routes: make(map[route][]Handler), reporter: reporter}
}

// Register adds a handler for an event type and product type. Use
// AnyProductType to match regardless of the product type.
func (d *Dispatcher) Register(eventType, productType string, h Handler) *Dispatcher {
	key := route{eventType: eventType, productType: productType}
	d.routes[key] = append(d.routes[key], h)
	return d
}

// Handlers returns the handlers that apply to ev, exact product matches first.
func (d *Dispatcher) Handlers(ev *billing.Event) []Handler {
	var matched []Handler
	if ev.ProductType != "" && ev.ProductType != AnyProductType {
		matched = append(matched, d.routes[route{eventType: ev.Type, productType: ev.ProductType}]...)
	}
	matched = append(matched, d.routes[route{eventType: ev.Type, productType: AnyProductType}]...)

	applicable := matched[:0]
	for _, h := range matched {
		if h.CanHandle(ev) {
			applicable = append(applicable, h)
		}
	}
	return applicable
}

// Dispatch runs every applicable handler in its own isolation boundary. An
// unmatched event is a successful no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *billing.Event) DispatchReport {
	report := DispatchReport{ProductType: ev.ProductType}

	handlers := d.Handlers(ev)
	if len(handlers) == 0 {
		log.Infof("[Dispatcher] No handler for %s (%s), acknowledging", ev.Type, productLabel(ev.ProductType))
		return report
	}

	for _, h := range handlers {
		res := d.isolate(ctx, h, ev)
		if res.ProductType != "" {
			report.ProductType = res.ProductType
		}

		for _, o := range res.Outcomes {
			if o.Err == nil {
				continue
			}
			log.Warnf("[Dispatcher] %s step %s failed for %s: %v", h.Name(), o.Step, ev.ID, o.Err)
			d.reporter.Report(ctx, o.Err, map[string]string{
				"component": "webhook",
				"handler":   h.Name(),
				"step":      o.Step,
				"event_id":  ev.ID,
			})
		}

		switch {
		case res.Err != nil:
			log.Errorf("[Dispatcher] %s failed for %s: %v", h.Name(), ev.ID, res.Err)
			metrics.WebhookHandlerFailuresTotal.WithLabelValues(h.Name()).Inc()
			d.reporter.Report(ctx, res.Err, map[string]string{
				"component":  "webhook",
				"handler":    h.Name(),
				"event_id":   ev.ID,
				"event_type": ev.Type,
			})
			report.Failures = append(report.Failures, HandlerFailure{Handler: h.Name(), Err: res.Err})
		case res.Skipped:
			log.Warnf("[Dispatcher] %s skipped %s: %s", h.Name(), ev.ID, res.Reason)
			report.Skipped = append(report.Skipped, h.Name())
		default:
			report.Handled = append(report.Handled, h.Name())
		}
	}
	return report
}

// isolate runs one handler and turns a panic into a handler failure.
func (d *Dispatcher) isolate(ctx context.Context, h Handler, ev *billing.Event) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[Dispatcher] %s panicked on %s: %v\n%s", h.Name(), ev.ID, r, debug.Stack())
			res = Result{Err: fmt.Errorf("handler panic: %v", r)}
		}
	}()
	return h.Handle(ctx, ev)
}

func productLabel(productType string) string {
	if productType == "" {
		return "no product type"
	}
	return productType
}
