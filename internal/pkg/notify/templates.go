package notify

// Template identifiers.
const (
	TemplateCourseEnrollment      = "course_enrollment"
	TemplateDigitalProduct        = "digital_product_purchase"
	TemplateBundle                = "bundle_purchase"
	TemplateBeatPurchase          = "beat_purchase"
	TemplateCredits               = "credits_purchase"
	TemplatePlaylistSubmission    = "playlist_submission"
	TemplateMixingService         = "mixing_service"
	TemplateCoaching              = "coaching_confirmation"
	TemplateTip                   = "tip_confirmation"
	TemplateMembership            = "membership_confirmation"
	TemplatePPRProWelcome         = "ppr_pro_welcome"
	TemplatePaymentFailed         = "payment_failed"
	TemplateSubscriptionCancelled = "subscription_cancelled"
)

type templateSource struct {
	subject string
	body    string
}

const layoutHead = `<!DOCTYPE html><html><body style="font-family: sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">`

const layoutFoot = `<p style="font-size: 12px; color: #94a3b8; margin-top: 30px;">PPR Academy Team</p></body></html>`

var templateSources = map[string]templateSource{
	TemplateCourseEnrollment: {
		subject: `You're enrolled in {{.Title}}`,
		body: `<h1>Welcome, {{.Name}}!</h1>
<p>Your enrollment in <strong>{{.Title}}</strong> is confirmed.</p>
<p>Amount paid: {{amount .Amount .Currency}}</p>`,
	},
	TemplateDigitalProduct: {
		subject: `Your purchase: {{.Title}}`,
		body: `<h1>Thanks, {{.Name}}!</h1>
<p><strong>{{.Title}}</strong> is now available in your library.</p>
<p>Amount paid: {{amount .Amount .Currency}}</p>`,
	},
	TemplateBundle: {
		subject: `Your bundle: {{.Title}}`,
		body: `<h1>Thanks, {{.Name}}!</h1>
<p>Your bundle <strong>{{.Title}}</strong> with {{.Detail "itemCount"}} items is ready.</p>
<p>Amount paid: {{amount .Amount .Currency}}</p>`,
	},
	TemplateBeatPurchase: {
		subject: `Your beat license: {{.Title}}`,
		body: `<h1>Thanks, {{.Name}}!</h1>
<p>You licensed <strong>{{.Title}}</strong> ({{.Detail "tierName"}}).</p>
{{if eq (.Detail "tierType") "exclusive"}}<p>This is an exclusive license. The beat has been removed from the marketplace.</p>{{end}}
<p>Amount paid: {{amount .Amount .Currency}}</p>`,
	},
	TemplateCredits: {
		subject: `{{.Detail "credits"}} credits added to your account`,
		body: `<h1>Thanks, {{.Name}}!</h1>
<p>Your purchase of <strong>{{.Title}}</strong> added {{.Detail "credits"}} credits{{if ne (.Detail "bonusCredits") "0"}} plus {{.Detail "bonusCredits"}} bonus credits{{end}}.</p>
<p>Amount paid: {{amount .Amount .Currency}}</p>`,
	},
	TemplatePlaylistSubmission: {
		subject: `Submission received: {{.Detail "trackName"}}`,
		body: `<h1>Hi {{.Name}},</h1>
<p>Your track <strong>{{.Detail "trackName"}}</strong> was submitted to <strong>{{.Title}}</strong>.</p>
{{with .Detail "message"}}<p>Your message: {{.}}</p>{{end}}
<p>Submission fee: {{amount .Amount .Currency}}</p>`,
	},
	TemplateMixingService: {
		subject: `Your {{.Detail "serviceType"}} order: {{.Title}}`,
		body: `<h1>Thanks, {{.Name}}!</h1>
<p>Your {{.Detail "serviceType"}} order <strong>{{.Title}}</strong> ({{.Detail "tierName"}}) is confirmed.</p>
<p>Turnaround: {{.Detail "turnaroundDays"}} days{{if eq (.Detail "isRush") "true"}} (rush){{end}}, {{.Detail "revisions"}} revisions included.</p>
<p>Amount paid: {{amount .Amount .Currency}}</p>`,
	},
	TemplateCoaching: {
		subject: `Coaching session booked: {{.Title}}`,
		body: `<h1>Hi {{.Name}},</h1>
<p>Your session <strong>{{.Title}}</strong> is booked for {{.Detail "scheduledDate"}} at {{.Detail "scheduledTime"}} ({{.Detail "duration"}}).</p>
<p>Amount paid: {{amount .Amount .Currency}}</p>`,
	},
	TemplateTip: {
		subject: `Thank you for your tip!`,
		body: `<h1>Thank you, {{.Name}}!</h1>
<p>Your tip of {{amount .Amount .Currency}} to <strong>{{.Title}}</strong> was received.</p>
{{with .Detail "message"}}<p>Your message: {{.}}</p>{{end}}`,
	},
	TemplateMembership: {
		subject: `Welcome to {{.Title}}`,
		body: `<h1>Welcome, {{.Name}}!</h1>
<p>Your <strong>{{.Detail "tierName"}}</strong> membership in <strong>{{.Title}}</strong> is active.</p>
<p>{{amount .Amount .Currency}} billed {{.Detail "billingCycle"}}.</p>`,
	},
	TemplatePPRProWelcome: {
		subject: `Welcome to PPR Pro`,
		body: `<h1>Welcome to PPR Pro, {{.Name}}!</h1>
<p>Your {{.Detail "plan"}} plan is active{{with .Detail "trialEndsAt"}}, your trial runs until {{.}}{{end}}.</p>`,
	},
	TemplatePaymentFailed: {
		subject: `Payment Issue - Action Required for {{.Title}}`,
		body: `<h1>Hi {{.Name}},</h1>
<p>We couldn't process your payment of {{amount .Amount .Currency}} for <strong>{{.Title}}</strong>.</p>
<p>Reason: {{.Detail "failureReason"}}</p>
<p>Please update your payment method to keep access.</p>`,
	},
	TemplateSubscriptionCancelled: {
		subject: `Your subscription to {{.Title}} was cancelled`,
		body: `<h1>Hi {{.Name}},</h1>
<p>Your subscription to <strong>{{.Title}}</strong> has been cancelled.</p>
<p>You keep access until {{.Detail "accessEndsAt"}}.</p>`,
	},
}
