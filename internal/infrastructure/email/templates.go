package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
)

var limitReachedTmpl = template.Must(template.New("quote_limit_reached").Parse(`<html>
<body style="font-family: sans-serif; color: #333333;">
	<h2 style="color: #4E9784;">You've used all your free quotes this month</h2>
	<p>You've reached your monthly limit of {{.quote_limit}} quotes on the free plan.</p>
	<p>Upgrade to keep quoting without limits, or wait until the start of next month when your allowance resets.</p>
</body>
</html>`))

var finalizedTmpl = template.Must(template.New("quote_finalized").Parse(`<html>
<body style="font-family: sans-serif; color: #333333;">
	<h2 style="color: #4E9784;">Your quote is ready</h2>
	<p>"{{.quote_title}}" has been finalized and the PDF is ready to send.</p>
	<p><a href="{{.document_url}}">Download the quote</a></p>
</body>
</html>`))

// render picks the template and subject line for a queued email.
func render(msg domain.EmailMessage) (subject, body string, err error) {
	var tmpl *template.Template
	switch msg.Kind {
	case domain.EmailQuoteLimitReached:
		tmpl = limitReachedTmpl
		subject = "You've reached your monthly quote limit"
	case domain.EmailQuoteFinalized:
		tmpl = finalizedTmpl
		subject = fmt.Sprintf("Your quote %q is ready", msg.Params["quote_title"])
	default:
		return "", "", fmt.Errorf("unknown email kind %q", msg.Kind)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, msg.Params); err != nil {
		return "", "", fmt.Errorf("render email %s: %w", msg.Kind, err)
	}
	return subject, buf.String(), nil
}
