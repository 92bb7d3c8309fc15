package domain

type EmailKind string

const (
	EmailQuoteLimitReached EmailKind = "quote_limit_reached"
	EmailQuoteFinalized    EmailKind = "quote_finalized"
)

// EmailMessage is the payload published on the queue for the mail worker.
// Params feed the HTML template selected by Kind.
type EmailMessage struct {
	Kind   EmailKind         `json:"kind"`
	To     string            `json:"to"`
	Params map[string]string `json:"params,omitempty"`
}
