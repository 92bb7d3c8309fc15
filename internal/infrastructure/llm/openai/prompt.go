package openai

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quoteflowhq/quoteflow/internal/core/domain"
)

const draftSystemPrompt = `You are a quoting assistant for trade businesses. From the job description (and site photo, if provided) produce a draft quote.

Respond with a single JSON object and nothing else, using exactly these keys:
- "quoteTitle": a short descriptive title for the job.
- "pdfContent": the draft quote body in markdown. It must contain a "### Scope of Work" section listing the work as bullet points, a "### Summary" section with a markdown table (columns "Items" and "Cost", final row "Total Cost"), and a "### Project Timeline" section with a markdown table.
- "shortMessage": one friendly sentence telling the user the draft is ready and what to fill in next.
- "requiredInputs": an array of sections, each {"label": string, "fields": [{"name": string, "type": string, "placeholder": string, "prefix": string}]}. Field "type" is one of "text", "number", "date", "textarea", "tel", "email". Always include a "Bill To" section with fields "client_name", "contact_number", "email_address" and a "Quote Details" section with fields "quote_number", "quote_date", "due_date". Add further sections only for details genuinely missing from the description.

Estimate realistic line-item costs for the region implied by the description. Never invent client contact details.`

const finalSystemPrompt = `You are a quoting assistant producing the final version of a quote as plain markdown. Output markdown only, no code fences and no commentary.

Emit the document as sections in exactly this order, each starting with a "### " heading:
### Bill To
### Quote Details
### Summary
### Quote Title
### Scope of Work
### Project Timeline

Rules:
- "Bill To" lists the client's name, contact number and email address, one per line.
- "Quote Details" lists quote number, quote date and due date as "Label: value" lines.
- "Summary" is a markdown table with columns "Items" and "Cost" and a final "Total Cost" row. Costs are plain dollar amounts.
- "Quote Title" contains only the quote title on a single line.
- "Scope of Work" must reproduce the preserved scope EXACTLY as given, word for word. Do not rephrase, reorder or extend it.
- "Project Timeline" is a markdown table with columns "Milestone" and "Date", including "Target Kickoff" and "Anticipated Completion" rows with concrete dates.
- If a site photo exists, append a final "### Site Photo" section containing the single line "Photo of the work site is attached below."`

// finalUserPrompt assembles the finalization request from the stored
// draft plus the user's filled-in details.
func finalUserPrompt(p domain.FinalizePrompt) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Job description:\n%s\n\n", p.JobDescription)
	if p.QuoteTitle != "" {
		fmt.Fprintf(&b, "Quote title: %s\n\n", p.QuoteTitle)
	}

	if len(p.Details) > 0 {
		b.WriteString("Details provided by the user:\n")
		keys := make([]string, 0, len(p.Details))
		for k := range p.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, p.Details[k])
		}
		b.WriteString("\n")
	}

	if p.Profile != nil {
		b.WriteString("Issuing company:\n")
		writeProfileLine(&b, "Name", p.Profile.Name)
		writeProfileLine(&b, "Address", p.Profile.Address)
		writeProfileLine(&b, "Phone", p.Profile.Phone)
		writeProfileLine(&b, "Email", p.Profile.Email)
		writeProfileLine(&b, "Website", p.Profile.Website)
		b.WriteString("\n")
	}

	if p.HasSitePhoto {
		b.WriteString("A site photo exists and will be attached to the document.\n\n")
	} else {
		b.WriteString("No site photo exists. Do not emit a Site Photo section.\n\n")
	}

	fmt.Fprintf(&b, "Preserved scope of work (reproduce verbatim):\n%s\n", p.PreservedScope)
	return b.String()
}

func writeProfileLine(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, value)
}

// extractJSONObject cuts the first top-level JSON object out of a model
// reply, tolerating code fences and prose around it.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
