package domain

// FinalizePrompt carries everything the model needs for the finalization
// pass. PreservedScope is the verbatim scope-of-work block extracted from
// the draft; the model is instructed to reuse it untouched so content the
// user already approved is never silently regenerated.
type FinalizePrompt struct {
	JobDescription string
	Details        map[string]string
	Profile        *CompanyProfile
	HasSitePhoto   bool
	QuoteTitle     string
	PreservedScope string
}
