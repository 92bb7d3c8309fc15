package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FREE_TIER_QUOTE_LIMIT", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("NATS_EMAIL_SUBJECT", "")
	t.Setenv("SMTP_PORT", "")

	cfg := Load()
	if cfg.FreeTierQuoteLimit != 2 {
		t.Fatalf("expected default quote limit 2, got %d", cfg.FreeTierQuoteLimit)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Fatalf("expected default model gpt-4o, got %q", cfg.OpenAIModel)
	}
	if cfg.NATSEmailSubject != "emails.requested" {
		t.Fatalf("expected default email subject, got %q", cfg.NATSEmailSubject)
	}
	if cfg.SMTPPort != 587 {
		t.Fatalf("expected default smtp port 587, got %d", cfg.SMTPPort)
	}
}

func TestLoadOverridesAndBadValues(t *testing.T) {
	t.Setenv("FREE_TIER_QUOTE_LIMIT", "5")
	t.Setenv("FREE_TIER_RPS", "0.5")
	t.Setenv("SMTP_PORT", "not-a-number")

	cfg := Load()
	if cfg.FreeTierQuoteLimit != 5 {
		t.Fatalf("expected quote limit override 5, got %d", cfg.FreeTierQuoteLimit)
	}
	if cfg.FreeTierRPS != 0.5 {
		t.Fatalf("expected rps override 0.5, got %v", cfg.FreeTierRPS)
	}
	if cfg.SMTPPort != 587 {
		t.Fatalf("unparseable port must fall back to 587, got %d", cfg.SMTPPort)
	}
}
