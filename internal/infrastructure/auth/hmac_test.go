package auth

import "testing"

func TestVerifyRoundTrip(t *testing.T) {
	v := NewHMACVerifier("test-secret")

	token := v.Sign("user-42")
	userID, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-42" {
		t.Fatalf("expected user-42, got %q", userID)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	v := NewHMACVerifier("test-secret")
	token := v.Sign("user-42")

	cases := map[string]string{
		"swapped user":  "user-43" + token[len("user-42"):],
		"no separator":  "user-42",
		"empty user":    v.Sign(""),
		"bad signature": "user-42.deadbeef",
		"wrong secret":  NewHMACVerifier("other-secret").Sign("user-42"),
	}
	for name, tok := range cases {
		if _, err := v.Verify(tok); err == nil {
			t.Errorf("%s: expected rejection", name)
		}
	}
}
