package rtctoken

import (
	"context"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestHMACIssuerRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	i, err := NewHMACIssuer("channel-secret", "callpay", 5*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	i.clock = fixedClock(now)

	cred, err := i.Issue(context.Background(), "channel-42")
	if err != nil {
		t.Fatal(err)
	}
	if cred.ChannelID != "channel-42" {
		t.Fatalf("channel id = %s", cred.ChannelID)
	}
	if !cred.ExpiresAt.Equal(now.Add(5 * time.Minute)) {
		t.Fatalf("expires at = %s", cred.ExpiresAt)
	}

	got, err := i.Verify(cred.Token, now.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if got != "channel-42" {
		t.Fatalf("verified channel = %s", got)
	}
}

func TestHMACIssuerExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	i, err := NewHMACIssuer("channel-secret", "callpay", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	i.clock = fixedClock(now)

	cred, err := i.Issue(context.Background(), "channel-42")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := i.Verify(cred.Token, now.Add(time.Hour)); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestHMACIssuerRejectsBadInput(t *testing.T) {
	if _, err := NewHMACIssuer("", "callpay", time.Minute); err == nil {
		t.Fatal("expected error for empty secret")
	}

	i, err := NewHMACIssuer("channel-secret", "callpay", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := i.Issue(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty channel id")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := i.Issue(ctx, "channel-42"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestHMACIssuerWrongSecret(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a, _ := NewHMACIssuer("secret-a", "callpay", time.Minute)
	a.clock = fixedClock(now)
	b, _ := NewHMACIssuer("secret-b", "callpay", time.Minute)

	cred, err := a.Issue(context.Background(), "channel-42")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Verify(cred.Token, now); err == nil {
		t.Fatal("expected verification with wrong secret to fail")
	}
}
