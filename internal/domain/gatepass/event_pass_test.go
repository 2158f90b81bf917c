package gatepass

import (
	"testing"
	"time"
)

func TestEventPassValidityWindow(t *testing.T) {
	from := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	p := &EventPass{ValidFrom: from, ValidUntil: from.Add(2 * time.Hour)}

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before window", from.Add(-time.Second), false},
		{"at valid_from", from, true},
		{"inside window", from.Add(time.Hour), true},
		{"at valid_until", from.Add(2 * time.Hour), false},
		{"after window", from.Add(3 * time.Hour), false},
	}
	for _, tc := range cases {
		if got := p.IsValid(tc.at); got != tc.want {
			t.Fatalf("%s: IsValid want=%v got=%v", tc.name, tc.want, got)
		}
	}
}

func TestEventPassUsedIsNeverValid(t *testing.T) {
	from := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	p := &EventPass{ValidFrom: from, ValidUntil: from.Add(2 * time.Hour), IsUsed: true}
	for _, at := range []time.Time{from.Add(-time.Hour), from, from.Add(time.Hour), from.Add(5 * time.Hour)} {
		if p.IsValid(at) {
			t.Fatalf("used pass reported valid at %s", at)
		}
	}
	if got := p.InvalidReason(from.Add(time.Hour)); got != "pass already used" {
		t.Fatalf("InvalidReason: got=%q", got)
	}
}

func TestEventPassExpiry(t *testing.T) {
	from := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	p := &EventPass{ValidFrom: from, ValidUntil: from.Add(2 * time.Hour)}
	if p.IsExpired(from.Add(2 * time.Hour)) {
		t.Fatalf("IsExpired at valid_until should be false")
	}
	if !p.IsExpired(from.Add(3 * time.Hour)) {
		t.Fatalf("IsExpired after valid_until should be true")
	}
	if got := p.InvalidReason(from.Add(3 * time.Hour)); got != "pass has expired" {
		t.Fatalf("InvalidReason: got=%q", got)
	}
	if got := p.InvalidReason(from.Add(-time.Minute)); got != "pass is not valid yet" {
		t.Fatalf("InvalidReason: got=%q", got)
	}
}

func TestVisitorPassEffectiveStatus(t *testing.T) {
	until := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	p := &VisitorPass{Status: ApprovalApproved, ValidFrom: until.Add(-8 * time.Hour), ValidUntil: until}
	if got := p.EffectiveStatus(until.Add(-time.Hour)); got != ApprovalApproved {
		t.Fatalf("inside window: want=APPROVED got=%s", got)
	}
	if got := p.EffectiveStatus(until.Add(time.Minute)); got != ApprovalExpired {
		t.Fatalf("after window: want=EXPIRED got=%s", got)
	}
	p.Status = ApprovalRejected
	if got := p.EffectiveStatus(until.Add(time.Minute)); got != ApprovalRejected {
		t.Fatalf("rejected stays rejected: got=%s", got)
	}
	if StatusChangedAction(ApprovalApproved) != "STATUS_CHANGED_TO_APPROVED" {
		t.Fatalf("unexpected action: %s", StatusChangedAction(ApprovalApproved))
	}
}
