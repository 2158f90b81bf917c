package aggregates_test

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	repotestutil "github.com/yungbote/nishad-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/domain/access"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/domain/gatepass"
	"github.com/yungbote/nishad-backend/internal/domain/user"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
)

func entropy(t *testing.T, hexBytes string) *bytes.Reader {
	t.Helper()
	b, err := hex.DecodeString(hexBytes)
	if err != nil {
		t.Fatalf("entropy: %v", err)
	}
	return bytes.NewReader(b)
}

func issueInput(actor access.Actor, eventID, attendeeID uuid.UUID) domainagg.IssueEventPassInput {
	return domainagg.IssueEventPassInput{
		Actor:          actor,
		EventID:        eventID,
		AttendeeID:     attendeeID,
		Access:         gatepass.AccessVIP,
		ValidFrom:      testNow.Add(2 * time.Hour),
		ValidUntil:     testNow.Add(8 * time.Hour),
		CompanionCount: 1,
	}
}

func TestIssueEventPass(t *testing.T) {
	f := newFixture(t)
	_, coordinator := f.user(t, user.RoleCoordinator)
	attendee, _ := f.user(t, user.RoleMember)
	event := repotestutil.SeedEvent(t, f.ctx, f.db, coordinator.UserID, testNow.Add(2*time.Hour))
	agg := f.eventPassAgg(entropy(t, "0a1b2c"))

	res, err := agg.Issue(f.ctx, issueInput(coordinator, event.ID, attendee.ID))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	p := res.Pass
	if p.Code != "GP202605010A1B2C" || res.Attempts != 1 {
		t.Fatalf("code=%s attempts=%d", p.Code, res.Attempts)
	}
	if p.IsUsed || p.Access != gatepass.AccessVIP || p.CompanionCount != 1 {
		t.Fatalf("pass fields: %+v", p)
	}
	if p.QRPayload == "" || !strings.Contains(p.QRPayload, p.Code) {
		t.Fatalf("qr payload does not carry the code: %q", p.QRPayload)
	}
	// The artifact key is committed with the row, not patched in afterwards.
	if n := f.count(t, &types.EventPass{}, "id = ? AND qr_code_key = ?", p.ID, "event-passes/GP202605010A1B2C.png"); n != 1 {
		t.Fatalf("stored qr_code_key: %q", p.QRCodeKey)
	}

	_, err = agg.Issue(f.ctx, issueInput(coordinator, event.ID, attendee.ID))
	requireCode(t, err, domainagg.CodeConflict)
	if n := f.count(t, &types.EventPass{}, "event_id = ?", event.ID); n != 1 {
		t.Fatalf("passes for event: %d", n)
	}
}

func TestIssueEventPassPermissions(t *testing.T) {
	f := newFixture(t)
	_, coordinator := f.user(t, user.RoleCoordinator)
	memberUser, member := f.user(t, user.RoleMember)
	attendee, _ := f.user(t, user.RoleMember)
	event := repotestutil.SeedEvent(t, f.ctx, f.db, coordinator.UserID, testNow)
	agg := f.eventPassAgg(entropy(t, "111111"))

	_, err := agg.Issue(f.ctx, issueInput(member, event.ID, attendee.ID))
	requireCode(t, err, domainagg.CodeForbidden)

	if err := f.db.Create(&types.GatePassDelegation{
		UserID:            memberUser.ID,
		CanCreateGatePass: true,
		GrantedBy:         repotestutil.PtrUUID(coordinator.UserID),
		GrantedAt:         testNow,
	}).Error; err != nil {
		t.Fatalf("seed delegation: %v", err)
	}
	res, err := agg.Issue(f.ctx, issueInput(member, event.ID, attendee.ID))
	if err != nil {
		t.Fatalf("issue with delegation: %v", err)
	}
	if res.Pass.IssuedBy != memberUser.ID {
		t.Fatalf("issued_by: %s", res.Pass.IssuedBy)
	}
}

func TestIssueEventPassValidation(t *testing.T) {
	f := newFixture(t)
	_, coordinator := f.user(t, user.RoleCoordinator)
	attendee, _ := f.user(t, user.RoleMember)
	event := repotestutil.SeedEvent(t, f.ctx, f.db, coordinator.UserID, testNow)
	agg := f.eventPassAgg(entropy(t, "222222"))

	in := issueInput(coordinator, event.ID, attendee.ID)
	in.ValidUntil = in.ValidFrom
	_, err := agg.Issue(f.ctx, in)
	requireCode(t, err, domainagg.CodeValidation)

	in = issueInput(coordinator, event.ID, attendee.ID)
	in.Access = "BACKSTAGE"
	_, err = agg.Issue(f.ctx, in)
	requireCode(t, err, domainagg.CodeValidation)

	in = issueInput(coordinator, event.ID, attendee.ID)
	in.CompanionCount = -1
	_, err = agg.Issue(f.ctx, in)
	requireCode(t, err, domainagg.CodeValidation)

	in = issueInput(coordinator, uuid.New(), attendee.ID)
	_, err = agg.Issue(f.ctx, in)
	requireCode(t, err, domainagg.CodeNotFound)

	in = issueInput(coordinator, event.ID, attendee.ID)
	in.Access = ""
	res, err := agg.Issue(f.ctx, in)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if res.Pass.Access != gatepass.AccessGeneral {
		t.Fatalf("default access: %s", res.Pass.Access)
	}
}

func TestIssueEventPassRetriesCodeCollision(t *testing.T) {
	f := newFixture(t)
	_, coordinator := f.user(t, user.RoleCoordinator)
	first, _ := f.user(t, user.RoleMember)
	second, _ := f.user(t, user.RoleMember)
	event := repotestutil.SeedEvent(t, f.ctx, f.db, coordinator.UserID, testNow)
	agg := f.eventPassAgg(entropy(t, "a1b2c3a1b2c3d4e5f6"))

	if _, err := agg.Issue(f.ctx, issueInput(coordinator, event.ID, first.ID)); err != nil {
		t.Fatalf("first issue: %v", err)
	}
	res, err := agg.Issue(f.ctx, issueInput(coordinator, event.ID, second.ID))
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}
	if res.Pass.Code != "GP20260501D4E5F6" || res.Attempts != 2 {
		t.Fatalf("want GP20260501D4E5F6 after 2 attempts, got %s after %d", res.Pass.Code, res.Attempts)
	}
	if len(f.hooks.Retries) != 1 {
		t.Fatalf("retry hook: %+v", f.hooks.Retries)
	}
}

func TestUseEventPass(t *testing.T) {
	f := newFixture(t)
	_, coordinator := f.user(t, user.RoleCoordinator)
	_, volunteer := f.user(t, user.RoleVolunteer)
	attendeeUser, attendee := f.user(t, user.RoleMember)
	event := repotestutil.SeedEvent(t, f.ctx, f.db, coordinator.UserID, testNow)
	agg := f.eventPassAgg(entropy(t, "c0ffee"))

	issued, err := agg.Issue(f.ctx, issueInput(coordinator, event.ID, attendeeUser.ID))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	code := issued.Pass.Code
	inWindow := issued.Pass.ValidFrom.Add(30 * time.Minute)

	_, err = agg.Use(f.ctx, domainagg.UseEventPassInput{Actor: attendee, Code: code, At: inWindow})
	requireCode(t, err, domainagg.CodeForbidden)

	_, err = agg.Use(f.ctx, domainagg.UseEventPassInput{Actor: volunteer, Code: code, At: issued.Pass.ValidFrom.Add(-time.Minute)})
	requireCode(t, err, domainagg.CodeInvalidPass)
	if msg := domainagg.MessageOf(err); msg != "pass is not valid yet" {
		t.Fatalf("not-yet-valid message: %q", msg)
	}

	res, err := agg.Use(f.ctx, domainagg.UseEventPassInput{Actor: volunteer, Code: " gp20260501c0ffee ", Gate: "North gate", At: inWindow})
	if err != nil {
		t.Fatalf("use: %v", err)
	}
	if res.Code != code || res.EntryGate != "North gate" || !res.UsedAt.Equal(inWindow) {
		t.Fatalf("use result: %+v", res)
	}
	stored, err := f.repos.EventPasses.GetByCode(dbctx.Context{Ctx: f.ctx}, code)
	if err != nil || stored == nil {
		t.Fatalf("reload pass: %v", err)
	}
	if !stored.IsUsed || stored.UsedAt == nil || stored.EntryGate != "North gate" {
		t.Fatalf("stored pass: %+v", stored)
	}

	_, err = agg.Use(f.ctx, domainagg.UseEventPassInput{Actor: volunteer, Code: code, At: inWindow.Add(time.Minute)})
	requireCode(t, err, domainagg.CodeInvalidPass)
	if msg := domainagg.MessageOf(err); msg != "pass already used" {
		t.Fatalf("second use message: %q", msg)
	}

	_, err = agg.Use(f.ctx, domainagg.UseEventPassInput{Actor: volunteer, Code: "GP20260501FFFFFF", At: inWindow})
	requireCode(t, err, domainagg.CodeNotFound)
}

func TestUseExpiredEventPass(t *testing.T) {
	f := newFixture(t)
	_, coordinator := f.user(t, user.RoleCoordinator)
	attendee, _ := f.user(t, user.RoleMember)
	event := repotestutil.SeedEvent(t, f.ctx, f.db, coordinator.UserID, testNow)
	agg := f.eventPassAgg(entropy(t, "0badf0"))

	issued, err := agg.Issue(f.ctx, issueInput(coordinator, event.ID, attendee.ID))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = agg.Use(f.ctx, domainagg.UseEventPassInput{Actor: coordinator, Code: issued.Pass.Code, At: issued.Pass.ValidUntil.Add(time.Second)})
	requireCode(t, err, domainagg.CodeInvalidPass)
	if msg := domainagg.MessageOf(err); msg != "pass has expired" {
		t.Fatalf("expired message: %q", msg)
	}
	if n := f.count(t, &types.EventPass{}, "id = ? AND is_used = ?", issued.Pass.ID, true); n != 0 {
		t.Fatalf("expired pass was marked used")
	}
}
