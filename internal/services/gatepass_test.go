package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/data/repos"
	repotestutil "github.com/yungbote/nishad-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nishad-backend/internal/domain"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/domain/gatepass"
	"github.com/yungbote/nishad-backend/internal/domain/user"
	"github.com/yungbote/nishad-backend/internal/platform/gcp"
	"github.com/yungbote/nishad-backend/internal/realtime"
)

func TestEventPassServiceIssueUseAndCard(t *testing.T) {
	f := newSvcFixture(t)
	svc := f.eventPassService()
	coord, coordCtx := f.user(t, user.RoleCoordinator)
	attendee, attendeeCtx := f.user(t, user.RoleSupporter)
	_, gateCtx := f.user(t, user.RoleVolunteer)
	_, strangerCtx := f.user(t, user.RoleMember)
	now := time.Now().UTC()
	event := repotestutil.SeedEvent(t, context.Background(), f.db, coord.ID, now.Add(time.Hour))

	pass, err := svc.Issue(coordCtx, domainagg.IssueEventPassInput{
		EventID:    event.ID,
		AttendeeID: attendee.ID,
		Access:     gatepass.AccessVIP,
		ValidFrom:  now.Add(-time.Hour),
		ValidUntil: now.Add(6 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if pass.QRCodeKey != "event-passes/"+pass.Code+".png" {
		t.Fatalf("qr key: %q", pass.QRCodeKey)
	}
	if got := f.emitter.events(realtime.UserChannel(attendee.ID)); len(got) != 1 || got[0] != realtime.SSEEventEventPassIssued {
		t.Fatalf("attendee notifications: %v", got)
	}

	if _, err := svc.Get(attendeeCtx, pass.Code); err != nil {
		t.Fatalf("attendee Get: %v", err)
	}
	_, err = svc.Get(strangerCtx, pass.Code)
	requireCode(t, err, domainagg.CodeForbidden)

	card, err := svc.Card(attendeeCtx, pass.Code)
	if err != nil || !bytes.HasPrefix(card, pngMagic) {
		t.Fatalf("Card: err=%v", err)
	}
	if rc, err := f.bucket.DownloadFile(context.Background(), gcp.BucketCategoryPassCard, pass.QRCodeKey); err != nil {
		t.Fatalf("card not cached: %v", err)
	} else {
		rc.Close()
	}

	_, err = svc.Use(attendeeCtx, pass.Code, "North")
	requireCode(t, err, domainagg.CodeForbidden)
	used, err := svc.Use(gateCtx, pass.Code, "North")
	if err != nil {
		t.Fatalf("Use: %v", err)
	}
	if used.EntryGate != "North" {
		t.Fatalf("gate: %q", used.EntryGate)
	}
	_, err = svc.Use(gateCtx, pass.Code, "North")
	requireCode(t, err, domainagg.CodeInvalidPass)

	mine, err := svc.Mine(attendeeCtx)
	if err != nil || len(mine) != 1 || !mine[0].IsUsed {
		t.Fatalf("Mine: err=%v passes=%+v", err, mine)
	}
}

func visitorTemplate(now time.Time) types.VisitorPass {
	return types.VisitorPass{
		VisitorName:  "Ravi Menon",
		VisitorPhone: "+91 98470 00000",
		PassType:     gatepass.PassTypeVendor,
		Purpose:      "Stage delivery",
		ValidFrom:    now,
		ValidUntil:   now.Add(4 * time.Hour),
	}
}

func TestVisitorPassServiceScopesReadsToCreator(t *testing.T) {
	f := newSvcFixture(t)
	svc := f.visitorPassService()
	member, memberCtx := f.user(t, user.RoleMember)
	_, otherCtx := f.user(t, user.RoleMember)
	_, coordCtx := f.user(t, user.RoleCoordinator)
	now := time.Now().UTC()

	_, err := svc.Create(memberCtx, visitorTemplate(now))
	requireCode(t, err, domainagg.CodeForbidden)

	if err := f.db.Create(&types.GatePassDelegation{UserID: member.ID, CanCreateGatePass: true, GrantedAt: now}).Error; err != nil {
		t.Fatalf("seed delegation: %v", err)
	}
	mine, err := svc.Create(memberCtx, visitorTemplate(now))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(coordCtx, visitorTemplate(now)); err != nil {
		t.Fatalf("coordinator Create: %v", err)
	}

	rows, total, err := svc.List(memberCtx, repos.VisitorPassFilter{})
	if err != nil {
		t.Fatalf("member List: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].ID != mine.ID {
		t.Fatalf("member sees %d passes (total %d)", len(rows), total)
	}
	_, total, err = svc.List(coordCtx, repos.VisitorPassFilter{})
	if err != nil || total != 2 {
		t.Fatalf("coordinator List: total=%d err=%v", total, err)
	}

	_, err = svc.Get(otherCtx, mine.ID)
	requireCode(t, err, domainagg.CodeForbidden)
	_, err = svc.Logs(otherCtx, mine.ID)
	requireCode(t, err, domainagg.CodeForbidden)

	stats, err := svc.Stats(memberCtx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 1 || stats.Pending != 1 {
		t.Fatalf("member stats: %+v", stats)
	}
	_, total, err = svc.List(coordCtx, repos.VisitorPassFilter{Status: gatepass.ApprovalPending})
	if err != nil || total != 2 {
		t.Fatalf("List(PENDING): total=%d err=%v", total, err)
	}
	_, total, err = svc.List(coordCtx, repos.VisitorPassFilter{Status: gatepass.ApprovalExpired})
	if err != nil || total != 0 {
		t.Fatalf("List(EXPIRED): total=%d err=%v", total, err)
	}
	_, _, err = svc.List(memberCtx, repos.VisitorPassFilter{PassType: "BOGUS"})
	requireCode(t, err, domainagg.CodeValidation)
}

func TestVisitorPassServiceDecisionNotifiesCreator(t *testing.T) {
	f := newSvcFixture(t)
	svc := f.visitorPassService()
	creator, creatorCtx := f.user(t, user.RoleCoordinator)
	_, approverCtx := f.user(t, user.RoleAdministrator)
	now := time.Now().UTC()

	created, err := svc.Create(creatorCtx, visitorTemplate(now))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	res, err := svc.Approve(approverCtx, created.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if res.Status != gatepass.ApprovalApproved {
		t.Fatalf("status: %s", res.Status)
	}
	if got := f.emitter.events(realtime.UserChannel(creator.ID)); len(got) != 1 || got[0] != realtime.SSEEventVisitorPassDecided {
		t.Fatalf("creator notifications: %v", got)
	}
	_, err = svc.Reject(approverCtx, created.ID, "late")
	requireCode(t, err, domainagg.CodeInvalidState)

	logs, err := svc.Logs(creatorCtx, created.ID)
	if err != nil || len(logs) != 2 {
		t.Fatalf("Logs: err=%v n=%d", err, len(logs))
	}
	png, err := svc.QRCode(creatorCtx, created.ID)
	if err != nil || !bytes.HasPrefix(png, pngMagic) {
		t.Fatalf("QRCode: err=%v", err)
	}
	card, err := svc.Card(creatorCtx, created.ID)
	if err != nil || !bytes.HasPrefix(card, pngMagic) {
		t.Fatalf("Card: err=%v", err)
	}
	_, strangerCtx := f.user(t, user.RoleMember)
	_, err = svc.Card(strangerCtx, created.ID)
	requireCode(t, err, domainagg.CodeForbidden)
	_, err = svc.Get(creatorCtx, uuid.New())
	requireCode(t, err, domainagg.CodeNotFound)
}

func TestDelegationServiceToggle(t *testing.T) {
	f := newSvcFixture(t)
	svc := NewDelegationService(f.db, f.log, f.repos, f.notify)
	_, adminCtx := f.user(t, user.RoleAdministrator)
	member, memberCtx := f.user(t, user.RoleMember)

	_, err := svc.Grant(memberCtx, member.ID)
	requireCode(t, err, domainagg.CodeForbidden)

	d, err := svc.Toggle(adminCtx, member.ID)
	if err != nil || !d.CanCreateGatePass {
		t.Fatalf("Toggle on: err=%v d=%+v", err, d)
	}
	d, err = svc.Grant(adminCtx, member.ID)
	if err != nil || !d.CanCreateGatePass {
		t.Fatalf("Grant (no-op): err=%v d=%+v", err, d)
	}
	d, err = svc.Toggle(adminCtx, member.ID)
	if err != nil || d.CanCreateGatePass {
		t.Fatalf("Toggle off: err=%v d=%+v", err, d)
	}
	if got := f.emitter.events(realtime.UserChannel(member.ID)); len(got) != 2 {
		t.Fatalf("delegation notifications: want 2 got %v", got)
	}
	all, err := svc.List(adminCtx)
	if err != nil || len(all) != 1 {
		t.Fatalf("List: err=%v n=%d", err, len(all))
	}
	_, err = svc.Revoke(adminCtx, uuid.New())
	requireCode(t, err, domainagg.CodeNotFound)
}
