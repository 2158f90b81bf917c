package aggregates_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/domain/access"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/domain/gatepass"
	"github.com/yungbote/nishad-backend/internal/domain/user"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
)

func visitor() gatepass.VisitorPass {
	return gatepass.VisitorPass{
		VisitorName:  " Meera Pillai ",
		VisitorPhone: "+91 98470 00000",
		Purpose:      "Constituency grievance meeting",
		PassType:     gatepass.PassTypeVisitor,
		ValidFrom:    testNow,
		ValidUntil:   testNow.Add(6 * time.Hour),
	}
}

func createVisitorPass(t *testing.T, f *fixture, actor access.Actor, p gatepass.VisitorPass) *types.VisitorPass {
	t.Helper()
	res, err := f.visitorPassAgg().Create(f.ctx, domainagg.CreateVisitorPassInput{Actor: actor, Pass: p})
	if err != nil {
		t.Fatalf("create visitor pass: %v", err)
	}
	return res.Pass
}

func TestCreateVisitorPass(t *testing.T) {
	f := newFixture(t)
	_, coordinator := f.user(t, user.RoleCoordinator)

	res, err := f.visitorPassAgg().Create(f.ctx, domainagg.CreateVisitorPassInput{Actor: coordinator, Pass: visitor()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Status != gatepass.ApprovalPending || res.Pass.PassNumber != "GP20260501100000" {
		t.Fatalf("create: status=%s number=%s", res.Status, res.Pass.PassNumber)
	}
	if res.Pass.VisitorName != "Meera Pillai" {
		t.Fatalf("visitor name not trimmed: %q", res.Pass.VisitorName)
	}
	if res.Log == nil || res.Log.Action != gatepass.LogActionCreated || res.Log.Details != "Gate pass created" {
		t.Fatalf("create log: %+v", res.Log)
	}

	// Same second: the suffix continues from the passes already issued in it.
	again := createVisitorPass(t, f, coordinator, visitor())
	if again.PassNumber != "GP20260501100000-1" {
		t.Fatalf("second number: %s", again.PassNumber)
	}
	if len(f.hooks.Retries) != 0 {
		t.Fatalf("retry hook: %+v", f.hooks.Retries)
	}
}

func TestCreateVisitorPassBurstInOneSecond(t *testing.T) {
	f := newFixture(t)
	f.base.MaxCodeAttempts = 3
	_, coordinator := f.user(t, user.RoleCoordinator)

	burst := f.base.MaxCodeAttempts + 4
	seen := map[string]bool{}
	for i := 0; i < burst; i++ {
		p := createVisitorPass(t, f, coordinator, visitor())
		if seen[p.PassNumber] {
			t.Fatalf("pass %d reused number %s", i, p.PassNumber)
		}
		seen[p.PassNumber] = true
	}
	if !seen["GP20260501100000"] || !seen[fmt.Sprintf("GP20260501100000-%d", burst-1)] {
		t.Fatalf("numbers: %v", seen)
	}
	if n := f.count(t, &types.VisitorPass{}, "pass_number LIKE ?", "GP20260501100000%"); n != int64(burst) {
		t.Fatalf("stored passes: %d", n)
	}
}

func TestCreateVisitorPassValidation(t *testing.T) {
	f := newFixture(t)
	_, coordinator := f.user(t, user.RoleCoordinator)
	_, member := f.user(t, user.RoleMember)
	agg := f.visitorPassAgg()

	_, err := agg.Create(f.ctx, domainagg.CreateVisitorPassInput{Actor: member, Pass: visitor()})
	requireCode(t, err, domainagg.CodeForbidden)

	p := visitor()
	p.EscortRequired = true
	_, err = agg.Create(f.ctx, domainagg.CreateVisitorPassInput{Actor: coordinator, Pass: p})
	requireCode(t, err, domainagg.CodeValidation)

	p.EscortName = "Ravi"
	if _, err := agg.Create(f.ctx, domainagg.CreateVisitorPassInput{Actor: coordinator, Pass: p}); err != nil {
		t.Fatalf("create with escort: %v", err)
	}

	p = visitor()
	p.ValidUntil = p.ValidFrom.Add(-time.Minute)
	_, err = agg.Create(f.ctx, domainagg.CreateVisitorPassInput{Actor: coordinator, Pass: p})
	requireCode(t, err, domainagg.CodeValidation)

	p = visitor()
	p.VisitorPhone = ""
	_, err = agg.Create(f.ctx, domainagg.CreateVisitorPassInput{Actor: coordinator, Pass: p})
	requireCode(t, err, domainagg.CodeValidation)
}

func TestApproveVisitorPass(t *testing.T) {
	f := newFixture(t)
	_, coordinator := f.user(t, user.RoleCoordinator)
	adminUser, admin := f.user(t, user.RoleAdministrator)
	_, volunteer := f.user(t, user.RoleVolunteer)
	pass := createVisitorPass(t, f, coordinator, visitor())
	agg := f.visitorPassAgg()

	_, err := agg.Approve(f.ctx, domainagg.VisitorPassDecisionInput{Actor: volunteer, PassID: pass.ID})
	requireCode(t, err, domainagg.CodeForbidden)

	approvedAt := testNow.Add(10 * time.Minute)
	res, err := agg.Approve(f.ctx, domainagg.VisitorPassDecisionInput{Actor: admin, PassID: pass.ID, At: approvedAt})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.Status != gatepass.ApprovalApproved || res.Pass.Status != gatepass.ApprovalApproved {
		t.Fatalf("approve status: %s / %s", res.Status, res.Pass.Status)
	}
	if res.Pass.ApprovedBy == nil || *res.Pass.ApprovedBy != adminUser.ID || res.Pass.ApprovedAt == nil {
		t.Fatalf("approval not stamped: %+v", res.Pass)
	}
	if res.Log.Action != "STATUS_CHANGED_TO_APPROVED" || res.Log.Details != "Status changed to Approved" {
		t.Fatalf("approve log: %+v", res.Log)
	}

	_, err = agg.Approve(f.ctx, domainagg.VisitorPassDecisionInput{Actor: admin, PassID: pass.ID, At: approvedAt})
	requireCode(t, err, domainagg.CodeInvalidState)
	_, err = agg.Reject(f.ctx, domainagg.VisitorPassDecisionInput{Actor: admin, PassID: pass.ID, At: approvedAt})
	requireCode(t, err, domainagg.CodeInvalidState)

	logs, err := f.repos.GatePassLogs.ListByPass(dbctx.Context{Ctx: f.ctx}, pass.ID)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("log rows: want=2 got=%d", len(logs))
	}
}

func TestRejectVisitorPass(t *testing.T) {
	f := newFixture(t)
	_, coordinator := f.user(t, user.RoleCoordinator)
	pass := createVisitorPass(t, f, coordinator, visitor())

	res, err := f.visitorPassAgg().Reject(f.ctx, domainagg.VisitorPassDecisionInput{Actor: coordinator, PassID: pass.ID, Reason: "Duplicate request"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if res.Pass.Status != gatepass.ApprovalRejected || res.Pass.RejectionReason != "Duplicate request" {
		t.Fatalf("reject: %+v", res.Pass)
	}
	if res.Pass.ApprovedBy != nil {
		t.Fatalf("rejection must not stamp approved_by")
	}
	if res.Log.Details != "Status changed to Rejected" {
		t.Fatalf("reject log details: %q", res.Log.Details)
	}

	// A reason is optional.
	other := createVisitorPass(t, f, coordinator, visitor())
	if _, err := f.visitorPassAgg().Reject(f.ctx, domainagg.VisitorPassDecisionInput{Actor: coordinator, PassID: other.ID}); err != nil {
		t.Fatalf("reject without reason: %v", err)
	}
}

func TestApproveExpiredVisitorPassIsRefused(t *testing.T) {
	f := newFixture(t)
	_, coordinator := f.user(t, user.RoleCoordinator)
	p := visitor()
	p.ValidFrom = testNow.Add(-4 * time.Hour)
	p.ValidUntil = testNow.Add(-time.Hour)
	pass := createVisitorPass(t, f, coordinator, p)

	_, err := f.visitorPassAgg().Approve(f.ctx, domainagg.VisitorPassDecisionInput{Actor: coordinator, PassID: pass.ID})
	requireCode(t, err, domainagg.CodeInvalidState)
	if n := f.count(t, &types.VisitorPass{}, "id = ? AND status = ?", pass.ID, gatepass.ApprovalPending); n != 1 {
		t.Fatalf("expired pass left PENDING: %d", n)
	}

	_, err = f.visitorPassAgg().Approve(f.ctx, domainagg.VisitorPassDecisionInput{Actor: coordinator, PassID: uuid.New()})
	requireCode(t, err, domainagg.CodeNotFound)
}
