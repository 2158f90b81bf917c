package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/nishad-backend/internal/domain"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	httpH "github.com/yungbote/nishad-backend/internal/http/handlers"
	httpMW "github.com/yungbote/nishad-backend/internal/http/middleware"
	"github.com/yungbote/nishad-backend/internal/platform/ctxutil"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
	"github.com/yungbote/nishad-backend/internal/services"
)

const testToken = "test-token"

type stubAuth struct {
	services.AuthService
	userID     uuid.UUID
	registered int
}

func (s *stubAuth) RegisterUser(_ context.Context, u *types.User) error {
	s.registered++
	u.ID = uuid.New()
	return nil
}

func (s *stubAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	if token != testToken {
		return ctx, errors.New("invalid token")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: s.userID, Role: "ADMINISTRATOR", SessionID: uuid.New()}), nil
}

type stubCheckouts struct {
	services.CheckoutService
	assigned domainagg.AssignAssetInput
	rejectFn func(domainagg.RejectCheckoutInput) (domainagg.CheckoutTransitionResult, error)
}

func (s *stubCheckouts) Assign(_ context.Context, in domainagg.AssignAssetInput) (domainagg.CheckoutTransitionResult, error) {
	s.assigned = in
	return domainagg.CheckoutTransitionResult{AssetID: in.AssetID, CheckoutID: uuid.New(), CheckoutStatus: "PENDING", AssetStatus: "ASSIGNED", Changed: true}, nil
}

func (s *stubCheckouts) Reject(_ context.Context, in domainagg.RejectCheckoutInput) (domainagg.CheckoutTransitionResult, error) {
	return s.rejectFn(in)
}

func (s *stubCheckouts) Mine(context.Context, bool) ([]*services.CheckoutView, error) {
	return []*services.CheckoutView{}, nil
}

type stubAssets struct {
	services.AssetService
	patched domainagg.AssetPatch
}

func (s *stubAssets) Update(_ context.Context, id uuid.UUID, patch domainagg.AssetPatch) (domainagg.UpdateAssetResult, error) {
	s.patched = patch
	return domainagg.UpdateAssetResult{Asset: &types.Asset{ID: id, Status: "IN_USE"}, Changed: []string{"name"}}, nil
}

func (s *stubAssets) Dashboard(context.Context) (*services.AssetDashboard, error) {
	return &services.AssetDashboard{Mine: services.MyAssignmentSummary{Pending: 2}}, nil
}

type stubPasses struct {
	services.EventPassService
	useErr error
}

func (s *stubPasses) Use(_ context.Context, code, gate string) (domainagg.UseEventPassResult, error) {
	if s.useErr != nil {
		return domainagg.UseEventPassResult{}, s.useErr
	}
	return domainagg.UseEventPassResult{Code: code, EntryGate: gate, UsedAt: time.Now()}, nil
}

func (s *stubPasses) Mine(context.Context) ([]*types.EventPass, error) {
	return []*types.EventPass{{Code: "MINE0001"}}, nil
}

type stubVisitors struct {
	services.VisitorPassService
	created int
}

func (s *stubVisitors) Card(context.Context, uuid.UUID) ([]byte, error) {
	return []byte("\x89PNG\r\n\x1a\ncard"), nil
}

func (s *stubVisitors) Create(_ context.Context, in types.VisitorPass) (*services.VisitorPassView, error) {
	s.created++
	return &services.VisitorPassView{VisitorPass: &in, EffectiveStatus: "PENDING"}, nil
}

type routerFixture struct {
	engine    *gin.Engine
	auth      *stubAuth
	assets    *stubAssets
	checkouts *stubCheckouts
	passes    *stubPasses
	visitors  *stubVisitors
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	f := &routerFixture{
		auth:      &stubAuth{userID: uuid.New()},
		assets:    &stubAssets{},
		checkouts: &stubCheckouts{},
		passes:    &stubPasses{},
		visitors:  &stubVisitors{},
	}
	f.engine = NewRouter(RouterConfig{
		Log:                log,
		AuthHandler:        httpH.NewAuthHandler(f.auth),
		AuthMiddleware:     httpMW.NewAuthMiddleware(log, f.auth),
		AssetHandler:       httpH.NewAssetHandler(f.assets, f.checkouts),
		CheckoutHandler:    httpH.NewCheckoutHandler(f.checkouts),
		PassHandler:        httpH.NewPassHandler(f.passes),
		VisitorPassHandler: httpH.NewVisitorPassHandler(f.visitors),
		HealthHandler:      httpH.NewHealthHandler(nil, nil),
	})
	return f
}

func (f *routerFixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var env struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope %q: %v", rec.Body.String(), err)
	}
	return env.Error.Code, env.Error.Message
}

func TestRouterHealthIsPublic(t *testing.T) {
	f := newRouterFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck got=%d %q", rec.Code, rec.Body.String())
	}
}

func TestRouterRequiresToken(t *testing.T) {
	f := newRouterFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/checkouts/mine", nil)
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status got=%d", rec.Code)
	}
}

func TestRegisterRequiresBareEmail(t *testing.T) {
	f := newRouterFixture(t)
	body := map[string]string{"email": "Mallory <asha@example.com>", "first_name": "Mallory", "password": "correct-horse"}
	rec := f.do(t, http.MethodPost, "/api/register", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("display-name email: status=%d body=%s", rec.Code, rec.Body.String())
	}
	if code, msg := errorCode(t, rec); code != "validation" || !strings.Contains(msg, "email must be a bare email address") {
		t.Fatalf("code=%q msg=%q", code, msg)
	}
	if f.auth.registered != 0 {
		t.Fatal("service reached with malformed email")
	}

	body["email"] = "asha@example.com"
	if rec := f.do(t, http.MethodPost, "/api/register", body); rec.Code != http.StatusCreated {
		t.Fatalf("register got=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestAssignBindsAndValidates(t *testing.T) {
	f := newRouterFixture(t)
	assetID, assignee := uuid.New(), uuid.New()

	rec := f.do(t, http.MethodPost, "/api/assets/"+assetID.String()+"/assign", map[string]any{
		"assignee_id":          assignee,
		"expected_return_date": time.Now().Add(48 * time.Hour),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing purpose: status=%d", rec.Code)
	}
	if code, msg := errorCode(t, rec); code != "validation" || !strings.Contains(msg, "purpose is required") {
		t.Fatalf("missing purpose: code=%q msg=%q", code, msg)
	}

	rec = f.do(t, http.MethodPost, "/api/assets/not-a-uuid/assign", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status=%d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/assets/"+assetID.String()+"/assign", map[string]any{
		"assignee_id":          assignee,
		"expected_return_date": time.Now().Add(48 * time.Hour),
		"purpose":              "rally",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("assign: status=%d body=%s", rec.Code, rec.Body.String())
	}
	if f.checkouts.assigned.AssetID != assetID || f.checkouts.assigned.AssigneeID != assignee || f.checkouts.assigned.Purpose != "rally" {
		t.Fatalf("assign input: %+v", f.checkouts.assigned)
	}
}

func TestDomainErrorsMapToStatus(t *testing.T) {
	f := newRouterFixture(t)
	id := uuid.New().String()

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domainagg.NewError(domainagg.CodeInvalidState, "Checkout.Reject", "checkout is not pending", nil), http.StatusConflict, "invalid_state"},
		{domainagg.Forbidden("Checkout.Reject", "act_on_assignment"), http.StatusForbidden, "forbidden"},
		{domainagg.NewError(domainagg.CodeNotFound, "Checkout.Reject", "checkout not found", nil), http.StatusNotFound, "not_found"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		f.checkouts.rejectFn = func(domainagg.RejectCheckoutInput) (domainagg.CheckoutTransitionResult, error) {
			return domainagg.CheckoutTransitionResult{}, tc.err
		}
		rec := f.do(t, http.MethodPost, "/api/checkouts/"+id+"/reject", map[string]string{"reason": "busy"})
		if rec.Code != tc.status {
			t.Fatalf("%v: status got=%d want=%d", tc.err, rec.Code, tc.status)
		}
		code, msg := errorCode(t, rec)
		if code != tc.code {
			t.Fatalf("%v: code got=%q want=%q", tc.err, code, tc.code)
		}
		if tc.status == http.StatusInternalServerError && strings.Contains(msg, "connection") {
			t.Fatalf("internal cause leaked: %q", msg)
		}
	}

	var got domainagg.RejectCheckoutInput
	f.checkouts.rejectFn = func(in domainagg.RejectCheckoutInput) (domainagg.CheckoutTransitionResult, error) {
		got = in
		return domainagg.CheckoutTransitionResult{CheckoutStatus: "REJECTED", AssetStatus: "AVAILABLE", Changed: true}, nil
	}
	for _, body := range []any{nil, map[string]string{}} {
		rec := f.do(t, http.MethodPost, "/api/checkouts/"+id+"/reject", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("reject without reason (%v): status=%d body=%s", body, rec.Code, rec.Body.String())
		}
		if got.Reason != "" || got.CheckoutID.String() != id {
			t.Fatalf("reject input: %+v", got)
		}
	}
}

func TestStaticRoutesBeatParams(t *testing.T) {
	f := newRouterFixture(t)
	if rec := f.do(t, http.MethodGet, "/api/assets/dashboard", nil); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"pending":2`) {
		t.Fatalf("/assets/dashboard got=%d %s", rec.Code, rec.Body.String())
	}
	if rec := f.do(t, http.MethodGet, "/api/checkouts/mine", nil); rec.Code != http.StatusOK {
		t.Fatalf("/checkouts/mine status=%d", rec.Code)
	}
	rec := f.do(t, http.MethodGet, "/api/me/passes", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "MINE0001") {
		t.Fatalf("/me/passes got=%d %s", rec.Code, rec.Body.String())
	}
}

func TestPassUseRefusal(t *testing.T) {
	f := newRouterFixture(t)
	f.passes.useErr = domainagg.NewError(domainagg.CodeInvalidPass, "GatePass.Event.Use", "pass already used", nil)
	rec := f.do(t, http.MethodPost, "/api/passes/ABCD2345/use", map[string]string{"gate": "north"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status got=%d", rec.Code)
	}
	if code, msg := errorCode(t, rec); code != "invalid_pass" || msg != "pass already used" {
		t.Fatalf("code=%q msg=%q", code, msg)
	}

	f.passes.useErr = nil
	rec = f.do(t, http.MethodPost, "/api/passes/ABCD2345/use", map[string]string{"gate": "north"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"entry_gate":"north"`) {
		t.Fatalf("use got=%d %s", rec.Code, rec.Body.String())
	}
}

func TestVisitorPassCreateRejectsUnknownType(t *testing.T) {
	f := newRouterFixture(t)
	body := map[string]any{
		"visitor_name":  "Asha",
		"visitor_phone": "9876543210",
		"purpose":       "meeting",
		"pass_type":     "ROYALTY",
		"valid_from":    time.Now(),
		"valid_until":   time.Now().Add(time.Hour),
	}
	rec := f.do(t, http.MethodPost, "/api/visitor-passes", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status got=%d body=%s", rec.Code, rec.Body.String())
	}
	if _, msg := errorCode(t, rec); !strings.Contains(msg, `unknown pass_type "ROYALTY"`) {
		t.Fatalf("msg=%q", msg)
	}
	if f.visitors.created != 0 {
		t.Fatal("service reached with invalid pass_type")
	}

	body["pass_type"] = "VENDOR"
	if rec := f.do(t, http.MethodPost, "/api/visitor-passes", body); rec.Code != http.StatusCreated {
		t.Fatalf("create got=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestAssetPatchCannotSetStatus(t *testing.T) {
	f := newRouterFixture(t)
	id := uuid.New()

	rec := f.do(t, http.MethodPatch, "/api/assets/"+id.String(), map[string]any{"condition": "SHINY"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad condition: status=%d", rec.Code)
	}
	if _, msg := errorCode(t, rec); !strings.Contains(msg, `unknown condition "SHINY"`) {
		t.Fatalf("bad condition: msg=%q", msg)
	}

	rec = f.do(t, http.MethodPatch, "/api/assets/"+id.String(), map[string]any{"name": "Banner stand", "status": "LOST"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: status=%d body=%s", rec.Code, rec.Body.String())
	}
	p := f.assets.patched
	if p.Name == nil || *p.Name != "Banner stand" || p.Location != nil || p.Condition != nil {
		t.Fatalf("patch input: %+v", p)
	}
	if !strings.Contains(rec.Body.String(), `"status":"IN_USE"`) {
		t.Fatalf("status changed through patch: %s", rec.Body.String())
	}
}

func TestVisitorPassCardIsPNG(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(t, http.MethodGet, "/api/visitor-passes/"+uuid.New().String()+"/card", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("card got=%d type=%q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if rec := f.do(t, http.MethodGet, "/api/visitor-passes/nope/card", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status=%d", rec.Code)
	}
}
