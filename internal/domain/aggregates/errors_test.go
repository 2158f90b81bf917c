package aggregates

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsCodeSeesThroughWrapping(t *testing.T) {
	base := NewError(CodeInvalidState, "Assets.Checkout.Accept", "checkout is RETURNED, want PENDING", nil)
	wrapped := fmt.Errorf("accept: %w", base)
	if !IsCode(wrapped, CodeInvalidState) {
		t.Fatalf("expected invalid_state through wrap, got=%v", wrapped)
	}
	if CodeOf(wrapped) != CodeInvalidState {
		t.Fatalf("CodeOf: want=%s got=%s", CodeInvalidState, CodeOf(wrapped))
	}
	if MessageOf(wrapped) != "checkout is RETURNED, want PENDING" {
		t.Fatalf("MessageOf: got=%q", MessageOf(wrapped))
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := CodeOf(errors.New("boom")); got != "" {
		t.Fatalf("plain error code: want empty got=%s", got)
	}
	if got := MessageOf(errors.New("boom")); got != "boom" {
		t.Fatalf("plain error message: got=%q", got)
	}
}

func TestForbiddenNamesCapability(t *testing.T) {
	err := Forbidden("GatePass.Visitor.Approve", "approve_gatepass")
	if !IsCode(err, CodeForbidden) {
		t.Fatalf("expected forbidden, got=%v", err)
	}
	want := `GatePass.Visitor.Approve: actor lacks capability "approve_gatepass" (forbidden)`
	if err.Error() != want {
		t.Fatalf("message: want=%q got=%q", want, err.Error())
	}
}
