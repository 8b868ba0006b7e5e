package errors

import (
	"errors"
	"testing"
)

func TestNewAndError(t *testing.T) {
	err := New(CodeInvalidArgument, "missing column %q", "size")
	if err.Code != CodeInvalidArgument {
		t.Fatalf("Code = %v, want %v", err.Code, CodeInvalidArgument)
	}
	want := `INVALID_ARGUMENT: missing column "size"`
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(CodeInternal, cause, "cache read failed")
	if !errors.Is(err, cause) {
		t.Fatal("Unwrap chain should expose cause via errors.Is")
	}
	if err.Error() != "INTERNAL_ERROR: cache read failed: boom" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestIsAndGetCode(t *testing.T) {
	err := New(CodeNotFound, "no such session")
	if !Is(err, CodeNotFound) {
		t.Fatal("Is should match equal code")
	}
	if Is(err, CodeInternal) {
		t.Fatal("Is should not match unequal code")
	}
	if GetCode(err) != CodeNotFound {
		t.Fatalf("GetCode = %v, want %v", GetCode(err), CodeNotFound)
	}
	if GetCode(errors.New("plain")) != "" {
		t.Fatal("GetCode of a plain error should be empty")
	}
}

func TestUserMessage(t *testing.T) {
	err := New(CodeInvalidArgument, "bad row")
	if UserMessage(err) != "bad row" {
		t.Fatalf("UserMessage = %q", UserMessage(err))
	}
	plain := errors.New("boom")
	if UserMessage(plain) != "boom" {
		t.Fatalf("UserMessage(plain) = %q", UserMessage(plain))
	}
}
