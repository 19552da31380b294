package api

import (
	"errors"
	"testing"
)

func TestResponseUnwrap(t *testing.T) {
	ok := OK(42)
	if !ok.Success {
		t.Fatal("expected Success on OK envelope")
	}
	v, err := ok.Unwrap()
	if err != nil {
		t.Fatalf("Unwrap returned error: %v", err)
	}
	if v != 42 {
		t.Errorf("expected 42, got %d", v)
	}

	failed := Fail[int](&Error{Kind: KindServer, Status: 500, Message: "boom"})
	if failed.Success {
		t.Fatal("expected Success=false on Fail envelope")
	}
	_, err = failed.Unwrap()
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Kind != KindServer {
		t.Errorf("expected KindServer, got %s", apiErr.Kind)
	}
}

func TestFailNilError(t *testing.T) {
	r := Fail[string](nil)
	if r.Success {
		t.Fatal("expected failure")
	}
	if r.Err == nil || r.Err.Message == "" {
		t.Fatal("nil error must be replaced with a non-empty reason")
	}
}

func TestFailFromKeepsError(t *testing.T) {
	orig := Fail[int](&Error{Kind: KindTimeout, Message: "request timed out"})
	rewrapped := FailFrom[string](orig)
	if rewrapped.Err != orig.Err {
		t.Error("FailFrom must carry the original *Error")
	}
}
