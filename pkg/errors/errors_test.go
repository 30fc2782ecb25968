package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "gateway call")
	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to survive errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("expected dependency code, got %s", err.Code())
	}
}

func TestAsExtractsTypedError(t *testing.T) {
	err := New(CodeNotFound, "intent missing")
	wrapped := Wrap(CodeInternal, err, "outer")

	typed := As(wrapped)
	if typed == nil {
		t.Fatalf("expected typed error")
	}
	if typed.Code() != CodeInternal {
		t.Fatalf("expected outermost code, got %s", typed.Code())
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatalf("expected nil for untyped error")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(CodeNotFound, "missing")); got != CodeNotFound {
		t.Fatalf("expected %s, got %s", CodeNotFound, got)
	}

	wrapped := fmt.Errorf("outer: %w", New(CodeValidation, "bad input"))
	if got := CodeOf(wrapped); got != CodeValidation {
		t.Fatalf("expected code to survive stdlib wrapping, got %s", got)
	}

	if got := CodeOf(stdErrors.New("plain")); got != "" {
		t.Fatalf("expected empty code for untyped error, got %s", got)
	}
	if got := CodeOf(nil); got != "" {
		t.Fatalf("expected empty code for nil error, got %s", got)
	}
}

func TestWithDetailsRoundTrip(t *testing.T) {
	details := map[string]string{"client_secret": "is required"}
	err := New(CodeValidation, "validation failed").WithDetails(details)
	got, ok := err.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected map details")
	}
	if got["client_secret"] != "is required" {
		t.Fatalf("unexpected details: %v", got)
	}
}
