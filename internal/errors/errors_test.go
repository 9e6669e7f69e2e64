package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"route error", "R001", "Invalid route pattern", CategoryRoute},
		{"config error", "C001", "Configuration file not found", CategoryConfig},
		{"manifest error", "M003", "View content not found", CategoryManifest},
		{"protocol error", "P001", "Invalid navigation message", CategoryProtocol},
		{"unknown error code", "Z999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestRouterErrorError(t *testing.T) {
	err := New("R001").WithSubject("/users/:")
	if got, want := err.Error(), "R001: Invalid route pattern: /users/:"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &RouterError{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}

	cause := fmt.Errorf("boom")
	wrapped := New("M001").Wrap(cause)
	if !strings.HasSuffix(wrapped.Error(), ": boom") {
		t.Errorf("Error() = %q, want cause suffix", wrapped.Error())
	}
}

func TestUnwrapAndIs(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := fmt.Errorf("loading: %w", New("M001").Wrap(cause))

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !stderrors.Is(err, New("M001")) {
		t.Error("errors.Is should match by code")
	}
	if stderrors.Is(err, New("M002")) {
		t.Error("errors.Is should not match a different code")
	}

	var re *RouterError
	if !stderrors.As(err, &re) || re.Code != "M001" {
		t.Errorf("errors.As = %v", re)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "M001") != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New("C003").WithSubject("server.port")
	if got := FromError(fmt.Errorf("ctx: %w", orig), "M001"); got != orig {
		t.Errorf("FromError should return the existing RouterError, got %v", got)
	}

	got := FromError(stderrors.New("plain"), "M001")
	if got.Code != "M001" || got.Wrapped == nil {
		t.Errorf("FromError(plain) = %+v", got)
	}
}

func TestHasCode(t *testing.T) {
	inner := New("M003").WithSubject("views/home.html")
	outer := New("M001").Wrap(inner)

	if !HasCode(outer, "M001") || !HasCode(outer, "M003") {
		t.Error("HasCode should see both codes in the chain")
	}
	if HasCode(outer, "R001") {
		t.Error("HasCode(R001) = true")
	}
	if HasCode(stderrors.New("x"), "M001") {
		t.Error("HasCode on a plain error = true")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("R001").WithSubject("/a/:").Wrap(stderrors.New("no name"))
	out := err.Format()

	for _, want := range []string{"ERROR R001: Invalid route pattern", "/a/:", "Cause: no name", "Hint: "} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("P002").WithSubject("https://evil.example/")
	var decoded map[string]any
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &decoded); jerr != nil {
		t.Fatalf("FormatJSON produced invalid JSON: %v", jerr)
	}
	if decoded["code"] != "P002" || decoded["category"] != "protocol" {
		t.Errorf("FormatJSON = %v", decoded)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 40), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}

func TestLookup(t *testing.T) {
	if _, ok := Lookup("R001"); !ok {
		t.Error("Lookup(R001) not found")
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup(nope) found")
	}
}
