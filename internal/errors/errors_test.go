package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	e := New(CategoryInclude, SeverityFatal, "include target missing")
	want := "include (fatal): include target missing"
	if e.Error() != want {
		t.Fatalf("expected %q, got %q", want, e.Error())
	}

	wrapped := Wrap(fmt.Errorf("open failed"), CategoryFileSystem, SeverityError, "reading asset")
	if wrapped.Error() != "filesystem (error): reading asset: open failed" {
		t.Fatalf("unexpected wrapped format: %q", wrapped.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	e := WrapFatal(cause, CategoryBundle, "bundle source unreadable")
	if !errors.Is(e, cause) {
		t.Fatal("expected errors.Is to find cause through Unwrap")
	}
}

func TestCategoryChecks(t *testing.T) {
	e := Fatal(CategoryPlugin, "plugin crashed")
	if !IsCategory(e, CategoryPlugin) {
		t.Fatal("expected plugin category")
	}
	if IsCategory(e, CategoryConfig) {
		t.Fatal("unexpected config category match")
	}
	if GetCategory(fmt.Errorf("plain")) != CategoryInternal {
		t.Fatal("plain errors should map to internal category")
	}
	if !IsFatal(e) {
		t.Fatal("expected fatal severity")
	}
	if IsFatal(fmt.Errorf("plain")) {
		t.Fatal("plain errors are not fatal")
	}
}

func TestWithContext(t *testing.T) {
	e := Fatal(CategoryInclude, "unreadable").WithContext("path", "partials/nav.html")
	if e.Context["path"] != "partials/nav.html" {
		t.Fatalf("context not recorded: %v", e.Context)
	}
}
