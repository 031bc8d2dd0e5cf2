package handler

import (
	"strings"
	"testing"
)

func TestValidator_UsesJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&taskRequest{})
	if err == nil {
		t.Fatal("expected an error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "title is required") || !strings.Contains(msg, "status is required") {
		t.Fatalf("unexpected message: %s", msg)
	}
	if strings.Contains(msg, "Title") {
		t.Fatalf("struct field names leaked: %s", msg)
	}
}

func TestValidator_OneOf(t *testing.T) {
	urgent := "URGENT"
	err := NewValidator().Validate(&taskRequest{Title: "x", Status: "TODO", Priority: &urgent})
	if err == nil || err.Error() != "priority must be one of: LOW, MEDIUM, HIGH" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidator_Valid(t *testing.T) {
	low := "LOW"
	if err := NewValidator().Validate(&taskRequest{Title: "x", Status: "IN_PROGRESS", Priority: &low}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidator_EmptyOptionalsPass(t *testing.T) {
	empty := ""
	req := &taskRequest{Title: "x", Status: "TODO", Priority: &empty, DueDate: &empty}
	if err := NewValidator().Validate(req); err != nil {
		t.Fatalf("empty optional fields should validate, got %v", err)
	}
}

func TestValidator_DueDate(t *testing.T) {
	bad := "tomorrow"
	err := NewValidator().Validate(&taskRequest{Title: "x", Status: "TODO", DueDate: &bad})
	if err == nil || err.Error() != errInvalidDueDate.Error() {
		t.Fatalf("unexpected error: %v", err)
	}
}
