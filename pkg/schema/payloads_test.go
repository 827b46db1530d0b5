package schema

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestUserPayload_Validate(t *testing.T) {
	tests := []struct {
		name     string
		payload  UserPayload
		expected map[string]string // field -> first message
	}{
		{
			name: "valid payload",
			payload: UserPayload{
				Name:    strPtr("Ann"),
				Address: strPtr("1 Main St"),
				Email:   strPtr("ann@example.com"),
			},
			expected: map[string]string{},
		},
		{
			name:    "all fields missing",
			payload: UserPayload{},
			expected: map[string]string{
				"name":    MsgRequired,
				"address": MsgRequired,
				"email":   MsgRequired,
			},
		},
		{
			name: "name too long",
			payload: UserPayload{
				Name:    strPtr(strings.Repeat("x", 51)),
				Address: strPtr("1 Main St"),
				Email:   strPtr("ann@example.com"),
			},
			expected: map[string]string{
				"name": "Longer than maximum length 50.",
			},
		},
		{
			name: "empty strings are present",
			payload: UserPayload{
				Name:    strPtr(""),
				Address: strPtr(""),
				Email:   strPtr(""),
			},
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.payload.Validate()
			if len(errs) != len(tt.expected) {
				t.Fatalf("expected %d error fields, got %d: %v", len(tt.expected), len(errs), errs)
			}
			for field, msg := range tt.expected {
				messages, ok := errs[field]
				if !ok {
					t.Errorf("expected error on field %q, got none", field)
					continue
				}
				if messages[0] != msg {
					t.Errorf("field %q: expected %q, got %q", field, msg, messages[0])
				}
			}
		})
	}
}

func TestProductPayload_Validate(t *testing.T) {
	tests := []struct {
		name     string
		payload  ProductPayload
		expected map[string]string
	}{
		{
			name: "valid payload",
			payload: ProductPayload{
				ProductName: strPtr("Widget"),
				Price:       floatPtr(9.99),
			},
			expected: map[string]string{},
		},
		{
			name:    "missing fields",
			payload: ProductPayload{},
			expected: map[string]string{
				"product_name": MsgRequired,
				"price":        MsgRequired,
			},
		},
		{
			name: "negative price",
			payload: ProductPayload{
				ProductName: strPtr("Widget"),
				Price:       floatPtr(-0.01),
			},
			expected: map[string]string{
				"price": MsgNegative,
			},
		},
		{
			name: "zero price is valid",
			payload: ProductPayload{
				ProductName: strPtr("Freebie"),
				Price:       floatPtr(0),
			},
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.payload.Validate()
			if len(errs) != len(tt.expected) {
				t.Fatalf("expected %d error fields, got %d: %v", len(tt.expected), len(errs), errs)
			}
			for field, msg := range tt.expected {
				messages, ok := errs[field]
				if !ok {
					t.Errorf("expected error on field %q, got none", field)
					continue
				}
				if messages[0] != msg {
					t.Errorf("field %q: expected %q, got %q", field, msg, messages[0])
				}
			}
		})
	}
}

func TestDecode(t *testing.T) {
	t.Run("type mismatch becomes a field error", func(t *testing.T) {
		var payload UserPayload
		errs, err := Decode(strings.NewReader(`{"name": 42}`), &payload)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !errs.Any() {
			t.Fatal("expected validation errors")
		}
		if errs["name"][0] != MsgNotString {
			t.Errorf("expected %q, got %q", MsgNotString, errs["name"][0])
		}
	})

	t.Run("price type mismatch", func(t *testing.T) {
		var payload ProductPayload
		errs, err := Decode(strings.NewReader(`{"product_name": "Widget", "price": "cheap"}`), &payload)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if errs["price"][0] != MsgNotNumber {
			t.Errorf("expected %q, got %q", MsgNotNumber, errs["price"][0])
		}
	})

	t.Run("bad datetime", func(t *testing.T) {
		var payload OrderPayload
		_, err := Decode(strings.NewReader(`{"order_date": "notadate"}`), &payload)
		// time.Time unmarshaling fails with a parse error, not a type
		// error, so a bad datetime surfaces as a malformed body.
		if err == nil {
			t.Fatal("expected decode error for malformed datetime")
		}
	})

	t.Run("syntax error is not a validation outcome", func(t *testing.T) {
		var payload UserPayload
		errs, err := Decode(strings.NewReader(`{"name":`), &payload)
		if err == nil {
			t.Fatal("expected decode error")
		}
		if errs != nil {
			t.Fatalf("expected no field errors, got %v", errs)
		}
	})

	t.Run("valid payload decodes", func(t *testing.T) {
		var payload UserPayload
		errs, err := Decode(strings.NewReader(`{"name":"Ann","address":"1 Main St","email":"ann@example.com"}`), &payload)
		if err != nil || errs != nil {
			t.Fatalf("unexpected failure: errs=%v err=%v", errs, err)
		}
		if payload.Name == nil || *payload.Name != "Ann" {
			t.Errorf("name not decoded: %v", payload.Name)
		}
	})
}

func TestErrors_Add(t *testing.T) {
	errs := Errors{}
	if errs.Any() {
		t.Fatal("fresh Errors should be empty")
	}
	errs.Add("name", MsgRequired)
	errs.Add("name", "second message")
	if !errs.Any() {
		t.Fatal("expected errors after Add")
	}
	if len(errs["name"]) != 2 || errs["name"][0] != MsgRequired {
		t.Errorf("messages not ordered: %v", errs["name"])
	}
}
