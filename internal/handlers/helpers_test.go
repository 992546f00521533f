package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondJSON(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSON(w, http.StatusCreated, map[string]string{"message": "hello"})

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["message"] != "hello" {
		t.Errorf("Expected message 'hello', got %v", body["message"])
	}
	if _, wrapped := body["data"]; wrapped {
		t.Error("Expected body to be unwrapped")
	}
}

func TestRespondJSONError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		message     string
		wantError   string
		wantMessage string
	}{
		{"bad request", http.StatusBadRequest, "Email already registered", "Bad Request", "Email already registered"},
		{"unauthorized", http.StatusUnauthorized, "Invalid email or password", "Unauthorized", "Invalid email or password"},
		{"long message truncated", http.StatusBadRequest, strings.Repeat("x", 250), "Bad Request", strings.Repeat("x", 200) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r := httptest.NewRequest("POST", "/auth/signup", nil)
			respondJSONError(w, r, tt.status, tt.message, nil)

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
			var body map[string]any
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body["success"] != false {
				t.Error("Expected success to be false")
			}
			if body["error"] != tt.wantError {
				t.Errorf("Expected error %q, got %v", tt.wantError, body["error"])
			}
			if body["message"] != tt.wantMessage {
				t.Errorf("Expected message %q, got %v", tt.wantMessage, body["message"])
			}
			if body["detail"] != tt.wantMessage {
				t.Errorf("Expected detail %q, got %v", tt.wantMessage, body["detail"])
			}
		})
	}
}

func TestDecodeAndValidate(t *testing.T) {
	t.Parallel()

	type payload struct {
		Email string `json:"email" validate:"required,email"`
	}

	tests := []struct {
		name   string
		body   string
		wantOK bool
		want   int
	}{
		{"valid", `{"email":"a@b.com"}`, true, 0},
		{"malformed", `{"email":`, false, http.StatusBadRequest},
		{"invalid email", `{"email":"nope"}`, false, http.StatusUnprocessableEntity},
		{"empty body", ``, false, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			var p payload
			ok := decodeAndValidate(w, r, &p, nil)
			if ok != tt.wantOK {
				t.Fatalf("decodeAndValidate() = %v, want %v", ok, tt.wantOK)
			}
			if !ok && w.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, w.Code)
			}
		})
	}
}
