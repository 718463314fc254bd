package validator

import (
	"io"
	"strings"
	"testing"

	"giveaway/pkg/logger"
	"giveaway/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard})
}

func TestValidateIdentity(t *testing.T) {
	v := NewIdentityValidator(testLogger())

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid email", "user@example.com", false},
		{"valid with subdomain", "user@mail.example.com", false},
		{"valid with plus", "user+tag@example.com", false},
		{"empty", "", true},
		{"no at sign", "userexample.com", true},
		{"no domain", "user@", true},
		{"no local part", "@example.com", true},
		{"over max length", strings.Repeat("a", 250) + "@b.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateIdentity(tt.token)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentity(%q) error = %v, wantErr %v", tt.token, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePrize(t *testing.T) {
	v := NewIdentityValidator(testLogger())

	tests := []struct {
		name    string
		prize   *model.Prize
		wantErr bool
	}{
		{"valid", &model.Prize{ID: "grand", Name: "Grand Prize", Remaining: 1, Total: 1}, false},
		{"valid partially claimed", &model.Prize{ID: "grand", Name: "Grand Prize", Remaining: 0, Total: 5}, false},
		{"missing id", &model.Prize{Name: "Grand Prize", Remaining: 1, Total: 1}, true},
		{"missing name", &model.Prize{ID: "grand", Remaining: 1, Total: 1}, true},
		{"name too short", &model.Prize{ID: "grand", Name: "G", Remaining: 1, Total: 1}, true},
		{"zero total", &model.Prize{ID: "grand", Name: "Grand Prize", Remaining: 0, Total: 0}, true},
		{"negative remaining", &model.Prize{ID: "grand", Name: "Grand Prize", Remaining: -1, Total: 1}, true},
		{"remaining exceeds total", &model.Prize{ID: "grand", Name: "Grand Prize", Remaining: 2, Total: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePrize(tt.prize)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePrize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "identity_token", Message: "identity_token is required"},
	}
	msg := errs.Error()
	if !strings.Contains(msg, "identity_token is required") {
		t.Errorf("unexpected message: %q", msg)
	}

	if (ValidationErrors{}).Error() != "" {
		t.Error("expected empty message for no errors")
	}
}
