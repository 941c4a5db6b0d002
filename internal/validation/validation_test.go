package validation

import (
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid email", "member@example.com", false},
		{"valid with plus", "member+tag@example.com", false},
		{"valid with subdomain", "member@mail.example.fr", false},
		{"empty", "", true},
		{"no at sign", "memberexample.com", true},
		{"no domain", "member@", true},
		{"no tld", "member@example", true},
		{"spaces", "mem ber@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "password123", false},
		{"exactly eight chars", "12345678", false},
		{"too short", "1234567", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid name", "Sofia", false},
		{"two chars", "Al", false},
		{"one char", "A", true},
		{"empty", "", true},
		{"only spaces", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("first_name", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		maxAmount float64
		wantErr   bool
	}{
		{"within ceiling", 100, 500, false},
		{"exactly at ceiling", 500, 500, false},
		{"above ceiling", 501, 500, true},
		{"zero", 0, 500, true},
		{"negative", -10, 500, true},
		{"no ceiling configured", 10000, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(tt.amount, tt.maxAmount)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAmount(%v, %v) error = %v, wantErr %v", tt.amount, tt.maxAmount, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRelationship(t *testing.T) {
	tests := []struct {
		name         string
		relationship string
		wantErr      bool
	}{
		{"spouse", "spouse", false},
		{"child", "child", false},
		{"parent", "parent", false},
		{"sibling", "sibling", false},
		{"other", "other", false},
		{"case insensitive", "Child", false},
		{"padded", " spouse ", false},
		{"unknown", "cousin", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRelationship(tt.relationship)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRelationship(%q) error = %v, wantErr %v", tt.relationship, err, tt.wantErr)
			}
		})
	}
}
