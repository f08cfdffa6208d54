package security

import (
	"testing"
	"time"
)

func TestNewOutboundClient_ReturnsClient(t *testing.T) {
	client := NewOutboundClient(5 * time.Second)
	if client == nil {
		t.Fatal("expected non-nil client")
	}
}

func TestValidateBaseURL_AllowsPublicHTTPS(t *testing.T) {
	if err := ValidateBaseURL("https://newsapi.org/v2"); err != nil {
		t.Errorf("expected no error for public HTTPS URL, got %v", err)
	}
}

func TestValidateBaseURL_RejectsEmptyURL(t *testing.T) {
	if err := ValidateBaseURL(""); err == nil {
		t.Error("expected error for empty URL")
	}
}

func TestValidateBaseURL_RejectsDisallowedScheme(t *testing.T) {
	cases := []string{
		"ftp://newsapi.org/v2",
		"file:///etc/passwd",
		"javascript:alert(1)",
	}
	for _, rawURL := range cases {
		if err := ValidateBaseURL(rawURL); err == nil {
			t.Errorf("expected error for %q", rawURL)
		}
	}
}

func TestValidateBaseURL_RejectsBlockedIPs(t *testing.T) {
	cases := []string{
		"http://127.0.0.1/v2",
		"http://10.0.0.5/v2",
		"http://169.254.169.254/latest/meta-data",
		"http://192.168.1.1/v2",
	}
	for _, rawURL := range cases {
		if err := ValidateBaseURL(rawURL); err == nil {
			t.Errorf("expected error for %q", rawURL)
		}
	}
}

func TestValidateBaseURL_RejectsEmptyHost(t *testing.T) {
	if err := ValidateBaseURL("https:///v2"); err == nil {
		t.Error("expected error for URL without host")
	}
}
