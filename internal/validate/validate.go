// Package validate checks and cleans user input before it is stored.
package validate

import (
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nudge-cli/nudge/internal/errors"
)

const (
	// MaxNameLength is the maximum length for a webhook name.
	MaxNameLength = 32
	// MaxURLLength is the maximum length for a URL.
	MaxURLLength = 2048
	// MaxTitleLength is the maximum length for a title or task description.
	MaxTitleLength = 200
	// MaxTextLength is the maximum length for a free-text description.
	MaxTextLength = 4096
)

// nameRegex validates names (alphanumeric, dashes, underscores, periods).
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

func fieldError(field, value, message, suggestion string) *errors.UserError {
	return &errors.UserError{
		Message:    message,
		Suggestion: suggestion,
		Field:      field,
		Value:      value,
	}
}

// Name validates a short identifier such as a webhook name.
func Name(name string) error {
	if name == "" {
		return errors.NewUserError("Name cannot be empty", "Provide a name")
	}
	if len(name) > MaxNameLength {
		return fieldError("name", name,
			"Name too long",
			"Names must be 32 characters or fewer")
	}
	if !nameRegex.MatchString(name) {
		return fieldError("name", name,
			"Invalid name format",
			"Names must start with a letter or number and contain only letters, numbers, dashes, underscores, or periods")
	}
	return nil
}

// Title validates a one-line title.
func Title(field, title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.NewUserError(
			field+" cannot be empty",
			"Provide a value for "+field)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return errors.NewUserError(
			field+" too long",
			"Keep it to 200 characters or fewer")
	}
	return nil
}

// Text validates a description.
func Text(field, text string) error {
	if utf8.RuneCountInString(text) > MaxTextLength {
		return errors.NewUserError(
			field+" too long",
			"Keep it to 4096 characters or fewer")
	}
	return nil
}

// URL validates a URL for use as a webhook endpoint.
func URL(rawURL string) error {
	if rawURL == "" {
		return errors.NewUserError("URL cannot be empty", "Provide a valid URL")
	}
	if len(rawURL) > MaxURLLength {
		return errors.NewUserError("URL too long", "URLs must be 2048 characters or fewer")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fieldError("url", rawURL,
			"Invalid URL format",
			"Provide a valid URL starting with https://")
	}

	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fieldError("url", rawURL,
			"Invalid URL scheme",
			"URLs must use https:// (or http:// for localhost)")
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return fieldError("url", rawURL,
			"Invalid URL: missing hostname",
			"Provide a valid URL like https://example.com/webhook")
	}

	isLocalhost := hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1"

	if parsed.Scheme == "http" && !isLocalhost {
		return fieldError("url", rawURL,
			"HTTP not allowed for external URLs",
			"Use https://. HTTP is only allowed for localhost.")
	}

	if !isLocalhost {
		if err := checkInternalIP(hostname); err != nil {
			return err
		}
	}
	return nil
}

// checkInternalIP rejects literal private addresses. Hostnames are not
// resolved; config is validated at every start and must not hit DNS.
func checkInternalIP(hostname string) error {
	ip := net.ParseIP(hostname)
	if ip == nil {
		return nil
	}
	if isInternalIP(ip) {
		return fieldError("url", hostname,
			"Internal IP addresses not allowed",
			"Webhook URLs must point to external services")
	}
	return nil
}

var privateRanges = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"fc00::/7",
	"fe80::/10",
	"::1/128",
}

// isInternalIP checks if an IP is in a private or link-local range.
func isInternalIP(ip net.IP) bool {
	for _, cidr := range privateRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
