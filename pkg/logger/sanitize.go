package logger

import (
	"net/url"
	"strings"
)

// sensitiveParams are query parameter names whose values never reach the log
var sensitiveParams = map[string]bool{
	"password":     true,
	"token":        true,
	"access_token": true,
	"secret":       true,
	"api_key":      true,
	"apikey":       true,
	"email":        true,
	"auth":         true,
}

// SanitizedEmail masks an email address for logging (e.g., "u***@e***.com")
func SanitizedEmail(email string) string {
	username, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "[invalid-email]"
	}

	if len(username) > 1 {
		username = username[:1] + strings.Repeat("*", len(username)-1)
	}

	// keep the TLD
	domainParts := strings.Split(domain, ".")
	if len(domainParts) > 1 {
		for i := 0; i < len(domainParts)-1; i++ {
			domainParts[i] = strings.Repeat("*", len(domainParts[i]))
		}
		domain = strings.Join(domainParts, ".")
	}

	return username + "@" + domain
}

// SanitizedPath returns the request path with the values of sensitive query
// parameters replaced by [REDACTED]. Search filters stay readable.
func SanitizedPath(u *url.URL) string {
	if u.RawQuery == "" {
		return u.Path
	}

	values, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return u.Path + "?[REDACTED]"
	}

	redacted := false
	for key := range values {
		if sensitiveParams[strings.ToLower(key)] {
			values[key] = []string{"[REDACTED]"}
			redacted = true
		}
	}
	if !redacted {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path + "?" + values.Encode()
}
