package logging

import "regexp"

// RedactedText replaces secret material in log output.
const RedactedText = "[REDACTED]"

// The service handles two kinds of secrets that can leak into logs: database
// credentials (keyword DSNs and postgres:// URLs) and JWTs forwarded by
// clients. Each gets a redaction rule.
var redactions = []struct {
	pattern *regexp.Regexp
	replace string
}{
	// password=xxx, pwd=xxx, pass=xxx in keyword-style connection strings
	{regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`), "${1}=" + RedactedText},
	// Bearer tokens (three dot-separated base64url segments)
	{regexp.MustCompile(`Bearer\s+[A-Za-z0-9-_]+\.[A-Za-z0-9-_]+\.[A-Za-z0-9-_]*`), "Bearer " + RedactedText},
	// user:pass@host credentials in URL-style connection strings
	{regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/\s]+`), "://" + RedactedText + "@" + RedactedText},
}

func redact(s string) string {
	for _, r := range redactions {
		s = r.pattern.ReplaceAllString(s, r.replace)
	}
	return s
}

// SanitizeConnectionString strips credentials from a connection string.
// Call this before logging any DSN, postgres or redis.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}
	return redact(connStr)
}

// SanitizeError strips credentials and tokens from an error message.
// Database and auth errors routinely echo their inputs, so any error that
// touched a DSN or a JWT goes through here before logging.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return redact(err.Error())
}
