package guard

import "strings"

// sensitiveTokens are matched against the lower-cased input key name; a
// match redacts the value before the inputs mapping is persisted.
var sensitiveTokens = []string{
	"password", "secret", "token", "api_key", "apikey", "api-key",
	"private_key", "privatekey", "auth", "credential", "credentials",
	"access_key", "secret_key", "bearer", "jwt", "session",
}

const redactedValue = "[REDACTED]"

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, tok := range sensitiveTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// Redact returns a copy of inputs with sensitive values replaced by
// "[REDACTED]". Nested maps are traversed recursively; non-mapping values
// are left intact. The original map is never mutated.
func Redact(inputs map[string]any) map[string]any {
	out := make(map[string]any, len(inputs))
	for k, v := range inputs {
		if nested, ok := v.(map[string]any); ok {
			out[k] = Redact(nested)
			continue
		}
		if isSensitiveKey(k) {
			out[k] = redactedValue
			continue
		}
		out[k] = v
	}
	return out
}
