package render

import "strings"

// Render substitutes {{key}} tokens in template with values from data.
// Tokens with no matching key are left verbatim so partially populated
// events still produce a readable message. The scan is a single pass:
// substituted values are never re-expanded, so a value containing
// {{...}} cannot trigger recursive substitution.
func Render(template string, data map[string]string) string {
	var out strings.Builder
	out.Grow(len(template))

	rest := template
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			out.WriteString(rest)
			return out.String()
		}

		end := strings.Index(rest[start+2:], "}}")
		if end < 0 {
			out.WriteString(rest)
			return out.String()
		}

		key := rest[start+2 : start+2+end]
		value, ok := data[key]
		if !ok {
			// unmatched token stays verbatim
			out.WriteString(rest[:start+2+end+2])
		} else {
			out.WriteString(rest[:start])
			out.WriteString(value)
		}
		rest = rest[start+2+end+2:]
	}
}

// Message renders both parts of a template in one call
func Message(subject, body string, data map[string]string) (string, string) {
	return Render(subject, data), Render(body, data)
}
