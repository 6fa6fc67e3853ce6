package sqlparse

import "strings"

// NormalizeTableName applies spec.md's fully-qualified-name rule:
// catalog.schema.table, lowercased, dequoted. If no catalog segment is
// present (two-part name), defaultCatalog is prepended.
func NormalizeTableName(raw, defaultCatalog string) string {
	cleaned := identifierQuote.Replace(strings.TrimSpace(raw))
	parts := strings.Split(cleaned, ".")
	for i := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(parts[i]))
	}

	switch len(parts) {
	case 3:
		return strings.Join(parts, ".")
	case 2:
		return strings.ToLower(defaultCatalog) + "." + strings.Join(parts, ".")
	case 1:
		return strings.ToLower(defaultCatalog) + ".default." + parts[0]
	default:
		return strings.ToLower(defaultCatalog) + "." + strings.Join(parts, ".")
	}
}
