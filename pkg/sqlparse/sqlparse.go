// Package sqlparse is the rule-based table/CTE extractor used by
// phase 2. Phase 2 always uses it: there is no LLM-based or hybrid
// table extraction, whatever EnableLLMExtraction is set to. It is intentionally not a general
// SQL grammar: it tokenizes for FROM/JOIN table references and
// `WITH name AS (` CTE bindings, which is enough to honor the CTE
// exclusion invariant without a full parser dependency (none of the
// retrieved example repos carry a general-purpose SQL parser — see
// DESIGN.md).
package sqlparse

import (
	"regexp"
	"strings"
)

var (
	cteBindingRe   = regexp.MustCompile(`(?i)\b([a-zA-Z_][a-zA-Z0-9_]*)\s+AS\s*\(`)
	withKeywordRe  = regexp.MustCompile(`(?i)^\s*WITH\b`)
	fromJoinRe     = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+([a-zA-Z0-9_."` + "`" + `]+)`)
	aliasRe        = regexp.MustCompile(`(?i)^\s+(?:AS\s+)?([a-zA-Z_][a-zA-Z0-9_]*)`)
	identifierQuote = strings.NewReplacer("`", "", `"`, "", "'", "")
)

// aliasStopWords are keywords that may follow a table name and are
// never read as its alias, so a following JOIN is still matched.
var aliasStopWords = map[string]bool{
	"join": true, "inner": true, "left": true, "right": true, "full": true, "outer": true, "cross": true,
	"on": true, "using": true, "where": true, "group": true, "order": true, "limit": true, "union": true, "having": true,
}

// TableReference is one FROM/JOIN clause's referenced name and optional alias.
type TableReference struct {
	Name  string
	Alias string
}

// ExtractCTENames returns the set of identifiers bound by `WITH x AS (...)`
// (including comma-separated additional bindings) in sql. A table name
// appearing in this set must be excluded from source-table extraction.
func ExtractCTENames(sql string) map[string]bool {
	ctes := map[string]bool{}
	if !withKeywordRe.MatchString(sql) {
		return ctes
	}
	for _, m := range cteBindingRe.FindAllStringSubmatch(sql, -1) {
		ctes[strings.ToLower(m[1])] = true
	}
	return ctes
}

// ExtractTableReferences returns every FROM/JOIN table reference in
// sql, excluding any that are CTE bindings.
func ExtractTableReferences(sql string) []TableReference {
	ctes := ExtractCTENames(sql)
	seen := map[string]bool{}
	var refs []TableReference

	for _, m := range fromJoinRe.FindAllStringSubmatchIndex(sql, -1) {
		rawName := identifierQuote.Replace(sql[m[2]:m[3]])
		alias := ""
		if am := aliasRe.FindStringSubmatch(sql[m[1]:]); am != nil && !aliasStopWords[strings.ToLower(am[1])] {
			alias = am[1]
		}
		if strings.EqualFold(rawName, "select") || strings.Contains(rawName, "(") {
			continue // subquery alias, e.g. "FROM (SELECT ..." won't match a bare name here anyway
		}
		nameLower := strings.ToLower(rawName)
		if ctes[nameLower] {
			continue
		}
		dedupeKey := nameLower + "|" + strings.ToLower(alias)
		if seen[dedupeKey] {
			continue
		}
		seen[dedupeKey] = true
		refs = append(refs, TableReference{Name: rawName, Alias: alias})
	}
	return refs
}
