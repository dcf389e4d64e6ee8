package sqlfmt

import (
	"encoding/json"
	"regexp"
	"strings"
)

// sqlKeywords get a line break inserted before each occurrence, in order.
// UNION precedes UNION ALL on purpose: the second pass re-breaks the ALL
// form, which is what produces the blank line before a UNION ALL branch.
var sqlKeywords = []string{
	"SELECT", "FROM", "WHERE",
	"INNER JOIN", "LEFT JOIN", "RIGHT JOIN", "FULL JOIN",
	"GROUP BY", "ORDER BY", "HAVING", "LIMIT", "OFFSET",
	"UNION", "UNION ALL",
	"ON", "AND", "OR",
	"CASE", "WHEN", "THEN", "ELSE", "END", "AS",
}

// indentHeads introduce comma lists that get their own indented lines.
var indentHeads = []string{"SELECT", "GROUP BY", "ORDER BY"}

var (
	keywordRes   []*regexp.Regexp
	jsonPrefixRe = regexp.MustCompile(`^\{?\s*"sql_query"\s*:\s*"`)
	jsonSuffixRe = regexp.MustCompile(`"\s*\}?$`)
	sqlFieldRe   = regexp.MustCompile(`"sql_query"\s*:\s*"([^"]*)"`)
	newlineRe    = regexp.MustCompile(`\n+`)
	spaceRe      = regexp.MustCompile(`\s+`)
	commaRe      = regexp.MustCompile(`\s*,\s*`)
	upperRe      = regexp.MustCompile(`(?i)\b(select|from|where|inner join|left join|right join|full join|group by|order by|having|limit|offset|union all|union|on|and|or|case|when|then|else|end|as)\b`)
)

func init() {
	keywordRes = make([]*regexp.Regexp, len(sqlKeywords))
	for i, k := range sqlKeywords {
		keywordRes[i] = regexp.MustCompile(`(?i)\b` + k + `\b`)
	}
}

// Pretty reformats a single-line SQL string for display: one clause per
// line, uppercase keywords, comma lists indented two spaces. Input that
// already spans more than three lines is assumed pre-formatted and returned
// unchanged, which also makes Pretty idempotent.
func Pretty(sql string) string {
	if sql == "" {
		return ""
	}

	clean := strings.TrimSpace(sql)

	// Strip a {"sql_query": "..."} envelope if the model leaked one.
	if strings.HasPrefix(clean, "{") && strings.Contains(clean, `"sql_query"`) {
		var payload struct {
			SQLQuery string `json:"sql_query"`
		}
		if err := json.Unmarshal([]byte(clean), &payload); err == nil {
			if payload.SQLQuery != "" {
				clean = payload.SQLQuery
			}
		} else if m := sqlFieldRe.FindStringSubmatch(clean); m != nil {
			clean = m[1]
		}
	}
	clean = jsonPrefixRe.ReplaceAllString(clean, "")
	clean = jsonSuffixRe.ReplaceAllString(clean, "")

	if strings.Contains(clean, "\n") && len(strings.Split(clean, "\n")) > 3 {
		return clean
	}

	s := newlineRe.ReplaceAllString(clean, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	s = commaRe.ReplaceAllString(s, ", ")
	s = strings.TrimSpace(s)

	for i, k := range sqlKeywords {
		s = keywordRes[i].ReplaceAllString(s, "\n"+k)
	}

	s = indentLists(s)

	s = upperRe.ReplaceAllStringFunc(s, strings.ToUpper)

	return strings.TrimSpace(s)
}

// indentLists breaks the comma list after SELECT, GROUP BY and ORDER BY
// onto two-space-indented lines. A list body extends across following lines
// until one starts with an uppercase letter (the next clause).
func indentLists(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		head, body, ok := splitIndentHead(lines[i])
		if !ok {
			out = append(out, lines[i])
			continue
		}
		for i+1 < len(lines) && !startsUpper(lines[i+1]) {
			i++
			body += "\n" + lines[i]
		}
		var parts []string
		for part := range strings.SplitSeq(body, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				parts = append(parts, part)
			}
		}
		out = append(out, head)
		for j, part := range parts {
			if j < len(parts)-1 {
				part += ","
			}
			out = append(out, "  "+part)
		}
	}
	return strings.Join(out, "\n")
}

// splitIndentHead matches lines shaped like "SELECT <body>".
func splitIndentHead(line string) (string, string, bool) {
	for _, h := range indentHeads {
		if !strings.HasPrefix(line, h) {
			continue
		}
		rest := line[len(h):]
		body := strings.TrimLeft(rest, " \t")
		if len(body) < len(rest) && body != "" {
			return h, body, true
		}
	}
	return "", "", false
}

func startsUpper(line string) bool {
	return line != "" && line[0] >= 'A' && line[0] <= 'Z'
}
