package note

import (
	"regexp"
	"sort"
	"strings"
)

// Frontmatter is the flat key→value metadata block prefixing a note body.
// Values are always strings; numbers and booleans round-trip as strings.
type Frontmatter map[string]string

// frontmatterRe matches a document that starts with a `---`-delimited
// frontmatter block. The first group is non-greedy so the earliest
// closing delimiter wins.
var frontmatterRe = regexp.MustCompile(`(?s)\A---\n(.*?)\n---\n(.*)\z`)

// Parse splits raw note text into frontmatter and body. Text without a
// well-formed delimiter pair degrades to an empty frontmatter map with
// the whole input as body; parsing never fails.
func Parse(raw string) (Frontmatter, string) {
	fm := Frontmatter{}
	m := frontmatterRe.FindStringSubmatch(raw)
	if m == nil {
		return fm, raw
	}

	lines := strings.Split(m[1], "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		colon := strings.Index(line, ":")
		if colon < 0 {
			continue
		}
		key := strings.TrimSpace(line[:colon])
		val := strings.TrimSpace(line[colon+1:])
		if key == "" {
			continue
		}
		if val == "|" && i+1 < len(lines) && strings.HasPrefix(lines[i+1], "  ") {
			// Block scalar: consume two-space-indented lines. A bare "|"
			// with no indented continuation is a literal value, so a
			// value of "|" itself survives the round trip.
			var block []string
			for i+1 < len(lines) && strings.HasPrefix(lines[i+1], "  ") {
				block = append(block, strings.TrimPrefix(lines[i+1], "  "))
				i++
			}
			val = strings.Join(block, "\n")
		}
		fm[key] = val
	}
	return fm, m[2]
}

// Compose serializes a frontmatter map and body back into note text.
// Keys are emitted in sorted order so output is deterministic. A value
// containing newlines is emitted as a block scalar (`key: |` plus
// two-space-indented lines) that Parse reads back verbatim. An empty
// frontmatter map produces the body alone, which Parse round-trips to
// an empty map.
func Compose(fm Frontmatter, body string) string {
	if len(fm) == 0 {
		return body
	}

	keys := make([]string, 0, len(fm))
	for k := range fm {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("---\n")
	for _, k := range keys {
		v := fm[k]
		if strings.Contains(v, "\n") {
			b.WriteString(k)
			b.WriteString(": |\n")
			for _, line := range strings.Split(v, "\n") {
				b.WriteString("  ")
				b.WriteString(line)
				b.WriteString("\n")
			}
			continue
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\n")
	}
	b.WriteString("---\n")
	b.WriteString(body)
	return b.String()
}
