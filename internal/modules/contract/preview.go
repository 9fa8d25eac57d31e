package contract

import (
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var previewPolicy = bluemonday.NewPolicy().AllowElements("p", "br", "mark", "strong")

// sectionHeading matches the upper-case section titles of the agreement.
var sectionHeading = regexp.MustCompile(`^[A-Z][A-Z ]+[A-Z]$`)

// Preview renders contract text as HTML: paragraphs on blank lines, section
// headings in bold and every highlight phrase wrapped in <mark>. Phrases are
// matched against the raw text and each piece is escaped on its own, so a
// phrase never matches inside markup or an entity.
func Preview(text string, highlights []string) string {
	re := highlightPattern(highlights)

	var b strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		b.WriteString("<p>")
		for i, line := range strings.Split(para, "\n") {
			if i > 0 {
				b.WriteString("<br>")
			}
			heading := sectionHeading.MatchString(line)
			if heading {
				b.WriteString("<strong>")
			}
			writeMarked(&b, line, re)
			if heading {
				b.WriteString("</strong>")
			}
		}
		b.WriteString("</p>")
	}
	return previewPolicy.Sanitize(b.String())
}

func writeMarked(b *strings.Builder, line string, re *regexp.Regexp) {
	if re == nil {
		b.WriteString(html.EscapeString(line))
		return
	}
	last := 0
	for _, m := range re.FindAllStringIndex(line, -1) {
		b.WriteString(html.EscapeString(line[last:m[0]]))
		b.WriteString("<mark>")
		b.WriteString(html.EscapeString(line[m[0]:m[1]]))
		b.WriteString("</mark>")
		last = m[1]
	}
	b.WriteString(html.EscapeString(line[last:]))
}

// highlightPattern builds one alternation so overlapping phrases are marked
// once, longest first.
func highlightPattern(phrases []string) *regexp.Regexp {
	seen := map[string]bool{}
	var quoted []string
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		quoted = append(quoted, regexp.QuoteMeta(p))
	}
	if len(quoted) == 0 {
		return nil
	}
	sort.SliceStable(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	return regexp.MustCompile(strings.Join(quoted, "|"))
}
