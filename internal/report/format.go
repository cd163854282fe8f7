package report

import (
	"regexp"
	"strings"
)

// Placeholder is shown for empty values.
const Placeholder = "정보 없음"

type ValueKind string

const (
	KindPlaceholder ValueKind = "placeholder"
	KindText        ValueKind = "text"
	KindList        ValueKind = "list"
	KindEmphasized  ValueKind = "emphasized"
)

// Segment is a run of text; Emphasis marks percentages.
type Segment struct {
	Text     string `json:"text"`
	Emphasis bool   `json:"emphasis,omitempty"`
}

type FormattedValue struct {
	Kind     ValueKind `json:"kind"`
	Text     string    `json:"text,omitempty"`
	Items    []string  `json:"items,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
}

var percentRe = regexp.MustCompile(`\d+%`)

// FormatValue renders bullets as a list, highlights percentages, and passes other text through.
func FormatValue(value string) FormattedValue {
	if value == "" {
		return FormattedValue{Kind: KindPlaceholder, Text: Placeholder}
	}
	if strings.Contains(value, "- ") || strings.Contains(value, "* ") {
		return FormattedValue{Kind: KindList, Items: listItems(value)}
	}
	if percentRe.MatchString(value) {
		return FormattedValue{Kind: KindEmphasized, Segments: emphasize(value)}
	}
	return FormattedValue{Kind: KindText, Text: value}
}

func listItems(value string) []string {
	var items []string
	for _, line := range strings.Split(value, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
			line = line[2:]
		}
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

func emphasize(value string) []Segment {
	var segs []Segment
	last := 0
	for _, loc := range percentRe.FindAllStringIndex(value, -1) {
		if loc[0] > last {
			segs = append(segs, Segment{Text: value[last:loc[0]]})
		}
		segs = append(segs, Segment{Text: value[loc[0]:loc[1]], Emphasis: true})
		last = loc[1]
	}
	if last < len(value) {
		segs = append(segs, Segment{Text: value[last:]})
	}
	return segs
}

// Plain flattens a formatted value back to display text.
func (v FormattedValue) Plain() string {
	switch v.Kind {
	case KindList:
		return "- " + strings.Join(v.Items, "\n- ")
	case KindEmphasized:
		var b strings.Builder
		for _, s := range v.Segments {
			b.WriteString(s.Text)
		}
		return b.String()
	}
	return v.Text
}
