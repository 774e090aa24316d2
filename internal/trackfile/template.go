package trackfile

import (
	"fmt"
	"strconv"
	"strings"

	"stravagpx/internal/strava"
)

const startDateLayout = "2006-01-02T15:04:05-07:00"

type segmentKind int

const (
	segmentLiteral segmentKind = iota
	segmentStartDate
	segmentID
	segmentSportType
	segmentName
)

var placeholders = map[string]segmentKind{
	"start_date": segmentStartDate,
	"created_at": segmentStartDate,
	"id":         segmentID,
	"sport_type": segmentSportType,
	"name":       segmentName,
}

type segment struct {
	kind    segmentKind
	literal string
}

// Template is a parsed export path template.
type Template struct {
	raw      string
	segments []segment
}

// ParseTemplate validates and compiles an export path template. Literal
// braces are written as {{ and }}.
func ParseTemplate(raw string) (Template, error) {
	if strings.TrimSpace(raw) == "" {
		return Template{}, fmt.Errorf("export template must not be empty")
	}

	var (
		segments []segment
		literal  strings.Builder
	)
	flush := func() {
		if literal.Len() > 0 {
			segments = append(segments, segment{kind: segmentLiteral, literal: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		switch ch {
		case '{':
			if i+1 < len(raw) && raw[i+1] == '{' {
				literal.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(raw[i+1:], '}')
			if end < 0 {
				return Template{}, fmt.Errorf("export template %q: unclosed placeholder at offset %d", raw, i)
			}
			name := raw[i+1 : i+1+end]
			kind, ok := placeholders[name]
			if !ok {
				return Template{}, fmt.Errorf("export template %q: unknown placeholder {%s}", raw, name)
			}
			flush()
			segments = append(segments, segment{kind: kind})
			i += end + 1
		case '}':
			if i+1 < len(raw) && raw[i+1] == '}' {
				literal.WriteByte('}')
				i++
				continue
			}
			return Template{}, fmt.Errorf("export template %q: single '}' at offset %d", raw, i)
		default:
			literal.WriteByte(ch)
		}
	}
	flush()

	return Template{raw: raw, segments: segments}, nil
}

// MustParseTemplate is ParseTemplate for templates known to be valid.
func MustParseTemplate(raw string) Template {
	tmpl, err := ParseTemplate(raw)
	if err != nil {
		panic(err)
	}
	return tmpl
}

// String returns the template source.
func (t Template) String() string { return t.raw }

// Resolve renders the template for one activity. The result is relative to
// the export directory.
func (t Template) Resolve(activity strava.Activity) string {
	var b strings.Builder
	for _, seg := range t.segments {
		switch seg.kind {
		case segmentLiteral:
			b.WriteString(seg.literal)
		case segmentStartDate:
			b.WriteString(FormatStartDate(activity))
		case segmentID:
			b.WriteString(strconv.FormatInt(activity.ID, 10))
		case segmentSportType:
			b.WriteString(string(activity.SportType))
		case segmentName:
			b.WriteString(activity.Name)
		}
	}
	return b.String()
}

// FormatStartDate renders the UTC start timestamp with colons replaced by
// underscores, e.g. 2024-05-01T07_30_00+00_00.
func FormatStartDate(activity strava.Activity) string {
	return strings.ReplaceAll(activity.StartDate.UTC().Format(startDateLayout), ":", "_")
}
