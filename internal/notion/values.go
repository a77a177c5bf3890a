package notion

import "time"

// Property value payloads for page create and update requests.

func textSegments(s string) []map[string]any {
	return []map[string]any{{
		"type": "text",
		"text": map[string]any{"content": s},
	}}
}

// TitleValue sets a title property.
func TitleValue(s string) map[string]any {
	return map[string]any{"title": textSegments(s)}
}

// RichTextValue sets a rich text property.
func RichTextValue(s string) map[string]any {
	return map[string]any{"rich_text": textSegments(s)}
}

// NumberValue sets a number property.
func NumberValue(f float64) map[string]any {
	return map[string]any{"number": f}
}

// CheckboxValue sets a checkbox property.
func CheckboxValue(b bool) map[string]any {
	return map[string]any{"checkbox": b}
}

// RelationValue sets a relation property to the given pages.
func RelationValue(ids ...string) map[string]any {
	refs := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, map[string]any{"id": id})
	}
	return map[string]any{"relation": refs}
}

// DateValue sets a date property. Without hasTime only the calendar date is
// sent. With a time zone the wall clock time is sent alongside the zone name,
// otherwise the timestamp carries its offset.
func DateValue(start time.Time, end *time.Time, hasTime bool, timeZone string) map[string]any {
	format := func(t time.Time) string {
		switch {
		case !hasTime:
			return t.Format("2006-01-02")
		case timeZone != "":
			return t.Format("2006-01-02T15:04:05")
		default:
			return t.Format(time.RFC3339)
		}
	}

	date := map[string]any{"start": format(start)}
	if end != nil {
		date["end"] = format(*end)
	}
	if hasTime && timeZone != "" {
		date["time_zone"] = timeZone
	}
	return map[string]any{"date": date}
}
