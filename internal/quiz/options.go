package quiz

// NormalizeOptions turns an arbitrary options value into the ordered list
// of option texts.
//
// Strings are kept as-is. Objects contribute their "text" field, falling
// back to "label" when text is absent or null. Empty texts and elements of any other shape are
// skipped. Anything that is not a list yields an empty slice. Duplicates
// are kept; deduplication belongs to sanitization.
func NormalizeOptions(raw any) []string {
	switch v := raw.(type) {
	case []any:
		texts := make([]string, 0, len(v))
		for _, item := range v {
			if t := optionText(item); t != "" {
				texts = append(texts, t)
			}
		}
		return texts
	case []string:
		texts := make([]string, 0, len(v))
		for _, s := range v {
			if s != "" {
				texts = append(texts, s)
			}
		}
		return texts
	case []Option:
		texts := make([]string, 0, len(v))
		for _, o := range v {
			if o.Text != "" {
				texts = append(texts, o.Text)
			}
		}
		return texts
	case []map[string]any:
		texts := make([]string, 0, len(v))
		for _, m := range v {
			if t := optionText(m); t != "" {
				texts = append(texts, t)
			}
		}
		return texts
	default:
		return []string{}
	}
}

// optionText extracts the display text of a single option element.
func optionText(item any) string {
	switch v := item.(type) {
	case string:
		return v
	case map[string]any:
		// label is only consulted when text is absent or null.
		if t, ok := v["text"]; ok && t != nil {
			return fieldText(t)
		}
		return fieldText(v["label"])
	case Option:
		return v.Text
	default:
		return ""
	}
}

// fieldText renders a text/label field. Null or structured values are empty.
func fieldText(v any) string {
	switch v.(type) {
	case nil, []any, map[string]any:
		return ""
	}
	return Stringify(v)
}
