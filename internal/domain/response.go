package domain

// ParsedResponse is the flattened view of a gateway response document.
// Values are string, bool, or nil for empty and "null" text.
type ParsedResponse map[string]interface{}

// String returns the value at key as a string. Booleans render as
// "true"/"false"; absent and nil values render as "".
func (p ParsedResponse) String(key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// Bool returns the value at key when it normalized to a boolean
func (p ParsedResponse) Bool(key string) (value bool, ok bool) {
	value, ok = p[key].(bool)
	return value, ok
}

// Has reports whether key is present, including keys holding nil
func (p ParsedResponse) Has(key string) bool {
	_, ok := p[key]
	return ok
}
