package domain

// Asset is a static document loaded from the content repository
// (the welcome card, the email template).
type Asset struct {
	ID       string
	Metadata map[string]any
	Content  string
}

// MetaString returns a string metadata value or def when missing.
func (a *Asset) MetaString(key, def string) string {
	if a == nil || a.Metadata == nil {
		return def
	}
	if v, ok := a.Metadata[key].(string); ok && v != "" {
		return v
	}
	return def
}
