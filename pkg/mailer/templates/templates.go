package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
)

//go:embed *.tmpl
var FS embed.FS

// Welcome is the only template this service sends today; registration
// enqueues it fire-and-forget.
const Welcome = "welcome"

var parsed = htmpl.Must(htmpl.ParseFS(FS, "*.tmpl"))

// Render produces subject, text and html bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case Welcome:
		subject = "Welcome to " + str(data, "AppName", "the simulator program")
		text = fmt.Sprintf(
			"Hello %s,\n\nThank you for registering. Your account has been created.\n\nRegards,\n%s",
			str(data, "Name", "there"), str(data, "Team", "The Team"))
	default:
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}

	var buf bytes.Buffer
	if err := parsed.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", "", "", err
	}
	return subject, text, buf.String(), nil
}

func str(data map[string]any, key, def string) string {
	if v, ok := data[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}
