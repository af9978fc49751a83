package render

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/valyala/bytebufferpool"
)

//go:embed templates/mail/*.html
var mailFS embed.FS

var (
	mu            sync.RWMutex
	mailTemplates *template.Template
	globalVars    map[string]interface{}
)

func parseEmbedded() (*template.Template, error) {
	t, err := template.ParseFS(mailFS, "templates/mail/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded mail templates: %w", err)
	}
	return t, nil
}

// applyOverrides replaces embedded mail templates with same-named files from
// <tmplDir>/mail. A file that does not parse is skipped.
func applyOverrides(t *template.Template, tmplDir string) error {
	paths, err := filepath.Glob(filepath.Join(tmplDir, "mail", "*.html"))
	if err != nil {
		return err
	}
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name := filepath.Base(path)
		if _, err := template.New(name).Parse(string(content)); err != nil {
			slog.Warn("Ignoring mail template override", "path", path, "error", err)
			continue
		}
		if _, err := t.New(name).Parse(string(content)); err != nil {
			return err
		}
	}
	return nil
}

// Initialize loads the mail templates. Templates under tmplDir/mail, when
// tmplDir is set, take precedence over the embedded ones.
func Initialize(gVars map[string]interface{}, tmplDir string) error {
	if tmplDir != "" {
		info, err := os.Stat(tmplDir)
		if err != nil {
			return fmt.Errorf("template directory does not exist: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("template path is not a directory: %s", tmplDir)
		}
	}

	t, err := parseEmbedded()
	if err != nil {
		return err
	}
	if tmplDir != "" {
		if err := applyOverrides(t, tmplDir); err != nil {
			return err
		}
	}

	mu.Lock()
	defer mu.Unlock()
	mailTemplates = t
	globalVars = gVars
	return nil
}

func loadTemplates() (*template.Template, map[string]interface{}, error) {
	mu.RLock()
	t, vars := mailTemplates, globalVars
	mu.RUnlock()
	if t != nil {
		return t, vars, nil
	}
	t, err := parseEmbedded()
	if err != nil {
		return nil, nil, err
	}
	mu.Lock()
	defer mu.Unlock()
	if mailTemplates == nil {
		mailTemplates = t
	}
	return mailTemplates, globalVars, nil
}

// RenderMail executes the mail template name (".html" optional) with the
// global vars overlaid by vars.
func RenderMail(name string, vars map[string]interface{}) (string, error) {
	t, gVars, err := loadTemplates()
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(name, ".html") {
		name += ".html"
	}

	data := make(map[string]interface{}, len(gVars)+len(vars))
	for k, v := range gVars {
		data[k] = v
	}
	for k, v := range vars {
		data[k] = v
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := t.ExecuteTemplate(buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
