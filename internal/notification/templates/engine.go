// Package templates renders the embedded mail templates. A template file
// defines a text "subject" block and an html "email_html" block.
package templates

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"io/fs"
	"sync"
	texttmpl "text/template"
)

// ReceiptData is the payload for the purchase receipt template.
type ReceiptData struct {
	ProductTitle string
}

// Rendered holds the materialized parts of a mail template.
type Rendered struct {
	Subject string
	HTML    string
}

type compiled struct {
	text *texttmpl.Template
	html *htmltmpl.Template
}

// Engine compiles embedded templates on first use and caches them.
type Engine struct {
	mu    sync.RWMutex
	cache map[string]*compiled
}

// NewEngine creates a template engine over the embedded template files.
func NewEngine() *Engine {
	return &Engine{cache: make(map[string]*compiled)}
}

// Render materializes the template with the given id (e.g.
// "commerce.purchase_receipt").
func (e *Engine) Render(id string, data any) (Rendered, error) {
	c, err := e.get(id)
	if err != nil {
		return Rendered{}, err
	}

	var out Rendered
	var buf bytes.Buffer
	if err := c.text.ExecuteTemplate(&buf, "subject", data); err != nil {
		return Rendered{}, fmt.Errorf("render subject (%s): %w", id, err)
	}
	out.Subject = buf.String()

	buf.Reset()
	if err := c.html.ExecuteTemplate(&buf, "email_html", data); err != nil {
		return Rendered{}, fmt.Errorf("render email_html (%s): %w", id, err)
	}
	out.HTML = buf.String()

	return out, nil
}

func (e *Engine) get(id string) (*compiled, error) {
	e.mu.RLock()
	c, ok := e.cache[id]
	e.mu.RUnlock()
	if ok {
		return c, nil
	}

	raw, err := fs.ReadFile(EmbeddedFS, "files/"+id+".tmpl")
	if err != nil {
		return nil, fmt.Errorf("read embedded template %q: %w", id, err)
	}

	text, err := texttmpl.New(id).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse text blocks (%s): %w", id, err)
	}
	html, err := htmltmpl.New(id).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html block (%s): %w", id, err)
	}

	c = &compiled{text: text, html: html}
	e.mu.Lock()
	e.cache[id] = c
	e.mu.Unlock()
	return c, nil
}
