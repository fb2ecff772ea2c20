package core

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"log"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	appfs "github.com/azedu/quizdesk/fs"
)

const emailTmplDir = "assets/templates/email"

// tmplPair holds the parsed text and HTML variants of one email template.
type tmplPair struct {
	text *texttmpl.Template
	html *htmltmpl.Template
}

var (
	templates map[string]*tmplPair
	tmplInit  sync.Once
)

type (
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// ContextData is the root object every email template executes against.
	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// Render fills TextContent and HTMLContent from BodyStr or the named template.
func (m *EmailMessage) Render(conf *Config) error {
	tmplInit.Do(parseTemplates)

	data := ContextData{FrontendBaseURL: conf.FrontendBaseURL, Data: m.TemplateData}
	pair := templates[m.TemplateName]

	switch {
	case m.BodyStr != "":
		m.TextContent = m.BodyStr
	case pair != nil && pair.text != nil:
		var buff bytes.Buffer
		if err := pair.text.Execute(&buff, data); err != nil {
			return err
		}
		m.TextContent = buff.String()
	}

	if pair != nil && pair.html != nil {
		var buff bytes.Buffer
		if err := pair.html.Execute(&buff, data); err != nil {
			return err
		}
		m.HTMLContent = buff.String()
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }

// parseTemplates loads every embedded email template together with its
// _base layout. Files prefixed with "_" are layouts, not templates.
func parseTemplates() {
	templates = make(map[string]*tmplPair)

	entries, err := appfs.FS.ReadDir(emailTmplDir)
	if err != nil {
		log.Print(fmt.Errorf("core.parseTemplates: %v", err))
		return
	}
	for _, entry := range entries {
		fname := entry.Name()
		if strings.HasPrefix(fname, "_") {
			continue
		}
		ext := path.Ext(fname)
		name := strings.TrimSuffix(fname, ext)
		pair := templates[name]
		if pair == nil {
			pair = new(tmplPair)
			templates[name] = pair
		}

		switch ext {
		case ".txt":
			tmpl, err := texttmpl.ParseFS(appfs.FS, path.Join(emailTmplDir, "_base.txt"), path.Join(emailTmplDir, fname))
			if err != nil {
				log.Print(fmt.Errorf("core.parseTemplates: %v", err))
				continue
			}
			pair.text = tmpl
		case ".gohtml":
			tmpl, err := htmltmpl.ParseFS(appfs.FS, path.Join(emailTmplDir, "_base.gohtml"), path.Join(emailTmplDir, fname))
			if err != nil {
				log.Print(fmt.Errorf("core.parseTemplates: %v", err))
				continue
			}
			pair.html = tmpl
		}
	}
}
