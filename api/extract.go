package api

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

//MIME types accepted for resume uploads
const (
	MIMEText = "text/plain"
	MIMEPDF  = "application/pdf"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	docxParagraph = regexp.MustCompile(`</w:p>`)
	docxTag       = regexp.MustCompile(`<[^>]+>`)
)

//ResumeKind returns the normalized MIME type for the given file name and declared MIME type, or an empty string if unsupported
func ResumeKind(fileName, mime string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".txt":
		return MIMEText
	case ".pdf":
		return MIMEPDF
	case ".docx":
		return MIMEDocx
	}

	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	switch strings.TrimSpace(mime) {
	case MIMEText, MIMEPDF, MIMEDocx:
		return strings.TrimSpace(mime)
	}
	return ""
}

//ExtractResumeText returns the plain text of an uploaded resume file
func ExtractResumeText(fileName, mime string, data []byte) (string, error) {
	if len(data) > MaxResumeBytes {
		return "", &Error{Description: "File must be under 5MB", Type: ErrorTypeUser, Err: fmt.Errorf("file size (%d) was more than maximum allowed (%d)", len(data), MaxResumeBytes)}
	}

	var (
		text string
		err  error
	)

	switch ResumeKind(fileName, mime) {
	case MIMEText:
		text = string(data)
	case MIMEPDF:
		text, err = extractPDFText(data)
	case MIMEDocx:
		text, err = extractDocxText(data)
	default:
		return "", &Error{Description: "Please upload a .txt, .pdf or .docx file", Type: ErrorTypeUser, Err: fmt.Errorf("unsupported file type: %s (%s)", fileName, mime)}
	}

	if err != nil {
		return "", &Error{Description: "Could not read resume file", Type: ErrorTypeUser, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &Error{Description: "Could not read resume file", Type: ErrorTypeUser, Err: errors.New("no text found in file")}
	}

	return text, nil
}

func extractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	return b.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return stripDocxXML(doc.Editable().GetContent()), nil
}

//stripDocxXML turns WordprocessingML body XML into plain text, one line per paragraph
func stripDocxXML(content string) string {
	content = docxParagraph.ReplaceAllString(content, "\n")
	content = docxTag.ReplaceAllString(content, "")
	return html.UnescapeString(content)
}
