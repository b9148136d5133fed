package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nguyenthenguyen/docx"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// Supported document MIME types.
const (
	MimePDF      = "application/pdf"
	MimeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText     = "text/plain"
	MimeMarkdown = "text/markdown"
)

var extensionTypes = map[string]string{
	".pdf":  MimePDF,
	".docx": MimeDOCX,
	".txt":  MimeText,
	".md":   MimeMarkdown,
}

// UnsupportedTypeError is returned for a document type that cannot be read.
type UnsupportedTypeError struct {
	MimeType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported document type: %q", e.MimeType)
}

// ExtractionError is returned when a supported document cannot be parsed.
type ExtractionError struct {
	MimeType string
	Message  string
	Cause    error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to extract %s text: %s: %v", e.MimeType, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to extract %s text: %s", e.MimeType, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ErrEmptyDocument is returned for an upload with neither text nor data.
var ErrEmptyDocument = errors.New("document is empty")

// Upload is a document received from a client, either as text or as file bytes.
type Upload struct {
	Text     string
	Data     []byte
	FileName string
	MimeType string
}

// Content returns the cleaned text of the upload. Inline text wins over
// file data; file data is decoded by its detected type.
func (u Upload) Content() (string, error) {
	if text := CleanText(u.Text); text != "" {
		return text, nil
	}
	if len(u.Data) == 0 {
		return "", ErrEmptyDocument
	}
	return ExtractFileText(u.Data, DetectMimeType(u.MimeType, u.FileName))
}

// SetPDFLicense registers a UniDoc metered license key for PDF extraction.
func SetPDFLicense(key string) error {
	if key == "" {
		return nil
	}
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("failed to set PDF license: %w", err)
	}
	return nil
}

// DetectMimeType resolves the document type from a declared content type,
// falling back to the file extension when the declared type is generic.
func DetectMimeType(contentType, fileName string) string {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil &&
			mt != "application/octet-stream" {
			return mt
		}
	}
	if mt, ok := extensionTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return mt
	}
	return contentType
}

// ExtractFileText returns the cleaned text content of an uploaded document.
func ExtractFileText(data []byte, mimeType string) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(mimeType) {
	case MimePDF:
		text, err = extractPDF(data)
	case MimeDOCX:
		text, err = extractDOCX(data)
	case MimeText, MimeMarkdown, "text/x-markdown":
		if !utf8.Valid(data) {
			return "", &ExtractionError{MimeType: mimeType, Message: "content is not valid UTF-8"}
		}
		text = string(data)
	default:
		return "", &UnsupportedTypeError{MimeType: mimeType}
	}
	if err != nil {
		return "", err
	}

	text = CleanText(text)
	if text == "" {
		return "", &ExtractionError{MimeType: mimeType, Message: "document contains no text"}
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", &ExtractionError{MimeType: MimePDF, Message: "failed to read PDF", Cause: err}
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", &ExtractionError{MimeType: MimePDF, Message: "failed to get page count", Cause: err}
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", &ExtractionError{MimeType: MimePDF, Message: fmt.Sprintf("failed to read page %d", i), Cause: err}
		}
		ex, err := extractor.New(page)
		if err != nil {
			return "", &ExtractionError{MimeType: MimePDF, Message: fmt.Sprintf("failed to open page %d", i), Cause: err}
		}
		pageText, err := ex.ExtractText()
		if err != nil {
			return "", &ExtractionError{MimeType: MimePDF, Message: fmt.Sprintf("failed to extract page %d", i), Cause: err}
		}
		sb.WriteString(pageText)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>`)
	docxBreak        = regexp.MustCompile(`<w:(br|cr|tab)\s*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

func extractDOCX(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{MimeType: MimeDOCX, Message: "failed to read DOCX", Cause: err}
	}
	defer func() { _ = r.Close() }()

	return docxXMLToText(r.Editable().GetContent()), nil
}

// docxXMLToText flattens WordprocessingML body XML into plain text, one
// paragraph per line.
func docxXMLToText(content string) string {
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = docxBreak.ReplaceAllString(content, " ")
	content = xmlTag.ReplaceAllString(content, "")
	return htmlUnescaper.Replace(content)
}

var htmlUnescaper = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)
