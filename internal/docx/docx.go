// Package docx inspects and annotates DOCX blobs at the OOXML level. It only
// touches word/document.xml: listing bookmark names and wrapping the document
// body in a clause bookmark. Everything else in the archive passes through
// untouched.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const documentPart = "word/document.xml"

// ErrNoDocumentXML is returned for archives without word/document.xml.
var ErrNoDocumentXML = errors.New("docx: no word/document.xml in archive")

// Bookmarks returns the names of all w:bookmarkStart elements in document
// order.
func Bookmarks(data []byte) ([]string, error) {
	content, err := documentXML(data)
	if err != nil {
		return nil, err
	}

	var names []string
	decoder := xml.NewDecoder(bytes.NewReader(content))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("docx: parse document.xml: %w", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "bookmarkStart" {
			continue
		}
		for _, attr := range start.Attr {
			if attr.Name.Local == "name" {
				names = append(names, attr.Value)
			}
		}
	}
	return names, nil
}

// ClauseBookmarks returns the subset of bookmark names following the
// clause_* naming convention.
func ClauseBookmarks(data []byte) ([]string, error) {
	names, err := Bookmarks(data)
	if err != nil {
		return nil, err
	}
	var clauses []string
	for _, name := range names {
		if strings.HasPrefix(name, "clause_") {
			clauses = append(clauses, name)
		}
	}
	return clauses, nil
}

// Tag wraps the document body's paragraphs with a named bookmark, so that a
// clause template served to the editor already carries its marker: the
// bookmarkStart lands before the first paragraph and the bookmarkEnd after
// the last one. Insertion is positional on the serialized XML; the OOXML
// schema is far too permissive to round-trip through encoding/xml.
func Tag(data []byte, bookmarkID string) ([]byte, error) {
	content, err := documentXML(data)
	if err != nil {
		return nil, err
	}

	text := string(content)
	first := indexParagraphStart(text)
	last := strings.LastIndex(text, "</w:p>")
	if first < 0 || last < 0 || last < first {
		return nil, errors.New("docx: no paragraphs in document body")
	}
	last += len("</w:p>")

	var sb strings.Builder
	sb.Grow(len(text) + 128)
	sb.WriteString(text[:first])
	fmt.Fprintf(&sb, `<w:bookmarkStart w:id="%s" w:name="%s"/>`, bookmarkID, bookmarkID)
	sb.WriteString(text[first:last])
	fmt.Fprintf(&sb, `<w:bookmarkEnd w:id="%s"/>`, bookmarkID)
	sb.WriteString(text[last:])

	return rewriteArchive(data, []byte(sb.String()))
}

// indexParagraphStart finds the first paragraph open tag, accepting both
// <w:p> and <w:p attr...> forms.
func indexParagraphStart(text string) int {
	for offset := 0; ; {
		i := strings.Index(text[offset:], "<w:p")
		if i < 0 {
			return -1
		}
		i += offset
		rest := text[i+len("<w:p"):]
		if strings.HasPrefix(rest, ">") || strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, "/>") {
			return i
		}
		offset = i + len("<w:p")
	}
}

func documentXML(data []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("docx: open archive: %w", err)
	}
	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("docx: open %s: %w", documentPart, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("docx: read %s: %w", documentPart, err)
		}
		return content, nil
	}
	return nil, ErrNoDocumentXML
}

// rewriteArchive copies every entry of the original archive, replacing
// word/document.xml with the modified content.
func rewriteArchive(data, document []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("docx: open archive: %w", err)
	}

	var out bytes.Buffer
	writer := zip.NewWriter(&out)
	for _, file := range reader.File {
		w, err := writer.Create(file.Name)
		if err != nil {
			return nil, fmt.Errorf("docx: write %s: %w", file.Name, err)
		}
		if file.Name == documentPart {
			if _, err := w.Write(document); err != nil {
				return nil, fmt.Errorf("docx: write %s: %w", file.Name, err)
			}
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("docx: open %s: %w", file.Name, err)
		}
		_, err = io.Copy(w, rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("docx: copy %s: %w", file.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("docx: finalize archive: %w", err)
	}
	return out.Bytes(), nil
}
