package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

const minimalDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
	`<w:body>` +
	`<w:p w:rsidR="001"><w:r><w:t>First paragraph</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>` +
	`</w:body>` +
	`</w:document>`

func buildDocx(t *testing.T, documentXML string, extras map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	entries := map[string]string{"word/document.xml": documentXML}
	for name, content := range extras {
		entries[name] = content
	}
	for name, content := range entries {
		w, err := writer.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

func TestBookmarks(t *testing.T) {
	doc := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:bookmarkStart w:id="0" w:name="clause_revocation"/>` +
		`<w:p><w:r><w:t>text</w:t></w:r></w:p>` +
		`<w:bookmarkEnd w:id="0"/>` +
		`<w:bookmarkStart w:id="1" w:name="_GoBack"/><w:bookmarkEnd w:id="1"/>` +
		`</w:body></w:document>`

	names, err := Bookmarks(buildDocx(t, doc, nil))
	if err != nil {
		t.Fatalf("Bookmarks failed: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"clause_revocation", "_GoBack"}) {
		t.Fatalf("unexpected bookmark names %v", names)
	}

	clauses, err := ClauseBookmarks(buildDocx(t, doc, nil))
	if err != nil {
		t.Fatalf("ClauseBookmarks failed: %v", err)
	}
	if !reflect.DeepEqual(clauses, []string{"clause_revocation"}) {
		t.Fatalf("unexpected clause bookmarks %v", clauses)
	}
}

func TestBookmarksMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	w, _ := writer.Create("word/styles.xml")
	_, _ = w.Write([]byte("<styles/>"))
	_ = writer.Close()

	if _, err := Bookmarks(buf.Bytes()); !errors.Is(err, ErrNoDocumentXML) {
		t.Fatalf("expected ErrNoDocumentXML, got %v", err)
	}
}

func TestBookmarksRejectsNonZip(t *testing.T) {
	if _, err := Bookmarks([]byte("not a zip archive")); err == nil {
		t.Fatalf("expected error for non-zip input")
	}
}

func TestTagWrapsBody(t *testing.T) {
	extras := map[string]string{"word/styles.xml": "<styles/>", "[Content_Types].xml": "<Types/>"}
	tagged, err := Tag(buildDocx(t, minimalDocument, extras), "clause_revocation")
	if err != nil {
		t.Fatalf("Tag failed: %v", err)
	}

	names, err := Bookmarks(tagged)
	if err != nil {
		t.Fatalf("Bookmarks on tagged archive failed: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"clause_revocation"}) {
		t.Fatalf("unexpected bookmarks %v", names)
	}

	// The bookmark must wrap all paragraphs: start before the first <w:p,
	// end after the last </w:p>.
	content := taggedDocumentXML(t, tagged)
	startIdx := strings.Index(content, `<w:bookmarkStart`)
	firstPara := strings.Index(content, `<w:p `)
	endIdx := strings.Index(content, `<w:bookmarkEnd`)
	lastPara := strings.LastIndex(content, `</w:p>`)
	if startIdx < 0 || startIdx > firstPara {
		t.Fatalf("bookmarkStart not before first paragraph: %s", content)
	}
	if endIdx < lastPara {
		t.Fatalf("bookmarkEnd not after last paragraph: %s", content)
	}

	// Other archive entries pass through untouched.
	reader, err := zip.NewReader(bytes.NewReader(tagged), int64(len(tagged)))
	if err != nil {
		t.Fatalf("reopen tagged archive: %v", err)
	}
	found := map[string]bool{}
	for _, f := range reader.File {
		found[f.Name] = true
	}
	for name := range extras {
		if !found[name] {
			t.Errorf("entry %s lost during tagging", name)
		}
	}
}

func TestTagWithoutParagraphs(t *testing.T) {
	doc := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body/></w:document>`
	if _, err := Tag(buildDocx(t, doc, nil), "clause_x"); err == nil {
		t.Fatalf("expected error for paragraph-free document")
	}
}

func taggedDocumentXML(t *testing.T, data []byte) string {
	t.Helper()
	content, err := documentXML(data)
	if err != nil {
		t.Fatalf("read document.xml: %v", err)
	}
	return string(content)
}
