package convert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestImport(t *testing.T) {
	var gotField []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Import" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		file, _, err := r.FormFile("files")
		if err != nil {
			t.Errorf("missing files field: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		buf := make([]byte, 64)
		n, _ := file.Read(buf)
		gotField = buf[:n]
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sfdt":"converted"}`))
	}))
	defer server.Close()

	client := New(server.URL + "/")
	payload, err := client.Import(context.Background(), []byte("docx bytes"))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if string(gotField) != "docx bytes" {
		t.Fatalf("service received %q", gotField)
	}

	var parsed map[string]string
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if parsed["sfdt"] != "converted" {
		t.Fatalf("unexpected payload %s", payload)
	}
}

func TestSystemClipboard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/SystemClipboard" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Content string `json:"content"`
			Type    string `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Type != ".html" {
			t.Errorf("expected type .html, got %q", body.Type)
		}
		if body.Content != "<p><u>REVOCATION</u></p>" {
			t.Errorf("unexpected content %q", body.Content)
		}
		_, _ = w.Write([]byte(`{"sfdt":"title"}`))
	}))
	defer server.Close()

	client := New(server.URL + "/")
	payload, err := client.SystemClipboard(context.Background(), FormattedHTML("Revocation", true, true))
	if err != nil {
		t.Fatalf("SystemClipboard failed: %v", err)
	}
	if string(payload) != `{"sfdt":"title"}` {
		t.Fatalf("unexpected payload %s", payload)
	}
}

func TestErrorStatusSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "conversion backend down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL + "/")
	if _, err := client.Import(context.Background(), []byte("x")); err == nil {
		t.Fatalf("expected error on 502")
	}
	if _, err := client.SystemClipboard(context.Background(), "<p>x</p>"); err == nil {
		t.Fatalf("expected error on 502")
	}
}

func TestInvalidJSONRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := New(server.URL + "/")
	if _, err := client.Import(context.Background(), []byte("x")); err == nil {
		t.Fatalf("expected error for non-JSON response")
	}
}

func TestFormattedHTML(t *testing.T) {
	cases := []struct {
		text                 string
		underline, uppercase bool
		want                 string
	}{
		{"Revocation", true, true, "<p><u>REVOCATION</u></p>"},
		{"Revocation", false, false, "<p>Revocation</p>"},
		{"Family Law Act", false, true, "<p>FAMILY LAW ACT</p>"},
		{"Executors", true, false, "<p><u>Executors</u></p>"},
	}
	for _, c := range cases {
		if got := FormattedHTML(c.text, c.underline, c.uppercase); got != c.want {
			t.Errorf("FormattedHTML(%q, %v, %v) = %q, want %q", c.text, c.underline, c.uppercase, got, c.want)
		}
	}
}
