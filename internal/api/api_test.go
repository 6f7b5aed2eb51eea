package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bimtower/pkg/cache"
	"github.com/matzehuels/bimtower/pkg/pipeline"
	"github.com/matzehuels/bimtower/pkg/step"
	"github.com/matzehuels/bimtower/pkg/storage"
)

const shedJSON = `{
  "name": "Shed",
  "elements": [
    {"id": "site", "type": "IfcSite", "children": [
      {"id": "w1", "type": "IfcWall", "name": "Back wall",
       "position": {"x": 0, "y": 0, "z": 0},
       "dimensions": {"width": 3, "height": 2.5, "depth": 0.2}},
      {"id": "d1", "type": "IfcDoor", "position": {"x": 1, "y": 0, "z": 2}}
    ]}
  ]
}`

const shedTOML = `
name = "Shed"

[[elements]]
id = "site"
type = "IfcSite"

[[elements]]
id = "w1"
type = "IfcWall"
parent = "site"
`

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	srv := httptest.NewServer(New(runner, storage.NewMemoryRepository(), logger, opts...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, contentType, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decodeError(t *testing.T, data []byte) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode error body %q: %v", data, err)
	}
	return body
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, data := do(t, http.MethodGet, srv.URL+"/health", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !bytes.Contains(data, []byte(`"status": "ok"`)) {
		t.Errorf("body = %s", data)
	}
}

func TestExport(t *testing.T) {
	srv := newTestServer(t, WithExportDefaults(step.Header{Organization: "Acme"}, ""))

	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"json", "application/json", shedJSON},
		{"json default", "", shedJSON},
		{"toml", "application/toml; charset=utf-8", shedTOML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, http.MethodPost, srv.URL+"/v1/export", tt.contentType, tt.body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %s", resp.StatusCode, data)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/x-step" {
				t.Errorf("Content-Type = %q", ct)
			}
			if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, `filename="Shed.ifc"`) {
				t.Errorf("Content-Disposition = %q", cd)
			}
			out := string(data)
			for _, want := range []string{"ISO-10303-21;", "IFCWALL('w1'", "('Acme')", "'Shed'"} {
				if !strings.Contains(out, want) {
					t.Errorf("export missing %q", want)
				}
			}
		})
	}
}

func TestExportErrors(t *testing.T) {
	srv := newTestServer(t, WithMaxBodyBytes(64))

	tests := []struct {
		name        string
		contentType string
		body        string
		wantCode    string
	}{
		{"unknown parent", "application/json", `{"elements":[{"id":"a","type":"IfcWall","parent":"zz"}]}`, "INVALID_MANIFEST"},
		{"bad json", "application/json", `{"elements":`, "INVALID_MANIFEST"},
		{"unsupported type", "text/plain", `x`, "INVALID_FORMAT"},
		{"too large", "application/json", shedJSON, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, http.MethodPost, srv.URL+"/v1/export", tt.contentType, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d: %s", resp.StatusCode, data)
			}
			if body := decodeError(t, data); body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q (%s)", body.Code, tt.wantCode, body.Error)
			}
		})
	}
}

func TestModelLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp, data := do(t, http.MethodPost, srv.URL+"/v1/models", "application/json", shedJSON)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %s", resp.StatusCode, data)
	}
	var created storage.Summary
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || created.Name != "Shed" || created.Elements != 3 {
		t.Errorf("created = %+v", created)
	}
	if loc := resp.Header.Get("Location"); loc != "/v1/models/"+created.ID {
		t.Errorf("Location = %q", loc)
	}
	base := srv.URL + "/v1/models/" + created.ID

	resp, data = do(t, http.MethodGet, srv.URL+"/v1/models", "", "")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(data, []byte(created.ID)) {
		t.Errorf("list = %d %s", resp.StatusCode, data)
	}

	resp, data = do(t, http.MethodGet, base, "", "")
	var got storage.Model
	if err := json.Unmarshal(data, &got); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("get = %d %v", resp.StatusCode, err)
	}
	if got.Document == nil || got.Document.Count() != 3 {
		t.Errorf("stored document = %+v", got.Document)
	}

	resp, data = do(t, http.MethodGet, base+"/export.ifc?project_name=Garden+shed", "", "")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(data, []byte("'Garden shed'")) {
		t.Errorf("export = %d %s", resp.StatusCode, data)
	}

	resp, data = do(t, http.MethodGet, base+"/scene.json?properties=true", "", "")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(data, []byte(`"w1"`)) {
		t.Errorf("scene = %d %s", resp.StatusCode, data)
	}

	resp, data = do(t, http.MethodGet, base+"/render/plan.svg?labels=true&scale=20", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("render = %d %s", resp.StatusCode, data)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("render Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Cache") != "MISS" || !bytes.HasPrefix(data, []byte("<svg")) {
		t.Errorf("render headers %v body %.30s", resp.Header, data)
	}

	resp, data = do(t, http.MethodGet, base+"/render/hierarchy.dot", "", "")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(data, []byte(`"site" -> "w1"`)) {
		t.Errorf("hierarchy dot = %d %s", resp.StatusCode, data)
	}

	for _, bad := range []string{"/render/plan.dot", "/render/section.svg", "/render/plan.svg?scale=-2"} {
		resp, data = do(t, http.MethodGet, base+bad, "", "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s = %d %s", bad, resp.StatusCode, data)
		}
	}

	resp, _ = do(t, http.MethodDelete, base, "", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete = %d", resp.StatusCode)
	}
	resp, data = do(t, http.MethodGet, base, "", "")
	if resp.StatusCode != http.StatusNotFound || decodeError(t, data).Code != "NOT_FOUND" {
		t.Errorf("get after delete = %d %s", resp.StatusCode, data)
	}
}

func TestCreateModelRejectsInvalidManifest(t *testing.T) {
	srv := newTestServer(t)
	resp, data := do(t, http.MethodPost, srv.URL+"/v1/models", "application/json",
		`{"elements":[{"id":"a","type":"IfcWall"},{"id":"a","type":"IfcSlab"}]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	if body := decodeError(t, data); len(body.Details) == 0 {
		t.Errorf("no details for invalid manifest: %+v", body)
	}

	_, data = do(t, http.MethodGet, srv.URL+"/v1/models", "", "")
	if !bytes.Contains(data, []byte(`"models": []`)) {
		t.Errorf("invalid manifest was stored: %s", data)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := do(t, http.MethodGet, srv.URL+"/v2/nothing", "", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestExportFilename(t *testing.T) {
	tests := map[string]string{
		"Shed":        "Shed.ifc",
		"":            "export.ifc",
		"a/b":         "a_b.ifc",
		".hidden":     "export.ifc",
		"  Pavilion ": "Pavilion.ifc",
	}
	for in, want := range tests {
		if got := exportFilename(in); got != want {
			t.Errorf("exportFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
