package acc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
)

type token string

func (t token) AccessToken(ctx context.Context) (string, error) {
	return string(t), nil
}

type failing struct{}

func (f failing) AccessToken(ctx context.Context) (string, error) {
	return "", fmt.Errorf("not signed in")
}

type service struct {
	*httptest.Server
	sync.Mutex
	requests []string
}

func newService(t *testing.T, routes map[string]func(s *service, w http.ResponseWriter, r *http.Request)) *service {
	s := service{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.RequestURI())
		s.Unlock()

		if r.Header.Get("Authorization") != "Bearer access-token" {
			http.Error(w, `{"developerMessage":"invalid token"}`, http.StatusUnauthorized)
			return
		}

		if route, ok := routes[r.Method+" "+r.URL.EscapedPath()]; ok {
			route(&s, w, r)
			return
		}

		http.NotFound(w, r)
	}))

	t.Cleanup(s.Close)

	return &s
}

func reply(w http.ResponseWriter, format string, args ...any) {
	w.Header().Set("Content-Type", "application/vnd.api+json")
	fmt.Fprintf(w, format, args...)
}

const contents = "/data/v1/projects/b.project/folders/urn:adsk.wipprod:fs.folder:co.root/contents"

func folderContents(s *service, w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("page[number]") {
	case "":
		reply(w, `{
		  "links": { "next": { "href": "%v%v?page[number]=1" } },
		  "data": [
		    { "type": "folders", "id": "urn:folder:1", "attributes": { "name": "Drawings", "displayName": "Drawings" } },
		    { "type": "items", "id": "urn:item:1", "attributes": { "displayName": "Plan-A1.dwg", "extension": { "type": "items:autodesk.bim360:File", "data": { "description": "Old" } } } }
		  ]
		}`, s.URL, contents)

	case "1":
		reply(w, `{
		  "links": { "next": "%v?page[number]=2" },
		  "data": [
		    { "type": "Folders", "id": "urn:folder:2", "attributes": { "displayName": "Models" } },
		    { "type": "ITEMS", "id": "urn:item:2", "attributes": { "displayName": "Tower.rvt", "extension": { "type": "items:autodesk.bim360:C4RModel" } } }
		  ]
		}`, contents)

	case "2":
		reply(w, `{
		  "links": { "self": { "href": "%v" }, "next": { "href": "%v" } },
		  "data": [
		    { "type": "items", "id": "urn:item:3", "attributes": { "name": "Section B.pdf", "description": "Attribute description" } },
		    { "type": "links", "id": "urn:link:1", "attributes": { "displayName": "Shortcut" } }
		  ]
		}`, contents, contents)
	}
}

func TestListFiles(t *testing.T) {
	s := newService(t, map[string]func(*service, http.ResponseWriter, *http.Request){
		"GET " + contents: folderContents,
	})

	client := NewClient(token("access-token"), WithBaseURL(s.URL), WithHTTPClient(s.Client()))

	files, err := client.ListFiles(context.Background(), "b.project", "urn:adsk.wipprod:fs.folder:co.root")
	if err != nil {
		t.Fatalf("Unexpected error listing files (%v)", err)
	}

	expected := []FileItem{
		{ID: "urn:item:1", Name: "Plan-A1.dwg", Description: "Old", Type: "items:autodesk.bim360:File", Updatable: true},
		{ID: "urn:item:2", Name: "Tower.rvt", Type: "items:autodesk.bim360:C4RModel", Updatable: false},
		{ID: "urn:item:3", Name: "Section B.pdf", Description: "Attribute description", Updatable: true},
	}

	if !reflect.DeepEqual(files, expected) {
		t.Errorf("Incorrect files\n   expected: %+v\n   got:      %+v", expected, files)
	}

	if len(s.requests) != 3 {
		t.Errorf("Expected 3 page requests, got %v: %v", len(s.requests), s.requests)
	}
}

func TestListFolderChildren(t *testing.T) {
	s := newService(t, map[string]func(*service, http.ResponseWriter, *http.Request){
		"GET " + contents: folderContents,
	})

	client := NewClient(token("access-token"), WithBaseURL(s.URL), WithHTTPClient(s.Client()))

	folders, err := client.ListFolderChildren(context.Background(), "b.project", "urn:adsk.wipprod:fs.folder:co.root")
	if err != nil {
		t.Fatalf("Unexpected error listing folders (%v)", err)
	}

	expected := []Folder{{ID: "urn:folder:1", Name: "Drawings"}}
	if !reflect.DeepEqual(folders, expected) {
		t.Errorf("Incorrect folders\n   expected: %+v\n   got:      %+v", expected, folders)
	}

	if len(s.requests) != 1 {
		t.Errorf("Expected 1 request, got %v: %v", len(s.requests), s.requests)
	}
}

func TestListProjects(t *testing.T) {
	s := newService(t, map[string]func(*service, http.ResponseWriter, *http.Request){
		"GET /project/v1/hubs/b.hub/projects": func(s *service, w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page[limit]") != "200" {
				t.Errorf("Expected page[limit]=200, got %v", r.URL.RawQuery)
			}

			if r.URL.Query().Get("page[number]") == "" {
				reply(w, `{"links":{"next":{"href":"%v/project/v1/hubs/b.hub/projects?page[limit]=200&page[number]=1"}},"data":[{"type":"projects","id":"b.p1","attributes":{"name":"Tower"}}]}`, s.URL)
			} else {
				reply(w, `{"links":{"next":null},"data":[{"type":"projects","id":"b.p2","attributes":{"name":"Annex"}}]}`)
			}
		},
	})

	client := NewClient(token("access-token"), WithBaseURL(s.URL), WithHTTPClient(s.Client()))

	projects, err := client.ListProjects(context.Background(), "b.hub")
	if err != nil {
		t.Fatalf("Unexpected error listing projects (%v)", err)
	}

	expected := []Project{{ID: "b.p1", Name: "Tower"}, {ID: "b.p2", Name: "Annex"}}
	if !reflect.DeepEqual(projects, expected) {
		t.Errorf("Incorrect projects\n   expected: %+v\n   got:      %+v", expected, projects)
	}
}

func TestListHubsAndTopFolders(t *testing.T) {
	s := newService(t, map[string]func(*service, http.ResponseWriter, *http.Request){
		"GET /project/v1/hubs": func(s *service, w http.ResponseWriter, r *http.Request) {
			reply(w, `{"data":[{"type":"hubs","id":"b.hub","attributes":{"name":"WWP","region":"US"}}]}`)
		},
		"GET /project/v1/hubs/b.hub/projects/b.project/topFolders": func(s *service, w http.ResponseWriter, r *http.Request) {
			reply(w, `{"data":[{"type":"folders","id":"urn:f:1","attributes":{"name":"Project Files","displayName":"Project Files"}},{"type":"folders","id":"urn:f:2","attributes":{"displayName":"Plans"}}]}`)
		},
	})

	client := NewClient(token("access-token"), WithBaseURL(s.URL), WithHTTPClient(s.Client()))

	hubs, err := client.ListHubs(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error listing hubs (%v)", err)
	}

	if expected := []Hub{{ID: "b.hub", Name: "WWP", Region: "US"}}; !reflect.DeepEqual(hubs, expected) {
		t.Errorf("Incorrect hubs\n   expected: %+v\n   got:      %+v", expected, hubs)
	}

	folders, err := client.ListTopFolders(context.Background(), "b.hub", "b.project")
	if err != nil {
		t.Fatalf("Unexpected error listing top folders (%v)", err)
	}

	if expected := []Folder{{ID: "urn:f:1", Name: "Project Files"}, {ID: "urn:f:2", Name: "Plans"}}; !reflect.DeepEqual(folders, expected) {
		t.Errorf("Incorrect folders\n   expected: %+v\n   got:      %+v", expected, folders)
	}
}

func TestGetItemDetail(t *testing.T) {
	s := newService(t, map[string]func(*service, http.ResponseWriter, *http.Request){
		"GET /data/v1/projects/b.project/items/urn:item:1": func(s *service, w http.ResponseWriter, r *http.Request) {
			reply(w, `{
			  "data": {
			    "type": "items",
			    "id": "urn:item:1",
			    "attributes": { "displayName": "Plan-A1.dwg", "extension": { "type": "items:autodesk.bim360:File" } },
			    "relationships": { "tip": { "data": { "type": "versions", "id": "urn:version:1?version=3" } } }
			  },
			  "included": [
			    { "type": "versions", "id": "urn:version:1?version=3", "attributes": { "description": "Tip description" } }
			  ]
			}`)
		},
	})

	client := NewClient(token("access-token"), WithBaseURL(s.URL), WithHTTPClient(s.Client()))

	detail, err := client.GetItemDetail(context.Background(), "b.project", "urn:item:1")
	if err != nil {
		t.Fatalf("Unexpected error fetching item (%v)", err)
	}

	expected := ItemDetail{
		ID:          "urn:item:1",
		Name:        "Plan-A1.dwg",
		Type:        "items:autodesk.bim360:File",
		Tip:         "urn:version:1?version=3",
		Description: "Tip description",
	}

	if *detail != expected {
		t.Errorf("Incorrect item detail\n   expected: %+v\n   got:      %+v", expected, *detail)
	}
}

func TestUpdateVersionDescription(t *testing.T) {
	var body map[string]any
	var contentType string

	s := newService(t, map[string]func(*service, http.ResponseWriter, *http.Request){
		"PATCH /data/v1/projects/b.project/versions/urn:version:1%3Fversion=3": func(s *service, w http.ResponseWriter, r *http.Request) {
			contentType = r.Header.Get("Content-Type")
			b, _ := io.ReadAll(r.Body)
			json.Unmarshal(b, &body)
			reply(w, `{"data":{"type":"versions","id":"urn:version:1?version=3"}}`)
		},
	})

	client := NewClient(token("access-token"), WithBaseURL(s.URL), WithHTTPClient(s.Client()))

	if err := client.UpdateVersionDescription(context.Background(), "b.project", "urn:version:1?version=3", "First floor plan"); err != nil {
		t.Fatalf("Unexpected error updating version (%v)", err)
	}

	expected := map[string]any{
		"jsonapi": map[string]any{"version": "1.0"},
		"data": map[string]any{
			"type": "versions",
			"id":   "urn:version:1?version=3",
			"attributes": map[string]any{
				"description": "First floor plan",
			},
		},
	}

	if !reflect.DeepEqual(body, expected) {
		t.Errorf("Incorrect PATCH body\n   expected: %v\n   got:      %v", expected, body)
	}

	if contentType != "application/vnd.api+json" {
		t.Errorf("Incorrect content type\n   expected: %v\n   got:      %v", "application/vnd.api+json", contentType)
	}
}

func TestUpdateItemDescription(t *testing.T) {
	var body map[string]any

	s := newService(t, map[string]func(*service, http.ResponseWriter, *http.Request){
		"PATCH /data/v1/projects/b.project/items/urn:item:1": func(s *service, w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			json.Unmarshal(b, &body)
			reply(w, `{}`)
		},
	})

	client := NewClient(token("access-token"), WithBaseURL(s.URL), WithHTTPClient(s.Client()))

	if err := client.UpdateItemDescription(context.Background(), "b.project", "urn:item:1", "First floor plan"); err != nil {
		t.Fatalf("Unexpected error updating item (%v)", err)
	}

	expected := map[string]any{
		"jsonapi": map[string]any{"version": "1.0"},
		"data": map[string]any{
			"type": "items",
			"id":   "urn:item:1",
			"attributes": map[string]any{
				"extension": map[string]any{
					"data": map[string]any{
						"description": "First floor plan",
					},
				},
			},
		},
	}

	if !reflect.DeepEqual(body, expected) {
		t.Errorf("Incorrect PATCH body\n   expected: %v\n   got:      %v", expected, body)
	}
}

func TestTransportError(t *testing.T) {
	s := newService(t, map[string]func(*service, http.ResponseWriter, *http.Request){
		"PATCH /data/v1/projects/b.project/versions/urn:version:1": func(s *service, w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"errors":[{"detail":"You don't have permission"}]}`))
		},
	})

	client := NewClient(token("access-token"), WithBaseURL(s.URL), WithHTTPClient(s.Client()))

	err := client.UpdateVersionDescription(context.Background(), "b.project", "urn:version:1", "x")

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TransportError, got %v", err)
	}

	if te.StatusCode != http.StatusForbidden || te.Method != http.MethodPatch {
		t.Errorf("Incorrect transport error: %+v", te)
	}

	if te.Body != `{"errors":[{"detail":"You don't have permission"}]}` {
		t.Errorf("Incorrect error body: %v", te.Body)
	}

	if IsInvalidProject(err) {
		t.Errorf("Expected 403 not to be reported as an invalid project")
	}
}

func TestTransportErrorWithoutResponse(t *testing.T) {
	s := httptest.NewServer(http.NotFoundHandler())
	base := s.URL
	s.Close()

	client := NewClient(token("access-token"), WithBaseURL(base))

	_, err := client.ListHubs(context.Background())

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TransportError, got %v", err)
	}

	if te.StatusCode != 0 || te.Body != "" || te.Err == nil {
		t.Errorf("Incorrect transport error: %+v", te)
	}
}

func TestTokenSourceError(t *testing.T) {
	s := newService(t, nil)
	client := NewClient(failing{}, WithBaseURL(s.URL), WithHTTPClient(s.Client()))

	if _, err := client.ListHubs(context.Background()); err == nil {
		t.Errorf("Expected error")
	}

	if len(s.requests) != 0 {
		t.Errorf("Expected no requests without a token, got %v", s.requests)
	}
}

func TestIsInvalidProject(t *testing.T) {
	tests := map[error]bool{
		&TransportError{StatusCode: 400, Body: `{"detail":"Invalid project id"}`}: true,
		&TransportError{StatusCode: 404}:                                        true,
		&TransportError{StatusCode: 403, Body: "forbidden"}:                     false,
		&TransportError{StatusCode: 401}:                                        false,
		fmt.Errorf("not signed in"):                                             false,
	}

	for err, expected := range tests {
		if v := IsInvalidProject(err); v != expected {
			t.Errorf("Incorrect IsInvalidProject(%v)\n   expected: %v\n   got:      %v", err, expected, v)
		}
	}
}
