// Package acc is a client for the subset of the Autodesk Platform Services
// project and data management APIs used to browse ACC Docs and update file
// descriptions.
package acc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const BaseURL = "https://developer.api.autodesk.com"

// ReadOnlyTypes lists the extension types whose descriptions cannot be updated.
var ReadOnlyTypes = []string{"items:autodesk.bim360:C4RModel"}

// TokenSource supplies a usable bearer token, refreshing it if necessary.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// TransportError is returned for a failed request. Body is empty if the request
// failed before a response was received.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v %v failed (%v)", e.Method, e.URL, e.Err)
	}

	return fmt.Sprintf("%v %v failed: %v %v (%v)", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode), strings.TrimSpace(e.Body))
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsInvalidProject returns true if the error is the service rejecting a project ID,
// as opposed to an authorization or network failure.
func IsInvalidProject(err error) bool {
	var te *TransportError
	if !errors.As(err, &te) {
		return false
	}

	if strings.Contains(strings.ToLower(te.Body), "invalid project") {
		return true
	}

	return te.StatusCode == http.StatusBadRequest || te.StatusCode == http.StatusNotFound
}

type Client struct {
	base     string
	client   *http.Client
	tokens   TokenSource
	readonly map[string]bool
	debug    bool
}

type Option func(*Client)

func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.base = strings.TrimSuffix(base, "/")
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithReadOnlyTypes replaces the set of extension types reported as not updatable.
func WithReadOnlyTypes(types ...string) Option {
	return func(c *Client) {
		c.readonly = map[string]bool{}
		for _, t := range types {
			c.readonly[strings.ToLower(t)] = true
		}
	}
}

func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

func NewClient(tokens TokenSource, opts ...Option) *Client {
	c := Client{
		base:   BaseURL,
		client: http.DefaultClient,
		tokens: tokens,
	}

	WithReadOnlyTypes(ReadOnlyTypes...)(&c)

	for _, opt := range opts {
		opt(&c)
	}

	return &c
}

func (c *Client) ListHubs(ctx context.Context) ([]Hub, error) {
	resources, err := c.list(ctx, c.base+"/project/v1/hubs", true)
	if err != nil {
		return nil, err
	}

	hubs := []Hub{}
	for _, r := range resources {
		hubs = append(hubs, Hub{
			ID:     r.ID,
			Name:   r.Attributes.Name,
			Region: r.Attributes.Region,
		})
	}

	return hubs, nil
}

func (c *Client) ListProjects(ctx context.Context, hub string) ([]Project, error) {
	uri := fmt.Sprintf("%v/project/v1/hubs/%v/projects?page[limit]=200", c.base, url.PathEscape(hub))

	resources, err := c.list(ctx, uri, true)
	if err != nil {
		return nil, err
	}

	projects := []Project{}
	for _, r := range resources {
		projects = append(projects, Project{
			ID:   r.ID,
			Name: r.Attributes.Name,
		})
	}

	return projects, nil
}

func (c *Client) ListTopFolders(ctx context.Context, hub, project string) ([]Folder, error) {
	uri := fmt.Sprintf("%v/project/v1/hubs/%v/projects/%v/topFolders", c.base, url.PathEscape(hub), url.PathEscape(project))

	resources, err := c.list(ctx, uri, false)
	if err != nil {
		return nil, err
	}

	folders := []Folder{}
	for _, r := range resources {
		folders = append(folders, Folder{ID: r.ID, Name: r.name()})
	}

	return folders, nil
}

// ListFolderChildren returns the subfolders on the first page of a folder's contents.
func (c *Client) ListFolderChildren(ctx context.Context, project, folder string) ([]Folder, error) {
	resources, err := c.list(ctx, c.contents(project, folder), false)
	if err != nil {
		return nil, err
	}

	folders := []Folder{}
	for _, r := range resources {
		if r.is("folders") {
			folders = append(folders, Folder{ID: r.ID, Name: r.name()})
		}
	}

	return folders, nil
}

// ListFiles returns every item in a folder, following pagination to the end.
// Subfolders are not included.
func (c *Client) ListFiles(ctx context.Context, project, folder string) ([]FileItem, error) {
	resources, err := c.list(ctx, c.contents(project, folder), true)
	if err != nil {
		return nil, err
	}

	files := []FileItem{}
	for _, r := range resources {
		if r.is("items") {
			files = append(files, FileItem{
				ID:          r.ID,
				Name:        r.name(),
				Description: r.description(),
				Type:        r.Attributes.Extension.Type,
				Updatable:   !c.readonly[strings.ToLower(r.Attributes.Extension.Type)],
			})
		}
	}

	return files, nil
}

func (c *Client) GetItemDetail(ctx context.Context, project, item string) (*ItemDetail, error) {
	uri := fmt.Sprintf("%v/data/v1/projects/%v/items/%v", c.base, url.PathEscape(project), url.PathEscape(item))

	doc, err := c.get(ctx, uri)
	if err != nil {
		return nil, err
	}

	resources, err := doc.resources()
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, URL: uri, Err: fmt.Errorf("invalid response (%w)", err)}
	} else if len(resources) == 0 {
		return nil, &TransportError{Method: http.MethodGet, URL: uri, Err: fmt.Errorf("response has no data")}
	}

	r := resources[0]
	detail := ItemDetail{
		ID:          r.ID,
		Name:        r.name(),
		Type:        r.Attributes.Extension.Type,
		Tip:         r.tip(),
		Description: r.description(),
	}

	if detail.Description == "" {
		for _, v := range doc.Included {
			if v.is("versions") && v.ID == detail.Tip {
				detail.Description = v.description()
			}
		}
	}

	return &detail, nil
}

// UpdateVersionDescription sets the description attribute of a version.
func (c *Client) UpdateVersionDescription(ctx context.Context, project, version, description string) error {
	uri := fmt.Sprintf("%v/data/v1/projects/%v/versions/%v", c.base, url.PathEscape(project), url.PathEscape(version))

	body := map[string]any{
		"jsonapi": map[string]any{"version": "1.0"},
		"data": map[string]any{
			"type": "versions",
			"id":   version,
			"attributes": map[string]any{
				"description": description,
			},
		},
	}

	if c.debug {
		debugf("PATCH version description: version_id=%v desc_len=%v desc='%v'", version, len(description), preview(description))
	}

	return c.patch(ctx, uri, body)
}

// UpdateItemDescription sets the description held in an item's extension data.
func (c *Client) UpdateItemDescription(ctx context.Context, project, item, description string) error {
	uri := fmt.Sprintf("%v/data/v1/projects/%v/items/%v", c.base, url.PathEscape(project), url.PathEscape(item))

	body := map[string]any{
		"jsonapi": map[string]any{"version": "1.0"},
		"data": map[string]any{
			"type": "items",
			"id":   item,
			"attributes": map[string]any{
				"extension": map[string]any{
					"data": map[string]any{
						"description": description,
					},
				},
			},
		},
	}

	if c.debug {
		debugf("PATCH item description: item_id=%v desc_len=%v desc='%v'", item, len(description), preview(description))
	}

	return c.patch(ctx, uri, body)
}

func (c *Client) contents(project, folder string) string {
	return fmt.Sprintf("%v/data/v1/projects/%v/folders/%v/contents", c.base, url.PathEscape(project), url.PathEscape(folder))
}

// list fetches a collection, following 'next' links if 'all' is set. A page that
// has already been fetched is never fetched again.
func (c *Client) list(ctx context.Context, uri string, all bool) ([]resource, error) {
	resources := []resource{}
	seen := map[string]bool{}
	next := uri

	for next != "" && !seen[next] {
		seen[next] = true

		doc, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}

		page, err := doc.resources()
		if err != nil {
			return nil, &TransportError{Method: http.MethodGet, URL: next, Err: fmt.Errorf("invalid response (%w)", err)}
		}

		resources = append(resources, page...)

		if !all || doc.Links.Next == nil {
			break
		}

		next = c.resolve(next, doc.Links.Next.Href)
	}

	return resources, nil
}

func (c *Client) resolve(current, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	base, err := url.Parse(current)
	if err != nil {
		return href
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}

	return base.ResolveReference(ref).String()
}

func (c *Client) get(ctx context.Context, uri string) (*document, error) {
	b, err := c.send(ctx, http.MethodGet, uri, nil, "")
	if err != nil {
		return nil, err
	}

	doc := document{}
	if len(bytes.TrimSpace(b)) > 0 {
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, &TransportError{Method: http.MethodGet, URL: uri, Body: string(b), Err: fmt.Errorf("invalid JSON response (%w)", err)}
		}
	}

	return &doc, nil
}

func (c *Client) patch(ctx context.Context, uri string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	if c.debug {
		debugf("PATCH url: %v", uri)
		debugf("PATCH body: %s", b)
	}

	_, err = c.send(ctx, http.MethodPatch, uri, b, "application/vnd.api+json")

	return err
}

func (c *Client) send(ctx context.Context, method, uri string, body []byte, contentType string) ([]byte, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var rq *http.Request
	if body != nil {
		rq, err = http.NewRequestWithContext(ctx, method, uri, bytes.NewReader(body))
	} else {
		rq, err = http.NewRequestWithContext(ctx, method, uri, nil)
	}

	if err != nil {
		return nil, &TransportError{Method: method, URL: uri, Err: err}
	}

	rq.Header.Set("Authorization", "Bearer "+token)
	rq.Header.Set("Accept", "application/json, application/vnd.api+json")
	rq.Header.Set("User-Agent", "acc-docs-sync")
	if contentType != "" {
		rq.Header.Set("Content-Type", contentType)
	}

	if c.debug {
		debugf("%v %v", method, uri)
	}

	response, err := c.client.Do(rq)
	if err != nil {
		return nil, &TransportError{Method: method, URL: uri, Err: err}
	}

	defer response.Body.Close()

	b, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: uri, StatusCode: response.StatusCode, Err: err}
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &TransportError{Method: method, URL: uri, StatusCode: response.StatusCode, Body: string(b)}
	}

	return b, nil
}

func preview(s string) string {
	if r := []rune(s); len(r) > 120 {
		return string(r[:117]) + "..."
	}

	return s
}
