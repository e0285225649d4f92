package acc

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Hub struct {
	ID     string
	Name   string
	Region string
}

type Project struct {
	ID   string
	Name string
}

type Folder struct {
	ID   string
	Name string
}

// FileItem is a document in a folder. Updatable is false for extension types the
// service does not allow descriptions to be edited on.
type FileItem struct {
	ID          string
	Name        string
	Description string
	Type        string
	Updatable   bool
}

func (f FileItem) String() string {
	return fmt.Sprintf("%v [%v]", f.Name, f.Type)
}

type ItemDetail struct {
	ID          string
	Name        string
	Type        string
	Tip         string
	Description string
}

// JSON:API response envelope used by the project and data endpoints.
type document struct {
	Data     json.RawMessage `json:"data"`
	Included []resource      `json:"included"`
	Links    struct {
		Next *link `json:"next"`
	} `json:"links"`
}

type resource struct {
	Type          string        `json:"type"`
	ID            string        `json:"id"`
	Attributes    attributes    `json:"attributes"`
	Relationships relationships `json:"relationships"`
}

type attributes struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Description any       `json:"description"`
	Region      string    `json:"region"`
	Extension   extension `json:"extension"`
}

type extension struct {
	Type    string         `json:"type"`
	Version string         `json:"version"`
	Data    map[string]any `json:"data"`
}

type relationships struct {
	Tip struct {
		Data *struct {
			Type string `json:"type"`
			ID   string `json:"id"`
		} `json:"data"`
	} `json:"tip"`
}

// link is a JSON:API link, which may be either a plain URL or an object with an href.
type link struct {
	Href string `json:"href"`
}

func (l *link) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		l.Href = s
		return nil
	}

	var object struct {
		Href string `json:"href"`
	}

	if err := json.Unmarshal(b, &object); err != nil {
		return err
	}

	l.Href = object.Href

	return nil
}

func (d document) resources() ([]resource, error) {
	data := strings.TrimSpace(string(d.Data))

	switch {
	case data == "" || data == "null":
		return nil, nil

	case strings.HasPrefix(data, "["):
		var list []resource
		if err := json.Unmarshal(d.Data, &list); err != nil {
			return nil, err
		}
		return list, nil

	default:
		var r resource
		if err := json.Unmarshal(d.Data, &r); err != nil {
			return nil, err
		}
		return []resource{r}, nil
	}
}

func (r resource) is(kind string) bool {
	return strings.EqualFold(r.Type, kind)
}

func (r resource) name() string {
	if r.Attributes.DisplayName != "" {
		return r.Attributes.DisplayName
	}

	return r.Attributes.Name
}

// description returns the item description from the extension data, falling back
// to the plain description attribute.
func (r resource) description() string {
	if v, ok := r.Attributes.Extension.Data["description"].(string); ok && v != "" {
		return v
	}

	if v, ok := r.Attributes.Description.(string); ok {
		return v
	}

	return ""
}

func (r resource) tip() string {
	if r.Relationships.Tip.Data != nil {
		return r.Relationships.Tip.Data.ID
	}

	return ""
}
