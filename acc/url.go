package acc

import (
	"errors"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

var ErrInvalidFolderURL = errors.New("invalid folder URL")

var (
	projectPath = regexp.MustCompile(`/projects/([a-zA-Z0-9\-\.]+)`)
	folderPath  = regexp.MustCompile(`/folders/([^/?#]+)`)
)

// FolderRef identifies a folder pasted from the ACC Docs web UI. ProjectID may
// be empty if the URL did not include one.
type FolderRef struct {
	ProjectID string
	FolderID  string
}

// ParseFolderURL extracts the project and folder IDs from an ACC Docs folder URL,
// e.g. https://acc.autodesk.com/docs/files/projects/<project>?folderUrn=<urn>.
// A project ID in the path takes precedence over a projectId query parameter.
func ParseFolderURL(raw string) (*FolderRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidFolderURL
	}

	ref := FolderRef{}

	if u, err := url.Parse(raw); err == nil {
		q := u.Query()
		ref.FolderID = q.Get("folderUrn")
		ref.ProjectID = q.Get("projectId")
	}

	if match := projectPath.FindStringSubmatch(raw); match != nil {
		ref.ProjectID = match[1]
	}

	if ref.FolderID == "" {
		if match := folderPath.FindStringSubmatch(raw); match != nil {
			ref.FolderID = unescape(match[1])
		}
	}

	if strings.HasPrefix(strings.ToLower(ref.FolderID), "urn%3a") {
		ref.FolderID = unescape(ref.FolderID)
	}

	if ref.FolderID == "" {
		return nil, ErrInvalidFolderURL
	}

	return &ref, nil
}

// ProjectCandidates returns the project IDs to try for a project ID taken from a
// URL, in order: the ID itself (reduced to its last segment if it is a URN) and,
// if it has no hub prefix, its 'b.' and 'a.' prefixed forms.
func ProjectCandidates(id string) []string {
	id = strings.TrimSpace(id)
	if id == "" {
		return []string{}
	}

	if strings.HasPrefix(id, "urn:") {
		parts := strings.Split(id, ":")
		if tail := parts[len(parts)-1]; tail != "" {
			id = tail
		}
	}

	ids := []string{id}
	if !strings.HasPrefix(id, "b.") && !strings.HasPrefix(id, "a.") {
		ids = append(ids, "b."+id, "a."+id)
	}

	candidates := []string{}
	for _, v := range ids {
		if v != "" && !slices.Contains(candidates, v) {
			candidates = append(candidates, v)
		}
	}

	return candidates
}

func unescape(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}

	return s
}
