package acc

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseFolderURL(t *testing.T) {
	tests := []struct {
		url      string
		expected FolderRef
	}{
		{
			"https://acc.autodesk.com/docs/files/projects/8ad7c0a2-1f3e-4b5c-9d6e-7f8091a2b3c4?folderUrn=urn%3Aadsk.wipprod%3Afs.folder%3Aco.AbC123&viewModel=detail",
			FolderRef{ProjectID: "8ad7c0a2-1f3e-4b5c-9d6e-7f8091a2b3c4", FolderID: "urn:adsk.wipprod:fs.folder:co.AbC123"},
		},
		{
			"https://acc.autodesk.com/docs/files/folders/urn%3Aadsk.wipprod%3Afs.folder%3Aco.XyZ?projectId=b.1234",
			FolderRef{ProjectID: "b.1234", FolderID: "urn:adsk.wipprod:fs.folder:co.XyZ"},
		},
		{
			"https://acc.autodesk.com/docs/files/projects/b.5678/folders/urn%3Aadsk.wipprod%3Afs.folder%3Aco.Q",
			FolderRef{ProjectID: "b.5678", FolderID: "urn:adsk.wipprod:fs.folder:co.Q"},
		},
		{
			"https://acc.autodesk.com/docs/files?folderUrn=urn%253Aadsk.wipprod%253Afs.folder%253Aco.D",
			FolderRef{FolderID: "urn:adsk.wipprod:fs.folder:co.D"},
		},
	}

	for _, test := range tests {
		ref, err := ParseFolderURL(test.url)
		if err != nil {
			t.Errorf("Unexpected error parsing %v (%v)", test.url, err)
			continue
		}

		if *ref != test.expected {
			t.Errorf("Incorrect folder reference for %v\n   expected: %+v\n   got:      %+v", test.url, test.expected, *ref)
		}
	}
}

func TestParseFolderURLWithoutFolder(t *testing.T) {
	for _, url := range []string{"", "   ", "https://acc.autodesk.com/docs/files/projects/b.1234"} {
		if _, err := ParseFolderURL(url); !errors.Is(err, ErrInvalidFolderURL) {
			t.Errorf("Expected ErrInvalidFolderURL for '%v', got %v", url, err)
		}
	}
}

func TestProjectCandidates(t *testing.T) {
	tests := map[string][]string{
		"8ad7c0a2":                                 {"8ad7c0a2", "b.8ad7c0a2", "a.8ad7c0a2"},
		"b.8ad7c0a2":                               {"b.8ad7c0a2"},
		"a.8ad7c0a2":                               {"a.8ad7c0a2"},
		"urn:adsk.workspace:prod.project:8ad7c0a2": {"8ad7c0a2", "b.8ad7c0a2", "a.8ad7c0a2"},
		"":                                         {},
	}

	for id, expected := range tests {
		if candidates := ProjectCandidates(id); !reflect.DeepEqual(candidates, expected) {
			t.Errorf("Incorrect candidates for '%v'\n   expected: %v\n   got:      %v", id, expected, candidates)
		}
	}
}
