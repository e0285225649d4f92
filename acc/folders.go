package acc

import (
	"context"
	"strings"
	"sync"
)

// ProjectFiles is the top folder that is expanded automatically when a project is opened.
const ProjectFiles = "Project Files"

// Loader fetches the subfolders of a folder.
type Loader func(ctx context.Context, project, folder string) ([]Folder, error)

// FolderNode is a lazily expanded node in a project's folder tree. A node is
// loaded at most once. Expanding a node that is already loading does nothing and
// a node whose load failed can be expanded again.
type FolderNode struct {
	Folder
	Project string

	sync.Mutex
	children []*FolderNode
	loaded   bool
	loading  bool
}

func NewFolderNode(project string, folder Folder) *FolderNode {
	return &FolderNode{
		Folder:  folder,
		Project: project,
	}
}

// Expand loads the node's children if they have not been loaded yet. Returns
// true if this call loaded the children.
func (n *FolderNode) Expand(ctx context.Context, load Loader) (bool, error) {
	n.Lock()
	if n.loaded || n.loading {
		n.Unlock()
		return false, nil
	}

	n.loading = true
	n.Unlock()

	folders, err := load(ctx, n.Project, n.ID)

	n.Lock()
	defer n.Unlock()

	n.loading = false
	if err != nil {
		return false, err
	}

	n.children = make([]*FolderNode, 0, len(folders))
	for _, f := range folders {
		n.children = append(n.children, NewFolderNode(n.Project, f))
	}

	n.loaded = true

	return true, nil
}

func (n *FolderNode) Loaded() bool {
	n.Lock()
	defer n.Unlock()

	return n.loaded
}

func (n *FolderNode) Children() []*FolderNode {
	n.Lock()
	defer n.Unlock()

	return append([]*FolderNode{}, n.children...)
}

// Find returns the node with the folder ID in the loaded part of the tree.
func (n *FolderNode) Find(id string) *FolderNode {
	if n.ID == id {
		return n
	}

	for _, child := range n.Children() {
		if node := child.Find(id); node != nil {
			return node
		}
	}

	return nil
}

// IsProjectFiles returns true for the 'Project Files' top folder.
func IsProjectFiles(f Folder) bool {
	return strings.EqualFold(strings.TrimSpace(f.Name), ProjectFiles)
}
