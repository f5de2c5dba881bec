package hierarchy

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/dusk-indust/intelliparse/internal/extract"
)

// NodeKind discriminates the variants of Node.
type NodeKind int

const (
	FolderNode NodeKind = iota
	FileNode
	MethodNode
)

func (k NodeKind) String() string {
	switch k {
	case FolderNode:
		return "folder"
	case FileNode:
		return "file"
	case MethodNode:
		return "method"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Context values exposed to hosts, matching the keys their menus bind to.
const (
	ContextRootDir  = "rootDir"
	ContextChildren = "children"
	ContextFunction = "function"
)

// Node is one entry in the rendered tree. Nodes are values rebuilt on every
// RootNodes/Children call; hold on to the ID, not the Node, across changes.
type Node struct {
	Kind  NodeKind `json:"kind"`
	Path  string   `json:"path"`
	Label string   `json:"label"`
	Root  bool     `json:"root,omitempty"`

	// Method is set for MethodNode only.
	Method *extract.MethodRecord `json:"method,omitempty"`
}

// ContextValue returns the host context key for the node.
func (n Node) ContextValue() string {
	switch {
	case n.Kind == MethodNode:
		return ContextFunction
	case n.Root:
		return ContextRootDir
	default:
		return ContextChildren
	}
}

// Collapsible reports whether the node can have children.
func (n Node) Collapsible() bool {
	return n.Kind != MethodNode
}

// ID is a stable identifier derived from kind, path and, for methods, the
// record's name and start offset.
func (n Node) ID() string {
	var b strings.Builder
	b.WriteString(n.Kind.String())
	b.WriteByte(0)
	b.WriteString(n.Path)
	if n.Method != nil {
		b.WriteByte(0)
		b.WriteString(n.Method.Name)
		b.WriteByte(0)
		b.WriteString(strconv.FormatUint(uint64(n.Method.Span.StartByte), 10))
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(b.String()))
}

// Location returns the owning file and span of a MethodNode, the pair a
// host needs to open the file and select the declaration.
func (n Node) Location() (string, extract.SourceSpan, bool) {
	if n.Kind != MethodNode || n.Method == nil {
		return "", extract.SourceSpan{}, false
	}
	return n.Path, n.Method.Span, true
}

func rootNode(path, prefix string) Node {
	return Node{Kind: FolderNode, Path: path, Label: rootLabel(path, prefix), Root: true}
}

func entryNode(path string, dir bool) Node {
	kind := FileNode
	if dir {
		kind = FolderNode
	}
	return Node{Kind: kind, Path: path, Label: filepath.Base(path)}
}

func methodNode(file string, m extract.MethodRecord) Node {
	return Node{Kind: MethodNode, Path: file, Label: m.Name, Method: &m}
}

// rootLabel strips the shared prefix from a root path.
func rootLabel(path, prefix string) string {
	if prefix == "" {
		return path
	}
	label := strings.TrimPrefix(path, prefix)
	label = strings.TrimLeft(label, string(filepath.Separator))
	if label == "" {
		return filepath.Base(path)
	}
	return label
}
