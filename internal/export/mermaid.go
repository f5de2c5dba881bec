package export

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Mermaid produces a Mermaid graph TD diagram of t: each root points at the
// concerned files beneath it, each file at its methods. Intermediate
// folders are flattened into the file label.
func Mermaid(t Tree) (string, error) {
	roots, err := Build(t)
	if err != nil {
		return "", err
	}

	// Mermaid IDs must be alphanumeric; labels carry the paths.
	nextID := 0
	newID := func() string {
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	for _, r := range roots {
		rootID := newID()
		sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", rootID, escape(r.Label)))
		for _, f := range files(r, nil) {
			fileID := newID()
			sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", fileID, escape(shortPath(f.Path))))
			sb.WriteString(fmt.Sprintf("  %s --> %s\n", rootID, fileID))
			for _, m := range f.Children {
				methodID := newID()
				sb.WriteString(fmt.Sprintf("  %s(\"%s\")\n", methodID, escape(m.Label)))
				sb.WriteString(fmt.Sprintf("  %s --> %s\n", fileID, methodID))
			}
		}
	}
	return sb.String(), nil
}

// shortPath returns the last 2 path segments for readability.
func shortPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

// escape makes a label safe inside a quoted Mermaid node.
func escape(s string) string {
	return strings.NewReplacer(`"`, "#quot;", "<", "#lt;", ">", "#gt;").Replace(s)
}
