package gumtree

import (
	"sort"
)

// Category is a node of the category tree embedded in the site's home page.
type Category struct {
	Id       int64      `json:"id"`
	Name     string     `json:"name"`
	Children []Category `json:"children"`
}

// CategoryMap maps the name of a leaf category to its id.
type CategoryMap map[string]int64

// Names returns the category names in sorted order.
func (m CategoryMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Flatten adds every leaf below (and including) c to out. Only leaves can be
// selected when posting, so parents are never added. Leaves with the same
// name overwrite each other, the last one visited depth-first wins.
func (c Category) Flatten(out CategoryMap) {
	if len(c.Children) == 0 {
		out[c.Name] = c.Id
		return
	}
	for _, child := range c.Children {
		child.Flatten(out)
	}
}

// FlattenCategories returns the leaf categories of the tree rooted at root.
func FlattenCategories(root Category) CategoryMap {
	out := CategoryMap{}
	root.Flatten(out)
	return out
}
