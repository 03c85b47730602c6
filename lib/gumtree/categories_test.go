package gumtree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFlattenCategories(t *testing.T) {
	testCases := []struct {
		name     string
		tree     Category
		expected CategoryMap
	}{
		{
			name:     "single leaf",
			tree:     Category{Id: 1, Name: "X"},
			expected: CategoryMap{"X": 1},
		},
		{
			name: "parent with two leaves",
			tree: Category{
				Id:   1,
				Name: "Parent",
				Children: []Category{
					{Id: 2, Name: "A"},
					{Id: 3, Name: "B"},
				},
			},
			expected: CategoryMap{"A": 2, "B": 3},
		},
		{
			name: "mixed depth",
			tree: Category{
				Id:   0,
				Name: "All Categories",
				Children: []Category{
					{
						Id:   10,
						Name: "Home & Garden",
						Children: []Category{
							{Id: 11, Name: "Desks"},
							{
								Id:   12,
								Name: "Outdoor",
								Children: []Category{
									{Id: 13, Name: "BBQs"},
								},
							},
						},
					},
					{Id: 20, Name: "Boats"},
				},
			},
			expected: CategoryMap{"Desks": 11, "BBQs": 13, "Boats": 20},
		},
		{
			name: "duplicate leaf names keep the last visited",
			tree: Category{
				Id:   0,
				Name: "root",
				Children: []Category{
					{Id: 1, Name: "Cars", Children: []Category{{Id: 2, Name: "Other"}}},
					{Id: 3, Name: "Boats", Children: []Category{{Id: 4, Name: "Other"}}},
				},
			},
			expected: CategoryMap{"Other": 4},
		},
	}

	for _, test := range testCases {
		result := FlattenCategories(test.tree)
		diff := cmp.Diff(test.expected, result)
		if diff != "" {
			t.Fatalf("%s\n%s", test.name, diff)
		}
	}
}

func TestCategoryMapNames(t *testing.T) {
	m := CategoryMap{"b": 1, "a": 2, "c": 3}
	if diff := cmp.Diff([]string{"a", "b", "c"}, m.Names()); diff != "" {
		t.Fatal(diff)
	}
}
