// Package listingfile reads a listing from a directory containing a
// meta.gummie.json (or .yaml) file, its description file and its images.
package listingfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gummiebot/lib/gumtree"

	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"
)

var MetaFilenames = []string{"meta.gummie.json", "meta.gummie.yaml", "meta.gummie.yml"}

// ErrNoMetaFile is returned when a directory has none of the MetaFilenames.
var ErrNoMetaFile = errors.New("no listing metadata file")

// amountString renders a decoded price amount, which may be a number or a
// string in the file, as text for validation.
func amountString(v any) (string, bool) {
	switch amount := v.(type) {
	case string:
		return amount, true
	case float64:
		return strconv.FormatFloat(amount, 'f', -1, 64), true
	case int:
		return strconv.Itoa(amount), true
	case int64:
		return strconv.FormatInt(amount, 10), true
	}
	return "", false
}

type metaPrice struct {
	Amount any    `json:"amount" yaml:"amount"`
	Type   string `json:"type" yaml:"type"`
}

type meta struct {
	Title           string     `json:"title" yaml:"title"`
	DescriptionFile string     `json:"description_file" yaml:"description_file"`
	Price           *metaPrice `json:"price" yaml:"price"`
	Category        string     `json:"category" yaml:"category"`
	Condition       string     `json:"condition" yaml:"condition"`
	Images          []string   `json:"images" yaml:"images"`
}

func findMeta(dir string) (string, error) {
	for _, name := range MetaFilenames {
		path := filepath.Join(dir, name)
		_, err := os.Stat(path)
		if err == nil {
			return path, nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w in '%s'", ErrNoMetaFile, dir)
}

func parseMeta(path string) (meta, error) {
	var m meta
	contents, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(contents, &m)
	default:
		err = json5.Unmarshal(contents, &m)
	}
	if err != nil {
		return m, fmt.Errorf("parse '%s': %w", path, err)
	}
	return m, nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Read loads and validates the listing in dir. Image paths are resolved
// against dir and every image must exist.
func Read(dir string) (gumtree.Listing, error) {
	path, err := findMeta(dir)
	if err != nil {
		return gumtree.Listing{}, err
	}
	m, err := parseMeta(path)
	if err != nil {
		return gumtree.Listing{}, err
	}

	if m.DescriptionFile == "" {
		return gumtree.Listing{}, fmt.Errorf("'%s': missing 'description_file'", path)
	}
	description, err := os.ReadFile(resolve(dir, m.DescriptionFile))
	if err != nil {
		return gumtree.Listing{}, fmt.Errorf("read description: %w", err)
	}

	var price *gumtree.RawPrice
	if m.Price != nil {
		amount, ok := amountString(m.Price.Amount)
		if ok {
			price = &gumtree.RawPrice{Amount: amount, Type: m.Price.Type}
		}
	}

	condition := m.Condition
	if condition == "" {
		condition = string(gumtree.DefaultCondition)
	}

	images := make([]string, len(m.Images))
	for i, image := range m.Images {
		images[i] = resolve(dir, image)
		info, err := os.Stat(images[i])
		if err != nil {
			return gumtree.Listing{}, fmt.Errorf("could not find image '%s': %w", image, err)
		}
		if info.IsDir() {
			return gumtree.Listing{}, fmt.Errorf("image '%s' is a directory", image)
		}
	}

	return gumtree.NewListing(gumtree.ListingParams{
		Title:       m.Title,
		Description: string(description),
		Price:       price,
		Category:    m.Category,
		Condition:   condition,
		Images:      images,
	})
}
