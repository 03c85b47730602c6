package gumtree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// SiteContract holds the fragile textual agreements with the site: where the
// category tree is embedded and which strings signal success or failure.
// Adapting to a markup change should only ever touch an implementation of this.
type SiteContract interface {
	// CategoryTree extracts the root of the category tree from the home page.
	CategoryTree(page []byte) (Category, error)
	// IsError reports whether a page shows the error notification.
	IsError(page []byte) bool
	// IsSuccess reports whether a page shows the success notification.
	IsSuccess(page []byte) bool
}

// MarkerContract is the SiteContract used by the live site.
type MarkerContract struct {
	CategoriesRegex *regexp.Regexp
	ErrorMarker     string
	SuccessMarker   string
}

var DefaultContract = MarkerContract{
	CategoriesRegex: regexp.MustCompile(`Gtau\.Global\.variables\.categories\s+=\s+({.*?})\s*;`),
	ErrorMarker:     "notification--error",
	SuccessMarker:   "notification--success",
}

func (c MarkerContract) CategoryTree(page []byte) (Category, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return Category{}, fmt.Errorf("parse home page: %w", err)
	}

	var raw string
	doc.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		groups := c.CategoriesRegex.FindStringSubmatch(script.Text())
		if len(groups) < 2 {
			return true
		}
		raw = groups[1]
		return false
	})
	if raw == "" {
		return Category{}, siteChanged("could not find the category tree using %s", c.CategoriesRegex)
	}

	var root Category
	err = json.Unmarshal([]byte(raw), &root)
	if err != nil {
		return Category{}, siteChanged("unmarshal category tree: %s", err)
	}
	return root, nil
}

func (c MarkerContract) IsError(page []byte) bool {
	return bytes.Contains(page, []byte(c.ErrorMarker))
}

func (c MarkerContract) IsSuccess(page []byte) bool {
	return bytes.Contains(page, []byte(c.SuccessMarker))
}
