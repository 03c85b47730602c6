package gumtree

import (
	"io"
	"regexp"
	"sort"
	"strconv"

	"gummiebot/lib/htmlutil"

	"golang.org/x/net/html"
)

const (
	adTitleElement = "a"
	adTitleClass   = "rs-ad-title"
)

var adIdRegex = regexp.MustCompile(`adId=(\d+)`)

// Ads maps ad id to ad title.
type Ads map[string]string

type AdRecord struct {
	Id    string
	Title string
}

// Records returns the ads ordered by numeric id.
func (a Ads) Records() []AdRecord {
	records := make([]AdRecord, 0, len(a))
	for id, title := range a {
		records = append(records, AdRecord{Id: id, Title: title})
	}
	sort.Slice(records, func(i, j int) bool {
		left, _ := strconv.ParseInt(records[i].Id, 10, 64)
		right, _ := strconv.ParseInt(records[j].Id, 10, 64)
		if left != right {
			return left < right
		}
		return records[i].Id < records[j].Id
	})
	return records
}

// adListExtractor collects ad titles from the anchors marked with
// adTitleClass. Nested anchors are not supported.
type adListExtractor struct {
	ads       Ads
	tracking  bool
	currentId string
}

func (e *adListExtractor) StartTag(name string, attrs []html.Attribute) error {
	e.tracking = false
	if name != adTitleElement || !htmlutil.AttrContains(attrs, "class", adTitleClass) {
		return nil
	}

	href, _ := htmlutil.Attr(attrs, "href")
	groups := adIdRegex.FindStringSubmatch(href)
	if len(groups) < 2 {
		return siteChanged("ad title link '%s' does not contain an adId", href)
	}

	e.tracking = true
	e.currentId = groups[1]
	e.ads[e.currentId] = ""
	return nil
}

func (e *adListExtractor) Text(text string) error {
	if e.tracking {
		e.ads[e.currentId] += text
	}
	return nil
}

func (e *adListExtractor) EndTag(name string) error {
	if e.tracking && name == adTitleElement {
		e.tracking = false
	}
	return nil
}

// ExtractAds reads the ads listed on the "my ads" page.
func ExtractAds(r io.Reader) (Ads, error) {
	extractor := &adListExtractor{ads: Ads{}}
	err := htmlutil.Scan(r, extractor)
	if err != nil {
		return nil, err
	}
	return extractor.ads, nil
}
