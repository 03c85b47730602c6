package gumtree

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type PriceType string

const (
	PRICE_FIXED      PriceType = "FIXED"
	PRICE_NEGOTIABLE PriceType = "NEGOTIABLE"
	PRICE_GIVE_AWAY  PriceType = "GIVE_AWAY"
	PRICE_SWAP_TRADE PriceType = "SWAP_TRADE"
)

var knownPriceTypes = []PriceType{
	PRICE_FIXED,
	PRICE_NEGOTIABLE,
	PRICE_GIVE_AWAY,
	PRICE_SWAP_TRADE,
}

type Condition string

const (
	CONDITION_USED Condition = "used"
	CONDITION_NEW  Condition = "new"
)

// DefaultCondition is used by listing files that do not specify a condition.
const DefaultCondition = CONDITION_USED

var knownConditions = []Condition{CONDITION_USED, CONDITION_NEW}

type Price struct {
	Amount float64
	Type   PriceType
}

// FormAmount renders the amount the way it is posted to the site.
func (p Price) FormAmount() string {
	return strconv.FormatFloat(p.Amount, 'f', -1, 64)
}

// Listing is a validated ad ready to be posted, only NewListing should create one.
type Listing struct {
	Title       string
	Description string
	Price       Price
	Category    string
	Condition   Condition
	// Images are local file paths in gallery order.
	Images []string
}

// RawPrice is a price as it appears in a listing file, before validation.
type RawPrice struct {
	Amount string
	Type   string
}

// ListingParams is the unvalidated input of NewListing. A nil Price is treated
// as a malformed price.
type ListingParams struct {
	Title       string
	Description string
	Price       *RawPrice
	Category    string
	Condition   string
	Images      []string
}

func parsePrice(raw *RawPrice) (Price, error) {
	if raw == nil || strings.TrimSpace(raw.Amount) == "" || raw.Type == "" {
		return Price{}, &ValidationError{Field: "price", Reason: ErrMalformedPrice}
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(raw.Amount), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Price{}, &ValidationError{Field: "price.amount", Value: raw.Amount, Reason: ErrPriceNotNumeric}
	}
	if amount <= 0 {
		return Price{}, &ValidationError{Field: "price.amount", Value: raw.Amount, Reason: ErrPriceNotPositive}
	}

	priceType := PriceType(raw.Type)
	known := false
	for _, t := range knownPriceTypes {
		if t == priceType {
			known = true
			break
		}
	}
	if !known {
		return Price{}, &ValidationError{Field: "price.type", Value: raw.Type, Reason: ErrUnknownPriceType}
	}

	return Price{Amount: amount, Type: priceType}, nil
}

// NewListing validates params, nothing is sent anywhere.
func NewListing(params ListingParams) (Listing, error) {
	price, err := parsePrice(params.Price)
	if err != nil {
		return Listing{}, err
	}

	condition := Condition(params.Condition)
	known := false
	for _, c := range knownConditions {
		if c == condition {
			known = true
			break
		}
	}
	if !known {
		return Listing{}, &ValidationError{Field: "condition", Value: params.Condition, Reason: ErrUnknownCondition}
	}

	images := make([]string, len(params.Images))
	copy(images, params.Images)

	return Listing{
		Title:       params.Title,
		Description: params.Description,
		Price:       price,
		Category:    params.Category,
		Condition:   condition,
		Images:      images,
	}, nil
}

func (l Listing) String() string {
	description := l.Description
	if runes := []rune(description); len(runes) > 60 {
		description = string(runes[:57]) + "..."
	}
	return fmt.Sprintf(
		"title=%q description=%q price=%s (%s) category=%q condition=%s images=%v",
		l.Title,
		description,
		l.Price.FormAmount(),
		l.Price.Type,
		l.Category,
		l.Condition,
		l.Images,
	)
}
