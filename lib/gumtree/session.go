package gumtree

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"strings"

	"gummiebot/internal/assert"
	"gummiebot/internal/telemetry"
	"gummiebot/lib/htmlutil"
	"gummiebot/lib/textutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("gummiebot/lib/gumtree")

const (
	report_session_login         = "session.login"
	report_session_owned_ads     = "session.owned-ads"
	report_session_delete_ad     = "session.delete-ad"
	report_session_categories    = "session.categories"
	report_session_post_listing  = "session.post-listing"
	report_session_discard_draft = "session.discard-draft"
	report_session_upload_image  = "session.upload-image"
)

const (
	pageHome        = "/"
	pageLogin       = "t-login.html"
	pageMyAds       = "m-my-ads.html"
	pageDeleteAd    = "m-delete-ad.html"
	pageDeleteDraft = "p-post-ad.html"
	pagePostForm    = "p-post-ad2.html"
	pageUploadImage = "p-upload-image.html"
	pagePostDraft   = "p-post-draft-ad.html"
	pageSubmitAd    = "p-submit-ad.html"

	loginFormId    = "login-form"
	postFormId     = "pstad-main-form"
	fieldLoginMail = "loginMail"
	fieldPassword  = "password"
	fieldImages    = "images"
	fieldCondition = "condition"
	imageUrlKey    = "teaserUrl"
)

// DefaultSuggestionThreshold is the similarity a known category must exceed
// to be suggested for an unknown one.
const DefaultSuggestionThreshold = 0.8

type Options struct {
	// Contract defaults to DefaultContract.
	Contract SiteContract
	// SuggestionThreshold defaults to DefaultSuggestionThreshold.
	SuggestionThreshold float64
}

// Session is one logged in user on the site. It owns the cookie-bearing HTTP
// capability and the category cache, it must not be used concurrently.
type Session struct {
	http      HTTP
	contract  SiteContract
	tel       telemetry.API
	threshold float64

	categories CategoryMap
	ads        Ads
}

// NewSession creates a session. Categories work anonymously, everything
// else needs Login first.
func NewSession(http HTTP, tel telemetry.API, opts Options) *Session {
	assert.NotNil(http, "http")
	assert.NotNil(tel, "telemetry")

	if opts.Contract == nil {
		opts.Contract = DefaultContract
	}
	if opts.SuggestionThreshold <= 0 {
		opts.SuggestionThreshold = DefaultSuggestionThreshold
	}

	return &Session{
		http:      http,
		contract:  opts.Contract,
		tel:       telemetry.NewScopedAPI("gumtree", tel),
		threshold: opts.SuggestionThreshold,
	}
}

// broken reports err against id and marks the span as failed.
func (s *Session) broken(span trace.Span, id string, err error, params ...any) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.tel.ReportBroken(id, append([]any{err}, params...)...)
	return err
}

func loginPayload(fields []htmlutil.FormField, username, password string) (url.Values, error) {
	data := url.Values{
		fieldLoginMail: {username},
		fieldPassword:  {password},
	}
	for _, input := range fields {
		if !input.HasName {
			continue
		}
		if input.Name == fieldLoginMail || input.Name == fieldPassword {
			continue
		}
		switch input.Type {
		case htmlutil.InputHidden:
			// csrf tokens and the like
			data.Set(input.Name, input.Value)
		case htmlutil.InputCheckbox:
			data.Set(input.Name, "true")
		default:
			return nil, fmt.Errorf(
				"%w: %w: input '%s' has type '%s'",
				ErrSiteChanged, ErrUnsupportedInput, input.Name, input.Type,
			)
		}
	}
	return data, nil
}

// Login fills in and posts the login form.
func (s *Session) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "session:Login")
	defer span.End()

	s.tel.ReportDebug("get login form")
	page, err := s.http.Get(ctx, pageLogin, nil)
	if err != nil {
		return s.broken(span, report_session_login, fmt.Errorf("fetch login page: %w", err))
	}
	fields, err := htmlutil.ExtractForm(bytes.NewReader(page), loginFormId)
	if errors.Is(err, htmlutil.ErrFormNotFound) {
		return s.broken(span, report_session_login, siteChanged("could not find form '%s' on the login page", loginFormId))
	}
	if err != nil {
		return s.broken(span, report_session_login, fmt.Errorf("parse login page: %w", err))
	}

	data, err := loginPayload(fields, username, password)
	if err != nil {
		return s.broken(span, report_session_login, err)
	}

	s.tel.ReportDebug("log in", username)
	page, err = s.http.PostForm(ctx, pageLogin, data)
	if err != nil {
		return s.broken(span, report_session_login, fmt.Errorf("post login form: %w", err))
	}
	if s.contract.IsError(page) {
		span.SetStatus(codes.Error, ErrInvalidCredentials.Error())
		return ErrInvalidCredentials
	}

	s.tel.ReportDebug("logged in", username)
	return nil
}

// OwnedAds fetches the ads of the logged in user, replacing any ads fetched before.
func (s *Session) OwnedAds(ctx context.Context) (Ads, error) {
	ctx, span := tracer.Start(ctx, "session:OwnedAds")
	defer span.End()

	s.tel.ReportDebug("get ads")
	page, err := s.http.Get(ctx, pageMyAds, nil)
	if err != nil {
		return nil, s.broken(span, report_session_owned_ads, fmt.Errorf("fetch my ads: %w", err))
	}
	ads, err := ExtractAds(bytes.NewReader(page))
	if err != nil {
		return nil, s.broken(span, report_session_owned_ads, err)
	}

	s.ads = ads
	s.tel.ReportCount(report_session_owned_ads, int64(len(ads)))
	return maps.Clone(ads), nil
}

// DeleteAd asks the site to delete an ad, it returns whether the site
// reported success. There is no confirmation step.
func (s *Session) DeleteAd(ctx context.Context, id string) (bool, error) {
	ctx, span := tracer.Start(ctx, "session:DeleteAd")
	defer span.End()
	span.SetAttributes(attribute.String("ad_id", id))

	query := url.Values{
		"show":         {"ALL"},
		"reason":       {"NO_REASON"},
		"autoresponse": {"0"},
		"adId":         {id},
	}

	s.tel.ReportDebug("delete ad", id)
	page, err := s.http.Get(ctx, pageDeleteAd, query)
	if err != nil {
		return false, s.broken(span, report_session_delete_ad, fmt.Errorf("delete ad '%s': %w", id, err))
	}
	ok := s.contract.IsSuccess(page)
	if !ok {
		s.tel.ReportWarning(report_session_delete_ad, "no success marker", id)
	}
	return ok, nil
}

// Categories returns the leaf categories of the site. They are fetched on the
// first call and kept for the lifetime of the session.
func (s *Session) Categories(ctx context.Context) (CategoryMap, error) {
	if s.categories != nil {
		return maps.Clone(s.categories), nil
	}

	ctx, span := tracer.Start(ctx, "session:Categories")
	defer span.End()

	s.tel.ReportDebug("fetch categories")
	page, err := s.http.Get(ctx, pageHome, nil)
	if err != nil {
		return nil, s.broken(span, report_session_categories, fmt.Errorf("fetch home page: %w", err))
	}
	root, err := s.contract.CategoryTree(page)
	if err != nil {
		return nil, s.broken(span, report_session_categories, err)
	}

	s.categories = FlattenCategories(root)
	s.tel.ReportCount(report_session_categories, int64(len(s.categories)))
	return maps.Clone(s.categories), nil
}

// ResolveCategory returns the id of a leaf category. An unknown name results
// in a *CategoryError, which suggests a similar known name when there is one.
// The suggestion is never used in place of the given name.
func (s *Session) ResolveCategory(ctx context.Context, name string) (int64, error) {
	categories, err := s.Categories(ctx)
	if err != nil {
		return 0, err
	}
	id, ok := categories[name]
	if ok {
		return id, nil
	}

	suggestion, _ := textutil.MostSimilar(name, categories.Names(), s.threshold)
	return 0, &CategoryError{Name: name, Suggestion: suggestion}
}

// submissionPayload merges the listing into the fields of the posting form.
// Our values win over form defaults, checkboxes are left out and the last
// field with "condition" in its name receives the listing's condition.
func submissionPayload(fields []htmlutil.FormField, listing Listing) (url.Values, error) {
	submission := url.Values{
		"description":  {listing.Description},
		"price.amount": {listing.Price.FormAmount()},
		"price.type":   {string(listing.Price.Type)},
	}
	explicit := map[string]bool{}
	for key := range submission {
		explicit[key] = true
	}

	conditionField := ""
	for _, input := range fields {
		if !input.HasName || explicit[input.Name] {
			continue
		}
		if input.Type == htmlutil.InputCheckbox {
			continue
		}
		submission.Set(input.Name, input.Value)
		if strings.Contains(input.Name, fieldCondition) {
			conditionField = input.Name
		}
	}
	if conditionField == "" {
		return nil, siteChanged("could not find a field for the item condition in form '%s'", postFormId)
	}
	submission.Set(conditionField, string(listing.Condition))

	return submission, nil
}

func (s *Session) uploadImage(ctx context.Context, submission url.Values, image string) (string, error) {
	ctx, span := tracer.Start(ctx, "session:uploadImage")
	defer span.End()
	span.SetAttributes(attribute.String("image", image))

	s.tel.ReportDebug("upload image", image)
	body, err := s.http.PostFile(ctx, pageUploadImage, submission, fieldImages, image)
	if err != nil {
		return "", s.broken(span, report_session_upload_image, fmt.Errorf("upload image '%s': %w", image, err))
	}

	var response map[string]any
	err = json.Unmarshal(body, &response)
	if err != nil {
		return "", s.broken(span, report_session_upload_image, siteChanged("could not extract uploaded image url for image '%s': %s", image, err))
	}
	imageUrl, _ := response[imageUrlKey].(string)
	if imageUrl == "" {
		return "", s.broken(span, report_session_upload_image, siteChanged("could not extract uploaded image url for image '%s': no '%s' in response", image, imageUrlKey))
	}
	return imageUrl, nil
}

// PostListing posts a new ad, it returns whether the site reported success.
//
// Any existing draft is discarded first, then the category is resolved and the
// posting form is fetched and filled in, images are uploaded one by one in order, the ad is saved as a
// draft and finally submitted. Nothing is rolled back on failure, the draft
// is left on the site so the ad can be finished by hand.
func (s *Session) PostListing(ctx context.Context, listing Listing) (bool, error) {
	ctx, span := tracer.Start(ctx, "session:PostListing")
	defer span.End()
	span.SetAttributes(
		attribute.String("title", listing.Title),
		attribute.Int("images", len(listing.Images)),
	)

	s.tel.ReportDebug("delete drafts")
	_, err := s.http.Get(ctx, pageDeleteDraft, url.Values{"delDraft": {"true"}})
	if err != nil {
		s.tel.ReportWarning(report_session_discard_draft, err)
	}

	categoryId, err := s.ResolveCategory(ctx, listing.Category)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	s.tel.ReportDebug("get ad post form")
	page, err := s.http.PostForm(ctx, pagePostForm, url.Values{
		"title":                   {listing.Title},
		"categoryId":              {fmt.Sprint(categoryId)},
		"adType":                  {"OFFER"},
		"shouldShowSimplifiedSyi": {"false"},
	})
	if err != nil {
		return false, s.broken(span, report_session_post_listing, fmt.Errorf("fetch post form: %w", err))
	}
	fields, err := htmlutil.ExtractForm(bytes.NewReader(page), postFormId)
	if errors.Is(err, htmlutil.ErrFormNotFound) {
		return false, s.broken(span, report_session_post_listing, siteChanged("could not find form '%s' on the posting page", postFormId))
	}
	if err != nil {
		return false, s.broken(span, report_session_post_listing, fmt.Errorf("parse post form: %w", err))
	}

	submission, err := submissionPayload(fields, listing)
	if err != nil {
		return false, s.broken(span, report_session_post_listing, err)
	}

	// sequential, the upload order is the gallery order
	imageUrls := make([]string, 0, len(listing.Images))
	for _, image := range listing.Images {
		imageUrl, err := s.uploadImage(ctx, submission, image)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return false, err
		}
		imageUrls = append(imageUrls, imageUrl)
	}
	submission[fieldImages] = imageUrls

	s.tel.ReportDebug("post draft")
	_, err = s.http.PostForm(ctx, pagePostDraft, submission)
	if err != nil {
		return false, s.broken(span, report_session_post_listing, fmt.Errorf("post draft: %w", err))
	}

	s.tel.ReportDebug("post final listing")
	page, err = s.http.PostForm(ctx, pageSubmitAd, submission)
	if err != nil {
		return false, s.broken(span, report_session_post_listing, fmt.Errorf("submit ad: %w", err))
	}

	ok := s.contract.IsSuccess(page)
	if !ok {
		s.tel.ReportWarning(report_session_post_listing, "no success marker", listing.Title)
	}
	return ok, nil
}
