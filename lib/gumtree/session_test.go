package gumtree

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gummiebot/internal/telemetry"
	"gummiebot/lib/htmlutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newTestSession(t testing.TB, site *fakeSite) (*Session, *telemetry.Recorder) {
	rec := &telemetry.Recorder{}
	return NewSession(site.http(), rec, Options{}), rec
}

func loggedInSession(t testing.TB, site *fakeSite) (*Session, *telemetry.Recorder) {
	session, rec := newTestSession(t, site)
	err := session.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	site.log = nil
	return session, rec
}

func writeImages(t testing.TB, names ...string) []string {
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		err := os.WriteFile(paths[i], []byte("image "+name), 0600)
		require.NoError(t, err)
	}
	return paths
}

func testListing(t testing.TB, images []string) Listing {
	listing, err := NewListing(ListingParams{
		Title:       "Oak desk",
		Description: "Solid oak, some scratches.",
		Price:       &RawPrice{Amount: "120", Type: "NEGOTIABLE"},
		Category:    "Desks",
		Condition:   "used",
		Images:      images,
	})
	require.NoError(t, err)
	return listing
}

func TestLogin(t *testing.T) {
	site := newFakeSite(t)
	session, _ := newTestSession(t, site)

	err := session.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)

	require.Equal(t, []string{"GET /t-login.html", "POST /t-login.html"}, site.paths())
	form := site.last("/t-login.html").Form
	require.Equal(t, "tok-123", form.Get("_csrf"))
	require.Equal(t, "true", form.Get("rememberMe"))
	require.Equal(t, testUsername, form.Get("loginMail"))
	require.Equal(t, testPassword, form.Get("password"))
}

func TestLoginInvalidCredentials(t *testing.T) {
	site := newFakeSite(t)
	session, _ := newTestSession(t, site)

	err := session.Login(context.Background(), testUsername, "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.False(t, errors.Is(err, ErrSiteChanged))
}

func TestLoginUnsupportedInput(t *testing.T) {
	site := newFakeSite(t)
	site.loginExtraInputs = `<input type="text" name="captcha">`
	session, rec := newTestSession(t, site)

	err := session.Login(context.Background(), testUsername, testPassword)
	require.ErrorIs(t, err, ErrUnsupportedInput)
	require.ErrorIs(t, err, ErrSiteChanged)
	require.Contains(t, err.Error(), "captcha")
	require.Equal(t, []string{"GET /t-login.html"}, site.paths())
	require.Equal(t, []string{"gumtree: session.login"}, rec.Filter("broken"))
}

func TestLoginFormMissing(t *testing.T) {
	site := newFakeSite(t)
	site.noLoginForm = true
	session, _ := newTestSession(t, site)

	err := session.Login(context.Background(), testUsername, testPassword)
	require.ErrorIs(t, err, ErrSiteChanged)
	require.Contains(t, err.Error(), "login-form")
}

func TestOwnedAds(t *testing.T) {
	site := newFakeSite(t)
	session, rec := loggedInSession(t, site)

	ads, err := session.OwnedAds(context.Background())
	require.NoError(t, err)
	require.Equal(t, Ads{
		"1300000001": "Oak desk",
		"1300000002": "Kids bike, 16 inch",
	}, ads)
	require.Equal(t, []string{"gumtree: session.owned-ads"}, rec.Filter("count"))
}

func TestOwnedAdsRequiresLogin(t *testing.T) {
	site := newFakeSite(t)
	session, _ := newTestSession(t, site)

	_, err := session.OwnedAds(context.Background())
	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, 403, statusErr.Status)
}

func TestDeleteAd(t *testing.T) {
	site := newFakeSite(t)
	session, _ := loggedInSession(t, site)

	ok, err := session.DeleteAd(context.Background(), "1300000001")
	require.NoError(t, err)
	require.True(t, ok)

	form := site.last("/m-delete-ad.html").Form
	require.Equal(t, "ALL", form.Get("show"))
	require.Equal(t, "NO_REASON", form.Get("reason"))
	require.Equal(t, "0", form.Get("autoresponse"))
	require.Equal(t, "1300000001", form.Get("adId"))

	ok, err = session.DeleteAd(context.Background(), "999")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCategoriesCached(t *testing.T) {
	site := newFakeSite(t)
	session, _ := loggedInSession(t, site)
	ctx := context.Background()

	categories, err := session.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 5)

	// mutating the returned map must not touch the cache
	delete(categories, "Desks")

	id, err := session.ResolveCategory(ctx, "Desks")
	require.NoError(t, err)
	require.Equal(t, int64(20045), id)

	require.Equal(t, []string{"GET /"}, site.paths())
}

func TestResolveCategoryUnknown(t *testing.T) {
	site := newFakeSite(t)
	session, _ := loggedInSession(t, site)
	ctx := context.Background()

	_, err := session.ResolveCategory(ctx, "Dekss")
	var categoryErr *CategoryError
	require.True(t, errors.As(err, &categoryErr))
	require.Equal(t, "Desks", categoryErr.Suggestion)
	require.Equal(t, "unknown category 'Dekss', did you mean 'Desks'?", err.Error())

	_, err = session.ResolveCategory(ctx, "Tickets")
	require.True(t, errors.As(err, &categoryErr))
	require.Equal(t, "", categoryErr.Suggestion)
	require.Equal(t, "unknown category 'Tickets'", err.Error())
}

func TestPostListing(t *testing.T) {
	site := newFakeSite(t)
	session, _ := loggedInSession(t, site)
	images := writeImages(t, "front.jpg", "back.jpg")

	ok, err := session.PostListing(context.Background(), testListing(t, images))
	require.NoError(t, err)
	require.True(t, ok)

	diff := cmp.Diff([]string{
		"GET /p-post-ad.html",
		"GET /",
		"POST /p-post-ad2.html",
		"POST /p-upload-image.html",
		"POST /p-upload-image.html",
		"POST /p-post-draft-ad.html",
		"POST /p-submit-ad.html",
	}, site.paths())
	if diff != "" {
		t.Fatal(diff)
	}

	require.Equal(t, "true", site.log[0].Form.Get("delDraft"))

	formRequest := site.log[2].Form
	require.Equal(t, "Oak desk", formRequest.Get("title"))
	require.Equal(t, "20045", formRequest.Get("categoryId"))
	require.Equal(t, "OFFER", formRequest.Get("adType"))
	require.Equal(t, "false", formRequest.Get("shouldShowSimplifiedSyi"))

	require.Equal(t, "front.jpg:image front.jpg", site.log[3].File)
	require.Equal(t, "back.jpg:image back.jpg", site.log[4].File)
	require.Equal(t, "Solid oak, some scratches.", site.log[3].Form.Get("description"))

	draft := site.log[5].Form
	final := site.log[6].Form
	require.Equal(t, draft, final)

	require.Equal(t, "Solid oak, some scratches.", final.Get("description"))
	require.Equal(t, "120", final.Get("price.amount"))
	require.Equal(t, "NEGOTIABLE", final.Get("price.type"))
	require.Equal(t, "used", final.Get("attributeMap[desks_s.condition_s]"))
	require.Equal(t, "20045", final.Get("categoryId"))
	require.Equal(t, "Sam", final.Get("contactName"))
	require.False(t, final.Has("phoneNumberShown"))
	require.Equal(t, []string{
		"https://i.example.com/front.jpg",
		"https://i.example.com/back.jpg",
	}, final["images"])
}

func TestPostListingNotSuccessful(t *testing.T) {
	site := newFakeSite(t)
	site.submitSucceeds = false
	session, rec := loggedInSession(t, site)

	ok, err := session.PostListing(context.Background(), testListing(t, nil))
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, []string{"gumtree: session.post-listing"}, rec.Filter("warning"))
}

func TestPostListingMissingConditionField(t *testing.T) {
	site := newFakeSite(t)
	site.noConditionField = true
	session, _ := loggedInSession(t, site)
	images := writeImages(t, "front.jpg")

	_, err := session.PostListing(context.Background(), testListing(t, images))
	require.ErrorIs(t, err, ErrSiteChanged)
	require.Contains(t, err.Error(), "condition")

	for _, path := range site.paths() {
		require.NotEqual(t, "POST /p-upload-image.html", path)
		require.NotEqual(t, "POST /p-submit-ad.html", path)
	}
}

func TestPostListingImageUrlMissing(t *testing.T) {
	site := newFakeSite(t)
	site.uploadResponse = func(string) string { return `{"error": "too big"}` }
	session, _ := loggedInSession(t, site)
	images := writeImages(t, "front.jpg", "back.jpg")

	_, err := session.PostListing(context.Background(), testListing(t, images))
	require.ErrorIs(t, err, ErrSiteChanged)
	require.Contains(t, err.Error(), "front.jpg")

	// aborted after the first upload
	require.Equal(t, "POST /p-upload-image.html", site.paths()[len(site.log)-1])
	require.Equal(t, 1, countPath(site, "/p-upload-image.html"))
}

func TestPostListingImageMissingOnDisk(t *testing.T) {
	site := newFakeSite(t)
	session, _ := loggedInSession(t, site)

	_, err := session.PostListing(context.Background(), testListing(t, []string{filepath.Join(t.TempDir(), "gone.jpg")}))
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Equal(t, 0, countPath(site, "/p-post-draft-ad.html"))
}

func TestPostListingDraftDiscardIsBestEffort(t *testing.T) {
	site := newFakeSite(t)
	site.failDraftDiscard = true
	session, rec := loggedInSession(t, site)

	ok, err := session.PostListing(context.Background(), testListing(t, nil))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"gumtree: session.discard-draft"}, rec.Filter("warning"))
}

func TestPostListingUnknownCategory(t *testing.T) {
	site := newFakeSite(t)
	session, _ := loggedInSession(t, site)
	listing := testListing(t, nil)
	listing.Category = "Tickets"

	_, err := session.PostListing(context.Background(), listing)
	var categoryErr *CategoryError
	require.True(t, errors.As(err, &categoryErr))
	require.Equal(t, []string{"GET /p-post-ad.html", "GET /"}, site.paths())
}

func countPath(site *fakeSite, path string) int {
	n := 0
	for _, r := range site.log {
		if r.Path == path {
			n++
		}
	}
	return n
}

func TestSubmissionPayload(t *testing.T) {
	listing := testListing(t, nil)
	listing.Condition = CONDITION_NEW

	fields := []htmlutil.FormField{
		{Name: "price.amount", HasName: true, Type: htmlutil.InputText, Value: "1"},
		{Name: "item.condition", HasName: true, Type: htmlutil.InputHidden, Value: "used"},
		{Name: "other_condition", HasName: true, Type: htmlutil.InputHidden, Value: "x"},
		{Name: "agree", HasName: true, Type: htmlutil.InputCheckbox, Value: "on"},
		{Type: htmlutil.InputText, Value: "nameless"},
	}
	submission, err := submissionPayload(fields, listing)
	require.NoError(t, err)
	require.Equal(t, "120", submission.Get("price.amount"))
	require.Equal(t, "used", submission.Get("item.condition"))
	require.Equal(t, "new", submission.Get("other_condition"))
	require.False(t, submission.Has("agree"))
	require.Len(t, submission, 5)

	_, err = submissionPayload(fields[:1], listing)
	require.ErrorIs(t, err, ErrSiteChanged)
}

func TestSubmissionPayloadLastConditionFieldWins(t *testing.T) {
	listing := testListing(t, nil)
	listing.Condition = CONDITION_NEW

	fields := []htmlutil.FormField{
		{Name: "attributeMap[a.condition_s]", HasName: true, Type: htmlutil.InputHidden, Value: ""},
		{Name: "attributeMap[desks_s.condition_s]", HasName: true, Type: htmlutil.InputHidden, Value: ""},
	}
	submission, err := submissionPayload(fields, listing)
	require.NoError(t, err)
	require.Equal(t, "", submission.Get("attributeMap[a.condition_s]"))
	require.Equal(t, "new", submission.Get("attributeMap[desks_s.condition_s]"))
}
