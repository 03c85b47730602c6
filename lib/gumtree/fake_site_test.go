package gumtree

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

const testUsername = "user@example.com"
const testPassword = "hunter2"

type request struct {
	Method string
	Path   string
	Form   url.Values
	// File is the name and contents of an uploaded file, if any.
	File string
}

func (r request) String() string {
	return fmt.Sprintf("%s %s", r.Method, r.Path)
}

// fakeSite imitates the pages of the marketplace that Session talks to.
type fakeSite struct {
	t      testing.TB
	server *httptest.Server
	log    []request

	loginExtraInputs string
	noLoginForm      bool
	noConditionField bool
	failDraftDiscard bool
	uploadResponse   func(filename string) string
	submitSucceeds   bool
	deletableAds     map[string]bool
}

func newFakeSite(t testing.TB) *fakeSite {
	site := &fakeSite{
		t:              t,
		submitSucceeds: true,
		deletableAds:   map[string]bool{"1300000001": true},
		uploadResponse: func(filename string) string {
			return fmt.Sprintf(`{"teaserUrl": "https://i.example.com/%s", "thumbnailUrl": "x"}`, filename)
		},
	}
	site.server = httptest.NewServer(http.HandlerFunc(site.handle))
	t.Cleanup(site.server.Close)
	return site
}

func (f *fakeSite) http() HTTP {
	client, err := NewRestyHTTP(RestyOptions{BaseUrl: f.server.URL})
	if err != nil {
		f.t.Fatal(err)
	}
	return client
}

func (f *fakeSite) paths() []string {
	out := make([]string, len(f.log))
	for i, r := range f.log {
		out[i] = r.String()
	}
	return out
}

func (f *fakeSite) last(path string) request {
	for i := len(f.log) - 1; i >= 0; i-- {
		if f.log[i].Path == path {
			return f.log[i]
		}
	}
	f.t.Fatalf("no request to %s", path)
	return request{}
}

func (f *fakeSite) loggedIn(r *http.Request) bool {
	cookie, err := r.Cookie("session")
	return err == nil && cookie.Value == "ok"
}

func (f *fakeSite) loginPage() string {
	if f.noLoginForm {
		return `<html><body><form id="search"><input name="q" type="text"></form></body></html>`
	}
	return fmt.Sprintf(`<html><body>
<form id="login-form" method="post" action="/t-login.html">
  <input type="hidden" name="_csrf" value="tok-123">
  <input type="text" name="loginMail" id="login-email">
  <input type="password" name="password" id="login-password">
  <input type="checkbox" name="rememberMe">
  %s
  <button type="submit">Sign in</button>
</form></body></html>`, f.loginExtraInputs)
}

func (f *fakeSite) postFormPage(r *http.Request) string {
	condition := `
  <input type="radio" name="attributeMap[desks_s.condition_s]" value="used">
  <input type="radio" name="attributeMap[desks_s.condition_s]" value="new">`
	if f.noConditionField {
		condition = ""
	}
	return fmt.Sprintf(`<html><body>
<form id="pstad-main-form" method="post">
  <input type="hidden" name="categoryId" value="%s">
  <input type="hidden" name="title" value="%s">
  <textarea name="ignored"></textarea>
  <input type="text" name="description" value="placeholder">
  <input type="text" name="price.amount" value="">
  <input type="hidden" name="price.type" value="FIXED">
  %s
  <input type="checkbox" name="phoneNumberShown" value="true" checked>
  <input type="text" name="contactName" value="Sam">
  <input type="submit" value="Post">
</form></body></html>`, r.Form.Get("categoryId"), r.Form.Get("title"), condition)
}

func (f *fakeSite) handle(w http.ResponseWriter, r *http.Request) {
	req := request{Method: r.Method, Path: r.URL.Path}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err := r.ParseMultipartForm(1 << 20)
		if err != nil {
			f.t.Error(err)
		}
		file, header, err := r.FormFile("images")
		if err == nil {
			contents, _ := io.ReadAll(file)
			file.Close()
			req.File = header.Filename + ":" + string(contents)
		}
	} else {
		err := r.ParseForm()
		if err != nil {
			f.t.Error(err)
		}
	}
	req.Form = r.Form
	f.log = append(f.log, req)

	switch {
	case r.URL.Path == "/t-login.html" && r.Method == http.MethodGet:
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "anon"})
		io.WriteString(w, f.loginPage())

	case r.URL.Path == "/t-login.html" && r.Method == http.MethodPost:
		if r.Form.Get("loginMail") != testUsername || r.Form.Get("password") != testPassword {
			io.WriteString(w, `<div class="notification notification--error">Wrong email or password</div>`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok"})
		io.WriteString(w, `<html><body>Welcome back</body></html>`)

	case r.URL.Path == "/":
		w.Write(homePage)

	case r.URL.Path == "/m-my-ads.html":
		if !f.loggedIn(r) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		io.WriteString(w, myAdsPage)

	case r.URL.Path == "/m-delete-ad.html":
		q := r.URL.Query()
		if q.Get("show") == "ALL" && q.Get("reason") == "NO_REASON" && q.Get("autoresponse") == "0" && f.deletableAds[q.Get("adId")] {
			io.WriteString(w, `<div class="notification--success">Your ad has been deleted</div>`)
			return
		}
		io.WriteString(w, `<div class="notification--error">Could not delete</div>`)

	case r.URL.Path == "/p-post-ad.html":
		if f.failDraftDiscard {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, `<html>post an ad</html>`)

	case r.URL.Path == "/p-post-ad2.html":
		if !f.loggedIn(r) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		io.WriteString(w, f.postFormPage(r))

	case r.URL.Path == "/p-upload-image.html":
		name := strings.SplitN(req.File, ":", 2)[0]
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, f.uploadResponse(name))

	case r.URL.Path == "/p-post-draft-ad.html":
		io.WriteString(w, `<html>draft saved</html>`)

	case r.URL.Path == "/p-submit-ad.html":
		if f.submitSucceeds {
			io.WriteString(w, `<div class="notification--success">Your ad is live</div>`)
			return
		}
		io.WriteString(w, `<div class="notification--error">Something went wrong</div>`)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}
