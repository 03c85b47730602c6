package gumtree

import (
	"context"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gummiebot/internal/assert"
	"gummiebot/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// HTTP is everything Session needs from the transport. Implementations must
// keep cookies between calls, the site tracks the login with them.
type HTTP interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	PostForm(ctx context.Context, path string, form url.Values) ([]byte, error)
	// PostFile sends form as multipart fields along with the contents of the
	// file at filePath under the field name `field`.
	PostFile(ctx context.Context, path string, form url.Values, field, filePath string) ([]byte, error)
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type RestyOptions struct {
	BaseUrl string
	// RequestsPerSecond limits the request rate, 0 disables the limit.
	RequestsPerSecond float64
	// Timeout is applied per request, 0 means no timeout.
	Timeout time.Duration
	// CloudflareBypass wraps the transport to look like a regular browser.
	CloudflareBypass bool
	// Output receives a dump of every request/response pair, it may be nil.
	Output restyutil.InstrumentOutput
}

// RestyHTTP implements HTTP on top of a resty client with a cookie jar.
type RestyHTTP struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

func NewRestyHTTP(opts RestyOptions) (*RestyHTTP, error) {
	assert.NotEmptyStr(opts.BaseUrl, "base url")

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	if opts.RequestsPerSecond > 0 {
		// burst of 1 keeps requests evenly spaced, the session never issues
		// requests concurrently anyway
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	restyutil.InstrumentClient(client, nil, opts.Output)

	return &RestyHTTP{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

func (h *RestyHTTP) body(res *resty.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, &HTTPStatusError{
			Method: res.Request.Method,
			Path:   res.Request.URL,
			Status: res.StatusCode(),
		}
	}
	return res.Body(), nil
}

func (h *RestyHTTP) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return h.body(
		h.Http.R().
			SetContext(ctx).
			SetQueryParamsFromValues(query).
			Get(path),
	)
}

func (h *RestyHTTP) PostForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	return h.body(
		h.Http.R().
			SetContext(ctx).
			SetFormDataFromValues(form).
			Post(path),
	)
}

func (h *RestyHTTP) PostFile(ctx context.Context, path string, form url.Values, field, filePath string) ([]byte, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return h.body(
		h.Http.R().
			SetContext(ctx).
			SetFormDataFromValues(form).
			SetFileReader(field, filepath.Base(filePath), f).
			Post(path),
	)
}
