package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/Filip850/ksef-fetch-demo/ksef"
	"github.com/Filip850/ksef-fetch-demo/ksef/util"
)

type Client interface {
	GetJson(ctx context.Context, endpoint, token string, result interface{}) error
	PostJson(ctx context.Context, endpoint, token string, body, result interface{}) error
	PostJsonNoAuth(ctx context.Context, endpoint string, body, result interface{}) error
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

type client struct {
	rest *resty.Client
	base string
}

func New(env ksef.Environment) Client {
	return &client{rest: resty.New(), base: env.BaseURL()}
}

// NewWithBaseURL builds a client against an explicit base URL and resty
// client (timeouts, proxy, TLS). Tests use it to point at a local server.
func NewWithBaseURL(base string, rest *resty.Client) Client {
	if rest == nil {
		rest = resty.New()
	}
	return &client{rest: rest, base: base}
}

func (c *client) GetJson(ctx context.Context, endpoint, token string, result interface{}) error {
	r := c.request(ctx).SetResult(result)
	if token != "" {
		r.SetAuthToken(token)
	}

	resp, err := r.Get(c.base + endpoint)
	printTraceInfo(endpoint, err, resp)
	return checkError(resp, err)
}

func (c *client) PostJson(ctx context.Context, endpoint, token string, body, result interface{}) error {
	r := c.request(ctx)
	if body != nil {
		r.SetBody(body)
	}
	if result != nil {
		r.SetResult(result)
	}
	if token != "" {
		r.SetAuthToken(token)
	}

	resp, err := r.Post(c.base + endpoint)
	printTraceInfo(endpoint, err, resp)
	return checkError(resp, err)
}

func (c *client) PostJsonNoAuth(ctx context.Context, endpoint string, body, result interface{}) error {
	return c.PostJson(ctx, endpoint, "", body, result)
}

// GetBytes downloads from an absolute URL, outside the API base. Package part
// locations are pre-signed full URLs.
func (c *client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.request(ctx).Get(url)
	printTraceInfo(url, err, resp)
	if err := checkError(resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (c *client) request(ctx context.Context) *resty.Request {
	r := c.rest.R().SetContext(ctx)
	if util.HttpTraceEnabled() {
		r.EnableTrace()
	}
	return r
}

func checkError(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		body := resp.String()
		var errorMap map[string]any
		if body != "" {
			_ = json.Unmarshal([]byte(body), &errorMap)
		}

		return &RequestError{
			StatusCode:   resp.StatusCode(),
			Body:         body,
			ErrorDetails: errorMap,
		}
	}
	return nil
}

func printTraceInfo(endpoint string, err error, resp *resty.Response) {
	if !util.DebugEnabled() || resp == nil {
		return
	}

	fmt.Println("Response Info:")
	fmt.Println("  URL        :", endpoint)
	fmt.Println("  Error      :", err)
	fmt.Println("  Status Code:", resp.StatusCode())
	fmt.Println("  Time       :", resp.Time())

	if util.HttpTraceEnabled() {
		ti := resp.Request.TraceInfo()
		fmt.Println("Request Trace Info:")
		fmt.Println("  DNSLookup     :", ti.DNSLookup)
		fmt.Println("  ConnTime      :", ti.ConnTime)
		fmt.Println("  ServerTime    :", ti.ServerTime)
		fmt.Println("  ResponseTime  :", ti.ResponseTime)
		fmt.Println("  TotalTime     :", ti.TotalTime)
		fmt.Println("  IsConnReused  :", ti.IsConnReused)
	}
}
