// Package api - типизированный клиент REST-бэкенда блога.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/UkralStul/blogfront/internal/domain"
)

const (
	DefaultBaseURL       = "http://localhost:8080"
	DefaultTimeout       = 5 * time.Second
	DefaultSessionCookie = "JSESSIONID"
)

// Client ходит в бэкенд. Сессия бэкенда живет в куке, которую хранит jar клиента.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	cookieName string
}

// Option настраивает Client.
type Option func(*Client)

// WithTimeout задает таймаут одного запроса.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithSessionCookie задает имя куки сессии бэкенда.
func WithSessionCookie(name string) Option {
	return func(c *Client) { c.cookieName = name }
}

// WithTransport подменяет транспорт, например на транспорт httptest-сервера.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// New создает клиент для бэкенда по адресу baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Jar: jar, Timeout: DefaultTimeout},
		cookieName: DefaultSessionCookie,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL.String() }

// Credential возвращает текущее значение куки сессии или "".
func (c *Client) Credential() string {
	for _, ck := range c.httpClient.Jar.Cookies(c.baseURL) {
		if ck.Name == c.cookieName {
			return ck.Value
		}
	}
	return ""
}

// SetCredential кладет сохраненную куку сессии в jar.
func (c *Client) SetCredential(value string) {
	if value == "" {
		return
	}
	c.httpClient.Jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:  c.cookieName,
		Value: value,
		Path:  "/",
	}})
}

// ClearCredential убирает куку сессии из jar.
func (c *Client) ClearCredential() {
	c.httpClient.Jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:   c.cookieName,
		Path:   "/",
		MaxAge: -1,
	}})
}

// errorBody - тело ответа бэкенда с ошибкой.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do выполняет запрос. in кодируется в JSON, ответ декодируется в out, если он не nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return serverError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: empty response body", op)
		}
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) {
			return &domain.NetworkError{Op: op, Err: err}
		}
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func serverError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	se := &domain.ServerError{Status: resp.StatusCode}

	var eb errorBody
	if json.Unmarshal(data, &eb) == nil {
		se.Message = eb.Message
		if se.Message == "" {
			se.Message = eb.Error
		}
	} else {
		se.Message = strings.TrimSpace(string(data))
	}
	return se
}
