package apisvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/document"
)

const maxErrorBody = 1 << 20

type (
	// TokenSource yields the bearer token for each request ("" when logged out).
	TokenSource interface {
		Token() string
	}

	Options struct {
		BaseURL    string
		Timeout    time.Duration
		UserAgent  string
		HTTPClient *http.Client // optional; built from Timeout when nil
		Tokens     TokenSource
		Logger     core.Logger // optional
	}

	// Client speaks the remote placement API. It implements every core gateway.
	Client struct {
		baseURL   string
		userAgent string
		hc        *http.Client
		tokens    TokenSource
		logger    core.Logger
	}

	// errorBody is the JSON payload of a non-2xx response.
	errorBody struct {
		Message json.RawMessage   `json:"message"`
		Error   json.RawMessage   `json:"error"`
		Fields  map[string]string `json:"fields"`
	}
)

func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		hc:        hc,
		tokens:    opts.Tokens,
		logger:    opts.Logger,
	}
}

// NewClientFromConfig builds a Client from the api config section.
func NewClientFromConfig(conf *core.Config, tokens TokenSource, logger core.Logger) *Client {
	return NewClient(Options{
		BaseURL:   conf.API.BaseURL,
		Timeout:   conf.API.Timeout,
		UserAgent: conf.API.UserAgent,
		Tokens:    tokens,
		Logger:    logger,
	})
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// do sends req. A failure to get any response is a *core.TransportError;
// a non-2xx response is a *core.APIError and its body is consumed.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Debug(fmt.Sprintf("%s %s failed", req.Method, req.URL.Path), err)
		}
		return nil, &core.TransportError{Err: err}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, decodeError(resp)
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if ct != "application/json" || len(data) == 0 {
		return core.NewAPIError(resp.StatusCode, "")
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return core.NewAPIError(resp.StatusCode, "")
	}
	msg := rawString(body.Message)
	if msg == "" {
		msg = rawString(body.Error)
	}
	fields := body.Fields
	if fields == nil {
		// field errors may come straight in the message object
		_ = json.Unmarshal(body.Message, &fields)
	}
	if msg == "" && len(fields) > 0 {
		msg = joinFields(fields)
	}
	return core.NewAPIError(resp.StatusCode, msg)
}

func rawString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func joinFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+": "+fields[k])
	}
	return strings.Join(msgs, "; ")
}

// doJSON sends in (when non-nil) as JSON and decodes the response into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		body = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.decode(req, out)
}

// doMultipart uploads file under the "file" field along with the given form fields.
func (c *Client) doMultipart(ctx context.Context, path string, fields map[string]string, file document.Blob, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return errors.Wrap(err, "writing form field")
		}
	}

	filename := file.Filename
	if filename == "" {
		filename = "upload.pdf"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return errors.Wrap(err, "creating file part")
	}
	if _, err = part.Write(file.Data); err != nil {
		return errors.Wrap(err, "writing file part")
	}
	if err = w.Close(); err != nil {
		return errors.Wrap(err, "closing multipart body")
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.decode(req, out)
}

func (c *Client) decode(req *http.Request, out interface{}) error {
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return core.NewAPIError(resp.StatusCode, "malformed response from server")
	}
	return nil
}

// doBinary downloads a PDF. The status and Content-Type are checked before the body is read.
func (c *Client) doBinary(ctx context.Context, path string) (document.Blob, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return document.Blob{}, err
	}
	req.Header.Set("Accept", document.ContentTypePDF+", application/json")

	resp, err := c.do(req)
	if err != nil {
		return document.Blob{}, err
	}
	defer resp.Body.Close()

	ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if ct != document.ContentTypePDF {
		return document.Blob{}, core.NewAPIError(resp.StatusCode, "unexpected content type "+resp.Header.Get("Content-Type"))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return document.Blob{}, &core.TransportError{Err: err}
	}
	return document.Blob{Data: data, ContentType: ct, Filename: attachmentName(resp.Header.Get("Content-Disposition"))}, nil
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	// only the base name is kept, whatever directories the server sends
	name := path.Base(strings.ReplaceAll(params["filename"], `\`, "/"))
	switch name {
	case "", ".", "..", "/":
		return ""
	}
	return name
}

func pathf(format string, ids ...string) string {
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, url.PathEscape(id))
	}
	return fmt.Sprintf(format, args...)
}
