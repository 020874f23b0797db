package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weni/pkg/logging"
)

const (
	// DefaultConnectTimeout bounds dialing and the TLS handshake. Reading
	// the body is unbounded because stream duration depends on the server.
	DefaultConnectTimeout = 10 * time.Second

	headerProjectUUID = "X-Project-Uuid"
	headerCLIVersion  = "X-CLI-Version"

	subsystem = "Dispatcher"
)

// Config holds what a Dispatcher needs to talk to one base URL.
type Config struct {
	// BaseURL is joined with every relative endpoint.
	BaseURL string

	// Token is sent as a bearer token.
	Token string

	// ProjectUUID is sent in the X-Project-Uuid header.
	ProjectUUID string

	// Version identifies this client in the X-CLI-Version header.
	Version string

	// ConnectTimeout defaults to DefaultConnectTimeout.
	ConnectTimeout time.Duration

	// HTTPClient overrides the session built from ConnectTimeout.
	HTTPClient *http.Client
}

// Field is a single multipart form value. Fields are written in order.
type Field struct {
	Name  string
	Value string
}

// File is a multipart file attachment.
type File struct {
	// Field is the form field name of the attachment.
	Field string
	// Name is the file name reported to the server.
	Name    string
	Content io.Reader
}

// Request describes one call. Endpoint is either relative to the base URL
// or an absolute URL such as a pagination cursor.
type Request struct {
	Method   string
	Endpoint string
	Query    url.Values

	// JSON is encoded as the request body when set.
	JSON any

	// Fields and Files produce a multipart/form-data body when either is set.
	Fields []Field
	Files  []File
}

// Dispatcher issues requests against one API and classifies responses.
// It owns a single reusable HTTP session.
type Dispatcher struct {
	baseURL    string
	headers    http.Header
	httpClient *http.Client
}

// NewDispatcher creates a dispatcher from cfg.
func NewDispatcher(cfg Config) *Dispatcher {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		connectTimeout := cfg.ConnectTimeout
		if connectTimeout <= 0 {
			connectTimeout = DefaultConnectTimeout
		}
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         (&net.Dialer{Timeout: connectTimeout}).DialContext,
				TLSHandshakeTimeout: connectTimeout,
			},
		}
	}

	headers := make(http.Header)
	headers.Set("Authorization", "Bearer "+cfg.Token)
	headers.Set(headerProjectUUID, cfg.ProjectUUID)
	headers.Set(headerCLIVersion, cfg.Version)

	return &Dispatcher{
		baseURL:    cfg.BaseURL,
		headers:    headers,
		httpClient: httpClient,
	}
}

// BaseURL returns the configured base URL.
func (d *Dispatcher) BaseURL() string {
	return d.baseURL
}

// URL joins the base URL with endpoint, trimming exactly one leading slash
// from the endpoint. Absolute endpoints are returned untouched.
func (d *Dispatcher) URL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	endpoint = strings.TrimPrefix(endpoint, "/")
	return strings.TrimSuffix(d.baseURL, "/") + "/" + endpoint
}

// Do executes a buffered request and returns the body of a 200 response.
// Any other status yields an *Error.
func (d *Dispatcher) Do(ctx context.Context, req Request) ([]byte, error) {
	response, err := d.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if response.StatusCode != http.StatusOK {
		return nil, errorFromResponse(response.StatusCode, body)
	}
	return body, nil
}

// DoJSON executes a buffered request and decodes a 200 body into out.
// An empty body leaves out untouched.
func (d *Dispatcher) DoJSON(ctx context.Context, req Request, out any) error {
	body, err := d.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// Stream executes a request whose 200 body is an NDJSON event stream and
// calls handle for every decoded event, in order, on the calling goroutine.
//
// The response is closed exactly once on every path: end of stream, a
// handler error, ErrStopStream, a malformed line or a read failure.
func (d *Dispatcher) Stream(ctx context.Context, req Request, handle func(Event) error) error {
	response, err := d.send(ctx, req)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(response.Body)
		if readErr != nil {
			return fmt.Errorf("reading error response body: %w", readErr)
		}
		return errorFromResponse(response.StatusCode, body)
	}

	decoder := NewDecoder(response.Body)
	count := 0
	for {
		event, err := decoder.Next()
		if errors.Is(err, io.EOF) {
			logging.Debug(subsystem, "stream %s finished after %d events", req.Endpoint, count)
			return nil
		}
		if err != nil {
			return err
		}
		count++

		if err := handle(event); err != nil {
			if errors.Is(err, ErrStopStream) {
				logging.Debug(subsystem, "stream %s stopped by handler after %d events", req.Endpoint, count)
				return nil
			}
			return err
		}
	}
}

func (d *Dispatcher) send(ctx context.Context, req Request) (*http.Response, error) {
	target := d.URL(req.Endpoint)
	if len(req.Query) > 0 {
		separator := "?"
		if strings.Contains(target, "?") {
			separator = "&"
		}
		target += separator + req.Query.Encode()
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for key, values := range d.headers {
		httpReq.Header[key] = values
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	logging.Debug(subsystem, "%s %s", method, target)
	response, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	logging.Debug(subsystem, "%s %s -> %d", method, target, response.StatusCode)
	return response, nil
}

func encodeBody(req Request) (io.Reader, string, error) {
	if len(req.Fields) > 0 || len(req.Files) > 0 {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for _, field := range req.Fields {
			if err := writer.WriteField(field.Name, field.Value); err != nil {
				return nil, "", fmt.Errorf("writing form field %s: %w", field.Name, err)
			}
		}
		for _, file := range req.Files {
			part, err := writer.CreateFormFile(file.Field, file.Name)
			if err != nil {
				return nil, "", fmt.Errorf("creating form file %s: %w", file.Field, err)
			}
			if _, err := io.Copy(part, file.Content); err != nil {
				return nil, "", fmt.Errorf("writing form file %s: %w", file.Field, err)
			}
		}
		if err := writer.Close(); err != nil {
			return nil, "", fmt.Errorf("closing multipart body: %w", err)
		}
		return &buf, writer.FormDataContentType(), nil
	}

	if req.JSON != nil {
		encoded, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}
		return bytes.NewReader(encoded), "application/json", nil
	}

	return nil, "", nil
}
