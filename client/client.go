package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tnqbao/gau-object-gallery/entity"
)

const apiBasePath = "/api/v1"

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gallery api: %d %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	dialer     *websocket.Dialer
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithDialer(dialer *websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = dialer
	}
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		dialer:     websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
}

type CreateObjectRequest struct {
	Title       string
	Description string
	Filename    string
	ContentType string
	Image       io.Reader
}

func (c *Client) ListObjects(ctx context.Context, search string) ([]entity.StoreObject, error) {
	endpoint := c.baseURL + apiBasePath + "/objects"
	if search != "" {
		endpoint += "?" + url.Values{"search": []string{search}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	objects := make([]entity.StoreObject, 0)
	if err := c.do(req, &objects); err != nil {
		return nil, err
	}
	return objects, nil
}

func (c *Client) GetObject(ctx context.Context, id string) (*entity.StoreObject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(id), nil)
	if err != nil {
		return nil, err
	}

	var object entity.StoreObject
	if err := c.do(req, &object); err != nil {
		return nil, err
	}
	return &object, nil
}

func (c *Client) CreateObject(ctx context.Context, input CreateObjectRequest) (*entity.StoreObject, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("title", input.Title); err != nil {
		return nil, err
	}
	if err := writer.WriteField("description", input.Description); err != nil {
		return nil, err
	}
	if input.Image != nil {
		contentType := input.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, input.Filename))
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, input.Image); err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiBasePath+"/objects", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var object entity.StoreObject
	if err := c.do(req, &object); err != nil {
		return nil, err
	}
	return &object, nil
}

func (c *Client) DeleteObject(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(id), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) objectURL(id string) string {
	return c.baseURL + apiBasePath + "/objects/" + url.PathEscape(id)
}

func (c *Client) do(req *http.Request, dest interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := env.Message
		if decodeErr != nil || message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}

	if dest == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
