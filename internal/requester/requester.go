// Package requester is the HTTP client the admin UI uses to talk to the API. It does
// not retry: a failed call is reported to the caller as is.
package requester

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
	"strconv"
	"strings"
	"time"

	"github.com/jakubkanna/labguy-manager/internal/dto"
	"github.com/jakubkanna/labguy-manager/internal/entity"
)

// Error is a non-2xx response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Client struct {
	base   *url.URL
	client *http.Client
}

// New returns a client for the API rooted at c.BaseURL, e.g. "http://localhost:8081/api".
func New(c *Config) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(c.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", c.BaseURL, err)
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &Client{base: u, client: &http.Client{Timeout: timeout}}, nil
}

func (c *Client) url(segments ...string) string {
	u := *c.base
	u.Path = strings.Join(append([]string{u.Path}, segments...), "/")
	return u.String()
}

// do sends the request and decodes a JSON response into out when out is not nil.
func (c *Client) do(ctx context.Context, method, u, token, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("can't create %s request to %s: %w", method, u, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("can't decode response of %s %s: %w", method, u, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var er dto.ErrorResponse
	if err := json.Unmarshal(raw, &er); err == nil && er.Error != "" {
		return &Error{Status: resp.StatusCode, Message: er.Error}
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}

func (c *Client) doJSON(ctx context.Context, method, u, token string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("can't encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, method, u, token, contentType, body, out)
}

// DeleteData deletes an entity of resource by the id of its general section.
func (c *Client) DeleteData(ctx context.Context, resource string, generalId int, token string) error {
	return c.doJSON(ctx, http.MethodDelete, c.url(resource, strconv.Itoa(generalId)), token, nil, nil)
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp dto.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, c.url("auth", "login"), "", dto.LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.AuthToken, nil
}

func (c *Client) FetchPreferences(ctx context.Context) (*entity.Preferences, error) {
	var p entity.Preferences
	if err := c.doJSON(ctx, http.MethodGet, c.url("preferences"), "", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) FetchTags(ctx context.Context) ([]entity.Tag, error) {
	var tags []entity.Tag
	if err := c.doJSON(ctx, http.MethodGet, c.url("tags"), "", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *Client) FetchMedia(ctx context.Context, token string) ([]entity.Media, error) {
	var resp dto.MediaListResponse
	if err := c.doJSON(ctx, http.MethodGet, c.url("media")+"?limit=500", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.List, nil
}

// UploadImages uploads base64 data URLs.
func (c *Client) UploadImages(ctx context.Context, token string, images []string) ([]entity.Media, error) {
	var list []entity.Media
	err := c.doJSON(ctx, http.MethodPost, c.url("media", "images"), token, dto.UploadImagesRequest{Images: images}, &list)
	return list, err
}

func (c *Client) UploadVideos(ctx context.Context, token string, files []dto.UploadFile) ([]entity.Media, error) {
	return c.uploadFiles(ctx, token, "videos", files)
}

func (c *Client) UploadThreeD(ctx context.Context, token string, files []dto.UploadFile) ([]entity.Media, error) {
	return c.uploadFiles(ctx, token, "threed", files)
}

func (c *Client) uploadFiles(ctx context.Context, token, path string, files []dto.UploadFile) ([]entity.Media, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	var list []entity.Media
	err := c.do(ctx, http.MethodPost, c.url("media", path), token, mw.FormDataContentType(), &buf, &list)
	return list, err
}
