// Package client is a typed HTTP client for the pulse API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pulse-backend/internal/models"
	"pulse-backend/internal/services"
)

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// Client talks to a running API server
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithToken sets the bearer token sent with every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for baseURL, e.g. http://localhost:8080
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

// Register creates an account
func (c *Client) Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error) {
	var res services.AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Login signs in and stores the returned token on the client
func (c *Client) Login(ctx context.Context, in services.LoginInput) (*services.AuthResult, error) {
	var res services.AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", in, &res); err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

// Me returns the signed-in account
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RequestUpload asks for a pre-signed upload URL
func (c *Client) RequestUpload(ctx context.Context, in services.UploadRequest) (*services.UploadResponse, error) {
	var res services.UploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/photos/upload", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// PutObject uploads bytes to a pre-signed URL. No bearer token is sent.
func (c *Client) PutObject(ctx context.Context, uploadURL, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	return nil
}

// ConfirmPhoto marks an uploaded photo ready for moderation
func (c *Client) ConfirmPhoto(ctx context.Context, photoID string) (*models.Photo, error) {
	var photo models.Photo
	if err := c.do(ctx, http.MethodPost, "/api/v1/photos/"+url.PathEscape(photoID)+"/confirm", nil, &photo); err != nil {
		return nil, err
	}
	return &photo, nil
}

// CreateRoom opens a game room hosted by the caller
func (c *Client) CreateRoom(ctx context.Context, in services.CreateRoomInput) (*models.Room, error) {
	var room models.Room
	if err := c.do(ctx, http.MethodPost, "/api/v1/rooms", in, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// JoinRoom joins a room by its code
func (c *Client) JoinRoom(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	if err := c.do(ctx, http.MethodPost, "/api/v1/rooms/join", map[string]string{"code": code}, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// StartRoom starts the first round of a room the caller hosts
func (c *Client) StartRoom(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	if err := c.do(ctx, http.MethodPost, "/api/v1/rooms/"+url.PathEscape(roomID)+"/start", nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// CreateTeam creates a team owned by the caller
func (c *Client) CreateTeam(ctx context.Context, name string) (*models.Team, error) {
	var team models.Team
	if err := c.do(ctx, http.MethodPost, "/api/v1/teams", services.CreateTeamInput{Name: name}, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// JoinTeam joins a team by its join code
func (c *Client) JoinTeam(ctx context.Context, code string) (*models.Team, error) {
	var team models.Team
	if err := c.do(ctx, http.MethodPost, "/api/v1/teams/join", map[string]string{"join_code": code}, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// RequestContact sends a contact request to the user holding code
func (c *Client) RequestContact(ctx context.Context, code string) (*models.Contact, error) {
	var contact models.Contact
	if err := c.do(ctx, http.MethodPost, "/api/v1/contacts", map[string]string{"code": code}, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// ListContacts lists contacts in status; empty means accepted
func (c *Client) ListContacts(ctx context.Context, status models.ContactStatus) ([]models.ContactView, error) {
	path := "/api/v1/contacts"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var res struct {
		Contacts []models.ContactView `json:"contacts"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res.Contacts, nil
}

// Health checks the server and its database
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}
