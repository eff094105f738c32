package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/partbench/partsync/internal/config"
	"github.com/partbench/partsync/internal/http"
	"github.com/partbench/partsync/internal/models"
)

// retryLogger implements the retryablehttp.LeveledLogger interface
type retryLogger struct{}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	log.Printf("[RETRY ERROR] %s %v", msg, keysAndValues)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	// Only log errors and warnings, not all info
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	// Only log errors and warnings
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	log.Printf("[RETRY WARN] %s %v", msg, keysAndValues)
}

// Client is the remote catalog client. Every query is a single blocking
// request; the decoded payload is returned in memory, so concurrent calls
// against distinct entities are safe.
type Client struct {
	httpClient  *nethttp.Client
	endpointURL string
	loginURL    string
	token       string
	timeout     time.Duration
}

// NewClient creates a new catalog client from the given configuration.
func NewClient(cfg *config.Config) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = http.NewTransferClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 15 * time.Second
	retryClient.Logger = &retryLogger{}

	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient:  retryClient.StandardClient(),
		endpointURL: strings.TrimSuffix(cfg.EndpointURL, "/"),
		loginURL:    strings.TrimSuffix(cfg.LoginURL, "/"),
		token:       cfg.Token,
		timeout:     timeout,
	}
}

// queryRequest is the wire form of a catalog query.
type queryRequest struct {
	Query string `json:"query"`
}

// envelope is the catalog's tagged response union. Errors is checked before
// Data: when both are set, the call is still a failure.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// execute sends one query and returns the decoded data payload. The caller
// knows the expected payload shape from the query it issued.
func (c *Client) execute(ctx context.Context, query string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(queryRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := nethttp.NewRequestWithContext(ctx, "POST", c.endpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &RequestError{StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyResponse
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	// errors before data, always
	if len(env.Errors) > 0 {
		msgs := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, &RemoteError{Messages: msgs}
	}

	if len(env.Data) == 0 {
		return nil, ErrEmptyResponse
	}
	return env.Data, nil
}

// FavoriteComponents returns the components the user has favorited.
func (c *Client) FavoriteComponents(ctx context.Context) ([]models.Component, error) {
	query := `query { favoriteComponents { uuid name previewUrl owner { uuid username } } }`

	data, err := c.execute(ctx, query)
	if err != nil {
		return nil, err
	}

	var payload struct {
		FavoriteComponents []models.Component `json:"favoriteComponents"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode favorite components: %w", err)
	}
	return payload.FavoriteComponents, nil
}

// Modifications returns the modifications of a component.
func (c *Client) Modifications(ctx context.Context, componentUUID string) ([]models.Modification, error) {
	query := fmt.Sprintf(`query { modifications(componentUuid: %q) { uuid name componentUuid } }`, componentUUID)

	data, err := c.execute(ctx, query)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Modifications []models.Modification `json:"modifications"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode modifications: %w", err)
	}
	return payload.Modifications, nil
}

// Filesets returns the filesets of a modification, filtered server-side to
// the given target program.
func (c *Client) Filesets(ctx context.Context, modificationUUID, program string) ([]models.Fileset, error) {
	query := fmt.Sprintf(`query { filesets(modificationUuid: %q, program: %q) { uuid modificationUuid program } }`,
		modificationUUID, program)

	data, err := c.execute(ctx, query)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Filesets []models.Fileset `json:"filesets"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode filesets: %w", err)
	}
	return payload.Filesets, nil
}

// FilesetFiles returns the downloadable files of a fileset.
func (c *Client) FilesetFiles(ctx context.Context, filesetUUID string) ([]models.FilesetFile, error) {
	query := fmt.Sprintf(`query { filesetFiles(filesetUuid: %q) { uuid filename downloadUrl filesetUuid size } }`, filesetUUID)

	data, err := c.execute(ctx, query)
	if err != nil {
		return nil, err
	}

	var payload struct {
		FilesetFiles []models.FilesetFile `json:"filesetFiles"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode fileset files: %w", err)
	}
	return payload.FilesetFiles, nil
}

// loginRequest is the wire form of the login call. Credentials ride in the
// body; this is the one call made without an Authorization header.
type loginRequest struct {
	User struct {
		Username string `json:"username"`
		Password string `json:"password"`
	} `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var lr loginRequest
	lr.User.Username = username
	lr.User.Password = password

	body, err := json.Marshal(lr)
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := nethttp.NewRequestWithContext(ctx, "POST", c.loginURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &RequestError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", &RequestError{StatusCode: resp.StatusCode}
	}

	var result struct {
		Bearer string `json:"bearer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if result.Bearer == "" {
		return "", fmt.Errorf("login response contained no bearer token")
	}
	return result.Bearer, nil
}
