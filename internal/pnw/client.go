// Package pnw talks to the Politics & War GraphQL API.
package pnw

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"lotus/internal/metrics"

	"github.com/tidwall/gjson"
)

// PageSize is the largest page the API serves.
const PageSize = 250

// Args are GraphQL field arguments. Supported values: int, int64, float64,
// bool, string, []int64 and []string.
type Args map[string]any

// Error carries the messages of a GraphQL errors array.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return "game api: " + strings.Join(e.Messages, "; ")
}

var ErrNoAPIKey = errors.New("game api key not set")

type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewClient returns a client that reads with apiKey, the alliance-level key.
func NewClient(endpoint, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{endpoint: endpoint, apiKey: apiKey, client: httpClient}
}

// Query runs `{ entity(args) { data { fields } } }` with the alliance key and
// decodes the data list into out.
func (c *Client) Query(ctx context.Context, entity string, args Args, fields string, out any) (err error) {
	start := time.Now()
	defer func() { metrics.RecordGameAPICall(entity, "query", err, time.Since(start)) }()

	rendered, err := renderArgs(args)
	if err != nil {
		return err
	}
	query := "{ " + entity + rendered + " { data { " + compact(fields) + " } } }"

	body, err := c.post(ctx, c.apiKey, query)
	if err != nil {
		return fmt.Errorf("query %s: %w", entity, err)
	}

	result := gjson.GetBytes(body, "data."+entity+".data")
	if !result.Exists() || result.Type == gjson.Null {
		return fmt.Errorf("query %s: response has no data", entity)
	}
	if err := json.Unmarshal([]byte(result.Raw), out); err != nil {
		return fmt.Errorf("query %s: failed to decode response: %w", entity, err)
	}
	return nil
}

// MutateWithKey runs `mutation { entity(args) { fields } }` authenticated as
// the owner of apiKey and decodes the result into out, which may be nil.
func (c *Client) MutateWithKey(ctx context.Context, apiKey, entity string, args Args, fields string, out any) (err error) {
	start := time.Now()
	defer func() { metrics.RecordGameAPICall(entity, "mutation", err, time.Since(start)) }()

	if apiKey == "" {
		return ErrNoAPIKey
	}
	rendered, err := renderArgs(args)
	if err != nil {
		return err
	}
	query := "mutation { " + entity + rendered + " { " + compact(fields) + " } }"

	body, err := c.post(ctx, apiKey, query)
	if err != nil {
		return fmt.Errorf("mutation %s: %w", entity, err)
	}

	result := gjson.GetBytes(body, "data."+entity)
	if !result.Exists() || result.Type == gjson.Null {
		return fmt.Errorf("mutation %s: response has no data", entity)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(result.Raw), out); err != nil {
		return fmt.Errorf("mutation %s: failed to decode response: %w", entity, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, apiKey, query string) ([]byte, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Set("api_key", apiKey)
	u.RawQuery = q.Encode()

	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "lotus/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		// url.Error embeds the request URL, which carries the key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if apiErr := graphQLError(body); apiErr != nil {
		return nil, apiErr
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("malformed response")
	}
	return body, nil
}

func graphQLError(body []byte) error {
	errs := gjson.GetBytes(body, "errors")
	if !errs.IsArray() || len(errs.Array()) == 0 {
		return nil
	}
	apiErr := &Error{}
	for _, e := range errs.Array() {
		msg := e.Get("message").String()
		if msg == "" {
			msg = e.Raw
		}
		apiErr.Messages = append(apiErr.Messages, msg)
	}
	return apiErr
}

func renderArgs(args Args) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, err := renderValue(args[k])
		if err != nil {
			return "", fmt.Errorf("argument %s: %w", k, err)
		}
		parts = append(parts, k+": "+v)
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}

func renderValue(v any) (string, error) {
	switch val := v.(type) {
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	case string:
		b, err := json.Marshal(val)
		return string(b), err
	case []int64:
		items := make([]string, len(val))
		for i, n := range val {
			items[i] = strconv.FormatInt(n, 10)
		}
		return "[" + strings.Join(items, ", ") + "]", nil
	case []string:
		items := make([]string, len(val))
		for i, s := range val {
			b, err := json.Marshal(s)
			if err != nil {
				return "", err
			}
			items[i] = string(b)
		}
		return "[" + strings.Join(items, ", ") + "]", nil
	}
	return "", fmt.Errorf("unsupported type %T", v)
}

func compact(fields string) string {
	return strings.Join(strings.Fields(fields), " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
