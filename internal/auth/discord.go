package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrMissingCode = errors.New("authorization code missing")

type DiscordConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	APIBase      string
	Scopes       []string
}

// DiscordUser is the subset of /users/@me the dashboard uses.
type DiscordUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
}

// DisplayName renders username#discriminator. Accounts migrated to Discord's
// unique usernames report discriminator "0".
func (u *DiscordUser) DisplayName() string {
	disc := u.Discriminator
	if disc == "" {
		disc = "0"
	}
	return u.Username + "#" + disc
}

type DiscordTokenResponse struct {
	AccessToken string `json:"access_token"`
}

// DiscordClient runs the OAuth2 authorization code flow against Discord.
type DiscordClient struct {
	config DiscordConfig
	client *http.Client
}

func NewDiscordClient(cfg DiscordConfig, httpClient *http.Client) *DiscordClient {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"identify"}
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &DiscordClient{config: cfg, client: httpClient}
}

// AuthURL is where /login sends the browser.
func (c *DiscordClient) AuthURL() string {
	params := url.Values{}
	params.Set("client_id", c.config.ClientID)
	params.Set("redirect_uri", c.config.RedirectURI)
	params.Set("response_type", "code")
	params.Set("scope", strings.Join(c.config.Scopes, " "))

	return c.config.APIBase + "/oauth2/authorize?" + params.Encode()
}

// Exchange trades an authorization code for the caller's Discord identity.
func (c *DiscordClient) Exchange(ctx context.Context, code string) (*DiscordUser, error) {
	if code == "" {
		return nil, ErrMissingCode
	}

	token, err := c.exchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	user, err := c.getUser(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}

	slog.InfoContext(ctx, "Discord login completed", "discord_id", user.ID, "username", user.Username)
	return user, nil
}

func (c *DiscordClient) exchangeCode(ctx context.Context, code string) (*DiscordTokenResponse, error) {
	data := url.Values{}
	data.Set("client_id", c.config.ClientID)
	data.Set("client_secret", c.config.ClientSecret)
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", c.config.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIBase+"/oauth2/token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token DiscordTokenResponse
	if err := c.do(req, &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, errors.New("token response has no access_token")
	}
	return &token, nil
}

func (c *DiscordClient) getUser(ctx context.Context, accessToken string) (*DiscordUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.APIBase+"/users/@me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var user DiscordUser
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, errors.New("user response has no id")
	}
	return &user, nil
}

func (c *DiscordClient) do(req *http.Request, out any) error {
	req.Header.Set("User-Agent", "lotus/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
