package connectors

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kelseyhightower/envconfig"
	logger "github.com/sirupsen/logrus"
)

type GoogleConfig struct {
	ClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	ClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `envconfig:"GOOGLE_REDIRECT_URL"`
	TokenURL     string `envconfig:"GOOGLE_TOKEN_URL" default:"https://oauth2.googleapis.com/token"`
	UserInfoURL  string `envconfig:"GOOGLE_USERINFO_URL" default:"https://www.googleapis.com/oauth2/v2/userinfo"`
}

func GetGoogleConfig() GoogleConfig {
	var config GoogleConfig
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

type googleTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error,omitempty"`
	ErrorDesc   string `json:"error_description,omitempty"`
}

// GoogleUserInfo is the subset of the userinfo payload the journal keeps.
type GoogleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleClient exchanges OAuth authorization codes and fetches the
// user's profile.
type GoogleClient struct {
	config GoogleConfig
	http   *resty.Client
}

func NewGoogleClient(config GoogleConfig) *GoogleClient {
	httpClient := resty.New().
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &GoogleClient{
		config: config,
		http:   httpClient,
	}
}

// ExchangeCode swaps an authorization code for the user's profile.
func (c *GoogleClient) ExchangeCode(ctx context.Context, code string) (*GoogleUserInfo, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)
	form.Set("redirect_uri", c.config.RedirectURL)
	form.Set("grant_type", "authorization_code")

	var tok googleTokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetFormDataFromValues(form).
		SetResult(&tok).
		Post(c.config.TokenURL)
	if err != nil {
		return nil, fmt.Errorf("google token exchange failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		logger.WithFields(map[string]interface{}{
			"component": "GoogleClient",
			"status":    resp.StatusCode(),
			"error":     tok.Error,
		}).Error("Google rejected the authorization code")
		return nil, fmt.Errorf("google token exchange returned HTTP %d: %s", resp.StatusCode(), tok.Error)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("google token exchange returned no access token")
	}

	return c.fetchUserInfo(ctx, tok.AccessToken)
}

func (c *GoogleClient) fetchUserInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error) {
	var info GoogleUserInfo
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+accessToken).
		SetResult(&info).
		Get(c.config.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("google userinfo request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("google userinfo returned HTTP %d", resp.StatusCode())
	}
	if info.ID == "" {
		return nil, fmt.Errorf("google userinfo returned no subject id")
	}

	return &info, nil
}
