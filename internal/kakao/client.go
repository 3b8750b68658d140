package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultAuthBaseURL = "https://kauth.kakao.com"
	DefaultAPIBaseURL  = "https://kapi.kakao.com"

	memoSendPath = "/v2/api/talk/memo/default/send"
	tokenPath    = "/oauth/token"
	userInfoPath = "/v2/user/me"
)

// Client talks to the Kakao OAuth and messaging APIs. Base URLs are
// configurable so tests can point it at a local server.
type Client struct {
	AuthBaseURL  string
	APIBaseURL   string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
}

func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		AuthBaseURL:  DefaultAuthBaseURL,
		APIBaseURL:   DefaultAPIBaseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SendResult is the normalized outcome of one memo send attempt.
// StatusCode 0 means the request never reached Kakao.
type SendResult struct {
	Delivered   bool
	StatusCode  int
	ErrorDetail string
}

type memoTemplate struct {
	ObjectType string       `json:"object_type"`
	Text       string       `json:"text"`
	Link       templateLink `json:"link"`
}

type templateLink struct {
	WebURL       string `json:"web_url"`
	MobileWebURL string `json:"mobile_web_url"`
}

// SendMemo posts a text message to the user's own Kakao chat.
// Delivery failures — remote 4xx/5xx and transport errors alike — are
// reported in the result, never as a Go error, so one recipient's
// failure can't abort a fan-out run.
func (c *Client) SendMemo(ctx context.Context, accessToken, message string) SendResult {
	template, err := json.Marshal(memoTemplate{
		ObjectType: "text",
		Text:       message,
		Link:       templateLink{},
	})
	if err != nil {
		return SendResult{StatusCode: 0, ErrorDetail: err.Error()}
	}

	form := url.Values{"template_object": {string(template)}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.APIBaseURL+memoSendPath, strings.NewReader(form.Encode()))
	if err != nil {
		return SendResult{StatusCode: 0, ErrorDetail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return SendResult{StatusCode: 0, ErrorDetail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return SendResult{Delivered: true, StatusCode: resp.StatusCode}
	}

	return SendResult{
		StatusCode:  resp.StatusCode,
		ErrorDetail: extractErrorDetail(resp.Body),
	}
}

// extractErrorDetail pulls the most useful error string out of a Kakao
// error body: "msg" first, then "error_description".
func extractErrorDetail(body io.Reader) string {
	var parsed struct {
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}

	if err := json.NewDecoder(body).Decode(&parsed); err == nil {
		if parsed.Msg != "" {
			return parsed.Msg
		}
		if parsed.ErrorDescription != "" {
			return parsed.ErrorDescription
		}
	}

	return "unknown error"
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// ExchangeCode trades an OAuth authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
		"redirect_uri":  {redirectURI},
		"code":          {code},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.AuthBaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kakao token exchange returned status %d", resp.StatusCode)
	}

	var token TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, err
	}

	return &token, nil
}

type UserInfo struct {
	ID         int64           `json:"id"`
	RawProfile json.RawMessage `json:"-"`
	Properties struct {
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"properties"`
	KakaoAccount struct {
		Email string `json:"email"`
	} `json:"kakao_account"`
}

// GetUserInfo fetches the Kakao profile for the given access token.
func (c *Client) GetUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.APIBaseURL+userInfoPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kakao user info returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var info UserInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, err
	}
	info.RawProfile = raw

	return &info, nil
}
