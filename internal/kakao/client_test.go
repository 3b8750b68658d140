package kakao

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(server *httptest.Server) *Client {
	client := NewClient("client-id", "client-secret")
	client.AuthBaseURL = server.URL
	client.APIBaseURL = server.URL
	client.HTTPClient = server.Client()
	return client
}

func TestSendMemo_Delivered(t *testing.T) {
	var captured *http.Request
	var templateObject string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		require.NoError(t, r.ParseForm())
		templateObject = r.PostFormValue("template_object")
		w.Write([]byte(`{"result_code":0}`))
	}))
	defer server.Close()

	result := testClient(server).SendMemo(context.Background(), "user-token", "안녕하세요")

	assert.True(t, result.Delivered)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Empty(t, result.ErrorDetail)

	require.NotNil(t, captured)
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "/v2/api/talk/memo/default/send", captured.URL.Path)
	assert.Equal(t, "Bearer user-token", captured.Header.Get("Authorization"))

	var template struct {
		ObjectType string `json:"object_type"`
		Text       string `json:"text"`
		Link       struct {
			WebURL       string `json:"web_url"`
			MobileWebURL string `json:"mobile_web_url"`
		} `json:"link"`
	}
	require.NoError(t, json.Unmarshal([]byte(templateObject), &template))
	assert.Equal(t, "text", template.ObjectType)
	assert.Equal(t, "안녕하세요", template.Text)
}

func TestSendMemo_RemoteErrorUsesMsgField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"msg":"this access token does not exist","code":-401}`))
	}))
	defer server.Close()

	result := testClient(server).SendMemo(context.Background(), "stale-token", "hi")

	assert.False(t, result.Delivered)
	assert.Equal(t, http.StatusUnauthorized, result.StatusCode)
	assert.Equal(t, "this access token does not exist", result.ErrorDetail)
}

func TestSendMemo_RemoteErrorFallsBackToErrorDescription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_request","error_description":"template_object is malformed"}`))
	}))
	defer server.Close()

	result := testClient(server).SendMemo(context.Background(), "user-token", "hi")

	assert.False(t, result.Delivered)
	assert.Equal(t, "template_object is malformed", result.ErrorDetail)
}

func TestSendMemo_UnparseableErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer server.Close()

	result := testClient(server).SendMemo(context.Background(), "user-token", "hi")

	assert.False(t, result.Delivered)
	assert.Equal(t, http.StatusInternalServerError, result.StatusCode)
	assert.Equal(t, "unknown error", result.ErrorDetail)
}

func TestSendMemo_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := testClient(server)
	server.Close()

	result := client.SendMemo(context.Background(), "user-token", "hi")

	assert.False(t, result.Delivered)
	assert.Equal(t, 0, result.StatusCode)
	assert.NotEmpty(t, result.ErrorDetail)
}

func TestExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/oauth/token", r.URL.Path)
		assert.Equal(t, "authorization_code", r.PostFormValue("grant_type"))
		assert.Equal(t, "client-id", r.PostFormValue("client_id"))
		assert.Equal(t, "client-secret", r.PostFormValue("client_secret"))
		assert.Equal(t, "auth-code", r.PostFormValue("code"))
		assert.Equal(t, "http://localhost:5173/callback", r.PostFormValue("redirect_uri"))

		json.NewEncoder(w).Encode(TokenResponse{
			AccessToken:  "access-abc",
			RefreshToken: "refresh-def",
			ExpiresIn:    21599,
		})
	}))
	defer server.Close()

	token, err := testClient(server).ExchangeCode(context.Background(), "auth-code", "http://localhost:5173/callback")

	require.NoError(t, err)
	assert.Equal(t, "access-abc", token.AccessToken)
	assert.Equal(t, "refresh-def", token.RefreshToken)
}

func TestExchangeCode_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	_, err := testClient(server).ExchangeCode(context.Background(), "expired-code", "http://localhost:5173/callback")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestGetUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/user/me", r.URL.Path)
		assert.Equal(t, "Bearer access-abc", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":12345,"properties":{"nickname":"철수","profile_image":"http://img.example/p.png"},"kakao_account":{"email":"chulsoo@example.com"}}`))
	}))
	defer server.Close()

	info, err := testClient(server).GetUserInfo(context.Background(), "access-abc")

	require.NoError(t, err)
	assert.Equal(t, int64(12345), info.ID)
	assert.Equal(t, "철수", info.Properties.Nickname)
	assert.Equal(t, "chulsoo@example.com", info.KakaoAccount.Email)
	assert.NotEmpty(t, info.RawProfile)
}
