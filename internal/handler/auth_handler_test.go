package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
)

type authResponse struct {
	Code int `json:"code"`
	Data struct {
		Token string `json:"token"`
		User  struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Phone string `json:"phone"`
			Email string `json:"email"`
		} `json:"user"`
	} `json:"data"`
}

func postJSON(t *testing.T, url string, body any) (*http.Response, []byte) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	res, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, resBody
}

func TestRegisterCreatesAccountAndIssuesToken(t *testing.T) {
	srv, _, _ := newTestServer(t)

	res, body := postJSON(t, srv.URL+"/api/auth/register", RegisterInput{
		Name:     "Alice",
		Phone:    "+15550000001",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "body: %s", body)

	var parsed authResponse
	require.NoError(t, json.Unmarshal(body, &parsed))
	require.Zero(t, parsed.Code)
	require.NotEmpty(t, parsed.Data.Token)
	assert.Equal(t, "Alice", parsed.Data.User.Name)

	// The issued token must carry the stored identity.
	payload, err := jwt.ParseToken(parsed.Data.Token, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, parsed.Data.User.ID, payload.ID)
}

func TestRegisterRejectsDuplicatePhone(t *testing.T) {
	srv, _, _ := newTestServer(t)

	input := RegisterInput{
		Name:     "Alice",
		Phone:    "+15550000001",
		Email:    "alice@example.com",
		Password: "hunter22",
	}

	res, _ := postJSON(t, srv.URL+"/api/auth/register", input)
	require.Equal(t, http.StatusOK, res.StatusCode)

	input.Email = "alice2@example.com"
	res, body := postJSON(t, srv.URL+"/api/auth/register", input)

	var parsed authResponse
	require.NoError(t, json.Unmarshal(body, &parsed))
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, errs.ErrUserAlreadyExists, parsed.Code)
}

func TestRegisterValidatesInput(t *testing.T) {
	srv, _, _ := newTestServer(t)

	cases := []struct {
		name     string
		input    RegisterInput
		wantCode int
	}{
		{
			name:     "bad phone",
			input:    RegisterInput{Name: "A", Phone: "abc", Email: "a@example.com", Password: "hunter22"},
			wantCode: errs.ErrInvalidPhone,
		},
		{
			name:     "bad email",
			input:    RegisterInput{Name: "A", Phone: "+15550000001", Email: "nope", Password: "hunter22"},
			wantCode: errs.ErrInvalidEmail,
		},
		{
			name:     "short password",
			input:    RegisterInput{Name: "A", Phone: "+15550000001", Email: "a@example.com", Password: "abc"},
			wantCode: errs.ErrInvalidPassword,
		},
		{
			name:     "empty name",
			input:    RegisterInput{Name: "", Phone: "+15550000001", Email: "a@example.com", Password: "hunter22"},
			wantCode: errs.ErrInvalidName,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, body := postJSON(t, srv.URL+"/api/auth/register", tc.input)

			var parsed authResponse
			require.NoError(t, json.Unmarshal(body, &parsed))
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			assert.Equal(t, tc.wantCode, parsed.Code)
		})
	}
}

func TestLoginVerifiesCredentials(t *testing.T) {
	srv, _, _ := newTestServer(t)

	_, _ = postJSON(t, srv.URL+"/api/auth/register", RegisterInput{
		Name:     "Alice",
		Phone:    "+15550000001",
		Email:    "alice@example.com",
		Password: "hunter22",
	})

	res, body := postJSON(t, srv.URL+"/api/auth/login", LoginInput{
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "body: %s", body)

	var parsed authResponse
	require.NoError(t, json.Unmarshal(body, &parsed))
	assert.NotEmpty(t, parsed.Data.Token)

	res, body = postJSON(t, srv.URL+"/api/auth/login", LoginInput{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	require.NoError(t, json.Unmarshal(body, &parsed))
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, errs.ErrInvalidCredentials, parsed.Code)
}

func TestFindByPhone(t *testing.T) {
	srv, st, _ := newTestServer(t)
	alice := st.mustAddUser(t, "Alice", "+15550000001", "alice@example.com")

	res, err := http.Get(fmt.Sprintf("%s/api/users/by-phone/%s", srv.URL, alice.Phone))
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode, "body: %s", body)

	var parsed authResponse
	require.NoError(t, json.Unmarshal(body, &parsed))
	assert.Equal(t, alice.ID, parsed.Data.User.ID)

	res, err = http.Get(srv.URL + "/api/users/by-phone/+15559999999")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
