package rest

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stream254/backend/internal/common"
	"github.com/stream254/backend/internal/server/models"
	"github.com/stream254/backend/internal/server/services"
)

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	r := httptest.NewRequest(method, target, bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestRegisterHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		users := &fakeUserService{registerOut: &services.AuthResult{
			Token: "tok",
			User:  &models.User{ID: "u1", Username: "alice"},
		}}
		s := newTestServer(users, nil, nil)

		w := doRequest(t, s, jsonRequest(t, http.MethodPost, "/api/v1/register", map[string]string{
			"username": "alice", "email": "a@b.io", "password": "Str0ng!pass",
		}))

		require.Equal(t, http.StatusCreated, w.Code)
		require.JSONEq(t, `{"token":"tok","_id":"u1","username":"alice"}`, w.Body.String())
	})

	t.Run("duplicate email", func(t *testing.T) {
		s := newTestServer(&fakeUserService{registerErr: common.ErrConflict}, nil, nil)
		w := doRequest(t, s, jsonRequest(t, http.MethodPost, "/api/v1/register", map[string]string{}))

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.JSONEq(t, `{"message":"User Already Exists"}`, w.Body.String())
	})

	t.Run("weak password", func(t *testing.T) {
		s := newTestServer(&fakeUserService{registerErr: common.ErrWeakPassword}, nil, nil)
		w := doRequest(t, s, jsonRequest(t, http.MethodPost, "/api/v1/register", map[string]string{}))

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "at least 8 characters")
	})

	t.Run("malformed body", func(t *testing.T) {
		s := newTestServer(nil, nil, nil)
		r := httptest.NewRequest(http.MethodPost, "/api/v1/register", strings.NewReader("{"))
		w := doRequest(t, s, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("service failure", func(t *testing.T) {
		s := newTestServer(&fakeUserService{registerErr: errBoom{}}, nil, nil)
		w := doRequest(t, s, jsonRequest(t, http.MethodPost, "/api/v1/register", map[string]string{}))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.JSONEq(t, `{"message":"Server Error"}`, w.Body.String())
	})
}

func TestLoginHandler(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		users := &fakeUserService{loginOut: &services.AuthResult{
			Token: "tok",
			User:  &models.User{ID: "u1", Username: "alice", Email: "a@b.io"},
		}}
		s := newTestServer(users, nil, nil)

		w := doRequest(t, s, jsonRequest(t, http.MethodPost, "/api/v1/login", map[string]string{
			"email": "a@b.io", "password": "Str0ng!pass",
		}))

		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"_id":"u1","token":"tok","username":"alice","email":"a@b.io"}`, w.Body.String())
	})

	t.Run("bad credentials", func(t *testing.T) {
		s := newTestServer(&fakeUserService{loginErr: common.ErrUnauthorized}, nil, nil)
		w := doRequest(t, s, jsonRequest(t, http.MethodPost, "/api/v1/login", map[string]string{}))

		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.JSONEq(t, `{"message":"Invalid email or password"}`, w.Body.String())
	})
}

func TestSendResetLinkHandler(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		users := &fakeUserService{}
		s := newTestServer(users, nil, nil)

		w := doRequest(t, s, jsonRequest(t, http.MethodPost, "/api/v1/reset", map[string]string{"email": "a@b.io"}))

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "a@b.io", users.resetLinkTo)
		require.JSONEq(t, `{"message":"Password reset link sent successfully."}`, w.Body.String())
	})

	t.Run("unknown email", func(t *testing.T) {
		s := newTestServer(&fakeUserService{resetLinkErr: common.ErrNotFound}, nil, nil)
		w := doRequest(t, s, jsonRequest(t, http.MethodPost, "/api/v1/reset", map[string]string{"email": "x"}))

		require.Equal(t, http.StatusNotFound, w.Code)
		require.JSONEq(t, `{"message":"User not found."}`, w.Body.String())
	})

	t.Run("delivery failure", func(t *testing.T) {
		s := newTestServer(&fakeUserService{resetLinkErr: common.ErrDelivery}, nil, nil)
		w := doRequest(t, s, jsonRequest(t, http.MethodPost, "/api/v1/reset", map[string]string{"email": "x"}))

		require.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestResetPasswordHandler(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		users := &fakeUserService{}
		s := newTestServer(users, nil, nil)

		w := doRequest(t, s, jsonRequest(t, http.MethodPost, "/api/v1/reset/new_password", map[string]string{
			"resetToken": "tok", "newPassword": "Str0ng!pass",
		}))

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "tok", users.resetToken)
		require.Equal(t, "Str0ng!pass", users.resetPassword)
		require.JSONEq(t, `{"message":"Password reset successfully."}`, w.Body.String())
	})

	t.Run("invalid token", func(t *testing.T) {
		s := newTestServer(&fakeUserService{resetErr: common.ErrInvalidToken}, nil, nil)
		w := doRequest(t, s, jsonRequest(t, http.MethodPost, "/api/v1/reset/new_password", map[string]string{}))

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.JSONEq(t, `{"message":"Invalid or expired reset token."}`, w.Body.String())
	})
}

func TestGetProfileHandler(t *testing.T) {
	users := &fakeUserService{
		verifyOut:  "u1",
		profileOut: &models.User{ID: "u1", Username: "alice", Avatar: "avatars/2026/1/2/key"},
	}
	files := &fakeFileStore{urlPrefix: "https://media.local/"}
	s := newTestServer(users, nil, files)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	r.Header.Set("Authorization", "Bearer tok")
	w := doRequest(t, s, r)

	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "u1", got["_id"])
	require.Equal(t, "https://media.local/avatars/2026/1/2/key", got["avatar"])
	require.NotContains(t, w.Body.String(), "password")
	require.NotContains(t, w.Body.String(), "reset")
}

func multipartRequest(t *testing.T, target string, fields map[string]string, fileField, fileName string, fileBody []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(fileBody)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, target, &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("Authorization", "Bearer tok")
	return r
}

func TestUpdateProfileHandler(t *testing.T) {
	t.Run("fields and avatar", func(t *testing.T) {
		users := &fakeUserService{
			verifyOut: "u1",
			updateOut: &models.User{ID: "u1", Username: "alice"},
		}
		files := &fakeFileStore{saveOut: "avatars/2026/1/2/key"}
		s := newTestServer(users, nil, files)

		r := multipartRequest(t, "/api/v1/profile", map[string]string{
			"sports":       `["Football","Rugby"]`,
			"location":     "Mombasa",
			"phone_number": "0712345678",
			"terms":        "true",
		}, "avatar", "me.png", []byte("png-bytes"))
		w := doRequest(t, s, r)

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "Profile updated successfully")

		patch := users.updatePatch
		require.NotNil(t, patch)
		require.Equal(t, []string{"Football", "Rugby"}, patch.Sports)
		require.Nil(t, patch.Interests)
		require.Equal(t, "Mombasa", *patch.Location)
		require.Equal(t, "0712345678", *patch.PhoneNumber)
		require.True(t, *patch.Terms)
		require.Equal(t, "avatars/2026/1/2/key", *patch.Avatar)
	})

	t.Run("no avatar file", func(t *testing.T) {
		users := &fakeUserService{verifyOut: "u1", updateOut: &models.User{ID: "u1"}}
		s := newTestServer(users, nil, nil)

		r := multipartRequest(t, "/api/v1/profile", map[string]string{"location": "Kisumu"}, "", "", nil)
		w := doRequest(t, s, r)

		require.Equal(t, http.StatusOK, w.Code)
		require.Nil(t, users.updatePatch.Avatar)
	})

	t.Run("unknown sport", func(t *testing.T) {
		users := &fakeUserService{verifyOut: "u1", updateErr: common.ErrValidation}
		s := newTestServer(users, nil, nil)

		r := multipartRequest(t, "/api/v1/profile", map[string]string{"sports": `["Quidditch"]`}, "", "", nil)
		w := doRequest(t, s, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.JSONEq(t, `{"message":"Invalid data"}`, w.Body.String())
	})
}

func TestLogoutHandler(t *testing.T) {
	users := &fakeUserService{verifyOut: "u1"}
	s := newTestServer(users, nil, nil)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/logout", nil)
	r.Header.Set("Authorization", "Bearer tok")
	w := doRequest(t, s, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Logged out successfully"}`, w.Body.String())
}
