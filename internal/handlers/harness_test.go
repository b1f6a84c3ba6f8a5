package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/accounts"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/auth"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/content"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/memstore"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/middleware"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/social"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/storage"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/token"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/views"
)

// syncRecorder applies views inline so tests can observe them right away.
type syncRecorder struct {
	store *memstore.Store
}

func (r syncRecorder) RecordView(viewerID, videoID string) error {
	ctx := context.Background()
	if err := r.store.Videos().IncrementViews(ctx, videoID); err != nil {
		return err
	}
	if viewerID == "" {
		return nil
	}
	return r.store.Users().AppendWatchHistory(ctx, viewerID, videoID, time.Now().UTC())
}

type testServer struct {
	handler http.Handler
	store   *memstore.Store
	media   *storage.MemoryStorage
}

func newTestServer(t *testing.T, limiter middleware.RateLimiter) *testServer {
	t.Helper()

	access, err := token.NewCodec(token.KindAccess, "access-secret", time.Minute)
	if err != nil {
		t.Fatalf("access codec: %v", err)
	}
	refresh, err := token.NewCodec(token.KindRefresh, "refresh-secret", time.Hour)
	if err != nil {
		t.Fatalf("refresh codec: %v", err)
	}

	store := memstore.New()
	media := storage.NewMemoryStorage()
	credentials := auth.BcryptCredentials{Cost: bcrypt.MinCost}

	mux := http.NewServeMux()
	RegisterRoutes(mux, Dependencies{
		Sessions: auth.NewManager(access, refresh, store.Users(), store.Sessions(), credentials),
		Accounts: accounts.Service{Users: store.Users(), Credentials: credentials, Media: media},
		Views:    views.NewEngine(store.Relations()),
		Content:  content.Service{Videos: store.Videos(), Comments: store.Comments(), Media: media},
		Social: social.Service{
			Likes:         store.Likes(),
			Subscriptions: store.Subscriptions(),
			Videos:        store.Relations(),
			Comments:      store.Comments(),
			Users:         store.Users(),
		},
		Recorder:      syncRecorder{store: store},
		Authenticator: middleware.Authenticator{Tokens: access, Users: store.Users()},
		AuthLimiter:   limiter,
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testServer{handler: middleware.RequestLogger(logger)(mux), store: store, media: media}
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Kind       string          `json:"kind"`
	Errors     []string        `json:"errors"`
}

type call struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	token       string
	cookies     []*http.Cookie
}

func (s *testServer) do(t *testing.T, c call) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(c.method, c.path, c.body)
	if c.contentType != "" {
		req.Header.Set("Content-Type", c.contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v (%s)", c.method, c.path, err, rec.Body.String())
	}
	if env.StatusCode != rec.Code {
		t.Fatalf("envelope status %d does not match response status %d", env.StatusCode, rec.Code)
	}
	return rec, env
}

func jsonCall(method, path, token string, payload any) call {
	body, _ := json.Marshal(payload)
	return call{method: method, path: path, body: bytes.NewReader(body), contentType: "application/json", token: token}
}

func multipartCall(t *testing.T, method, path, token string, fields, files map[string]string) call {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for name, filename := range files {
		part, err := writer.CreateFormFile(name, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := io.WriteString(part, "contents of "+filename); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return call{method: method, path: path, body: &buf, contentType: writer.FormDataContentType(), token: token}
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode data: %v (%s)", err, string(env.Data))
	}
	return out
}

type session struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

func (s *testServer) register(t *testing.T, username, password string) string {
	t.Helper()
	rec, env := s.do(t, multipartCall(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"fullName": username + " tester",
		"password": password,
	}, map[string]string{"avatar": username + ".png"}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d %+v", username, rec.Code, env)
	}
	return decodeData[struct {
		ID string `json:"id"`
	}](t, env).ID
}

func (s *testServer) login(t *testing.T, identity, password string) session {
	t.Helper()
	rec, env := s.do(t, jsonCall(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": identity, "password": password}))
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d %+v", identity, rec.Code, env)
	}
	data := decodeData[struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}](t, env)
	return session{UserID: data.User.ID, AccessToken: data.AccessToken, RefreshToken: data.RefreshToken}
}
