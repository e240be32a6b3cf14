package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thriftr-app/thriftr/internal/core/domain"
	"github.com/thriftr-app/thriftr/internal/infra/security"
	"github.com/thriftr-app/thriftr/internal/repository"
	"github.com/thriftr-app/thriftr/internal/usecase"
)

const strongTestPassword = "Str0ng!Pass"

// fakeAccountStore is an in-memory stand-in for the persistence layer.
type fakeAccountStore struct {
	byID   map[int64]domain.Account
	nextID int64

	lookupErr error
	insertErr error
	deleteErr error
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{byID: map[int64]domain.Account{}, nextID: 1}
}

func (f *fakeAccountStore) match(identifier string) (domain.Account, bool) {
	for _, account := range f.byID {
		if account.Username == identifier || account.Email == identifier {
			return account, true
		}
	}
	return domain.Account{}, false
}

func (f *fakeAccountStore) GetByIdentifier(_ context.Context, identifier string) (*domain.Account, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if account, ok := f.match(identifier); ok {
		return &account, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccountStore) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if account, ok := f.byID[id]; ok {
		return &account, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccountStore) Exists(_ context.Context, identifier string) (bool, error) {
	_, ok := f.match(identifier)
	return ok, nil
}

func (f *fakeAccountStore) Insert(_ context.Context, username, email, passwordHash string) (*domain.Account, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	account := domain.Account{
		ID:           f.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	f.byID[account.ID] = account
	f.nextID++
	return &account, nil
}

func (f *fakeAccountStore) Delete(_ context.Context, identifier string) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	if account, ok := f.match(identifier); ok {
		delete(f.byID, account.ID)
		return true, nil
	}
	return false, nil
}

type testServer struct {
	router *gin.Engine
	store  *fakeAccountStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeAccountStore()

	codec, err := security.NewTokenCodec("handlers-test-secret", "HS256", 30*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}

	registration := usecase.NewRegistrationService(store, nil, nil, nil)
	auth := usecase.NewAuthService(store, codec, nil)
	accounts := usecase.NewAccountService(store, codec, nil, nil)

	router := gin.New()
	group := router.Group("/api/auth")

	NewAuthHandler(registration, auth).RegisterRoutes(group, nil, nil)
	NewAccountHandler(accounts).RegisterRoutes(group)

	return &testServer{router: router, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

func registerAlice(t *testing.T, server *testServer) {
	t.Helper()
	rr := server.do(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: strongTestPassword,
	}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("registration failed with %d: %s", rr.Code, rr.Body.String())
	}
}

func loginAlice(t *testing.T, server *testServer) string {
	t.Helper()
	rr := server.do(t, http.MethodPost, "/api/auth/token", LoginRequest{
		Username: "alice",
		Password: strongTestPassword,
	}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", rr.Code, rr.Body.String())
	}
	token := decodeJSON[TokenResponse](t, rr)
	if token.AccessToken == "" {
		t.Fatal("expected a non-empty access token")
	}
	if token.TokenType != "bearer" {
		t.Fatalf("expected token type bearer, got %q", token.TokenType)
	}
	return token.AccessToken
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": fmt.Sprintf("Bearer %s", token)}
}

func TestRegister(t *testing.T) {
	server := newTestServer(t)

	rr := server.do(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: strongTestPassword,
	}, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeJSON[RegisterResponse](t, rr)
	if !resp.Registered {
		t.Fatal("expected registered flag to be set")
	}
	if resp.Username != "alice" {
		t.Fatalf("expected username alice, got %s", resp.Username)
	}
}

func TestRegister_MalformedJSON(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rr.Code)
	}
}

func TestRegister_ValidationFailure(t *testing.T) {
	server := newTestServer(t)

	rr := server.do(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Username: "ab",
		Email:    "ab@example.com",
		Password: strongTestPassword,
	}, nil)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeJSON[ErrorResponse](t, rr)
	if resp.Error == "" {
		t.Fatal("expected an error message naming the violation")
	}
}

func TestRegister_Conflicts(t *testing.T) {
	server := newTestServer(t)
	registerAlice(t, server)

	rr := server.do(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: strongTestPassword,
	}, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for taken username, got %d", rr.Code)
	}

	rr = server.do(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Username: "bob",
		Email:    "alice@example.com",
		Password: strongTestPassword,
	}, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for taken email, got %d", rr.Code)
	}
}

func TestRegister_StoreUnavailable(t *testing.T) {
	server := newTestServer(t)
	server.store.insertErr = fmt.Errorf("connection refused")

	rr := server.do(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: strongTestPassword,
	}, nil)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestToken(t *testing.T) {
	server := newTestServer(t)
	registerAlice(t, server)

	loginAlice(t, server)

	// Login by email works the same way.
	rr := server.do(t, http.MethodPost, "/api/auth/token", LoginRequest{
		Email:    "alice@example.com",
		Password: strongTestPassword,
	}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for email login, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestToken_Unauthorized(t *testing.T) {
	server := newTestServer(t)
	registerAlice(t, server)

	wrongPassword := server.do(t, http.MethodPost, "/api/auth/token", LoginRequest{
		Username: "alice",
		Password: "Wr0ng!Pass99",
	}, nil)
	if wrongPassword.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", wrongPassword.Code)
	}

	unknownUser := server.do(t, http.MethodPost, "/api/auth/token", LoginRequest{
		Username: "nobody",
		Password: strongTestPassword,
	}, nil)
	if unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", unknownUser.Code)
	}

	// Both failures must carry the same message so callers cannot probe
	// which usernames exist.
	wrongBody := decodeJSON[ErrorResponse](t, wrongPassword)
	unknownBody := decodeJSON[ErrorResponse](t, unknownUser)
	if wrongBody.Error != unknownBody.Error {
		t.Fatalf("expected identical errors, got %q and %q", wrongBody.Error, unknownBody.Error)
	}
}

func TestToken_ValidationFailure(t *testing.T) {
	server := newTestServer(t)

	rr := server.do(t, http.MethodPost, "/api/auth/token", LoginRequest{
		Password: strongTestPassword,
	}, nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing identifier, got %d", rr.Code)
	}

	rr = server.do(t, http.MethodPost, "/api/auth/token", LoginRequest{
		Username: "alice",
		Password: "short",
	}, nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for short password, got %d", rr.Code)
	}
}
