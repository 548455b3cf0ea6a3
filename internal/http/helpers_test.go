package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/tazhibayda/user-service/internal/follow"
	api "github.com/tazhibayda/user-service/internal/http"
	"github.com/tazhibayda/user-service/internal/log"
	"github.com/tazhibayda/user-service/internal/queue"
	"github.com/tazhibayda/user-service/internal/repo"
	"github.com/tazhibayda/user-service/internal/service"
)

const testSecret = "test-secret"

// memObjects is an in-memory stand-in for S3.
type memObjects struct {
	mu   sync.Mutex
	blob map[string][]byte
}

func newMemObjects() *memObjects { return &memObjects{blob: map[string][]byte{}} }

func (m *memObjects) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.blob[key] = b
	m.mu.Unlock()
	return nil
}

func (m *memObjects) SignedGetURL(ctx context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (m *memObjects) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blob)
}

type testEnv struct {
	T       *testing.T
	Ctx     context.Context
	Mongo   *mongodb.MongoDBContainer
	Store   *repo.Store
	Objects *memObjects
	Router  *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	mc, err := mongodb.Run(ctx, "mongo:6")
	testcontainers.CleanupContainer(t, mc)
	if err != nil {
		t.Fatalf("mongo container: %v", err)
	}

	uri, err := mc.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("mongo uri: %v", err)
	}

	logger, err := log.Init(false)
	if err != nil {
		t.Fatalf("log init: %v", err)
	}

	store, err := repo.NewStore(ctx, uri, "users_test")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := store.EnsureUserIndexes(ctx); err != nil {
		t.Fatal(err)
	}

	objects := newMemObjects()
	pub := queue.NewNoop()

	acct := service.NewAccount(store, objects, pub, testSecret, logger)
	fm := follow.NewManager(store, pub, logger)

	// Redis/Rabbit/Google are not needed for these tests
	h := api.NewHandler(acct, fm, store, nil, 0, nil, testSecret)

	gin.SetMode(gin.TestMode)
	r := api.NewRouter(h)

	return &testEnv{T: t, Ctx: ctx, Mongo: mc, Store: store, Objects: objects, Router: r}
}

func (e *testEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close(e.Ctx)
	}
}

func (e *testEnv) do(method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	e.Router.ServeHTTP(w, req)
	return w
}

type signupForm struct {
	Name, Username, Password, ConfirmPassword, PhoneNumber, Email string
}

func validForm(username string) signupForm {
	return signupForm{
		Name:            "User " + username,
		Username:        username,
		Password:        "StrongP@ss1",
		ConfirmPassword: "StrongP@ss1",
		PhoneNumber:     "5551234567",
		Email:           username + "@example.com",
	}
}

func (e *testEnv) signup(f signupForm) *httptest.ResponseRecorder {
	e.T.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"name":            f.Name,
		"username":        f.Username,
		"password":        f.Password,
		"confirmPassword": f.ConfirmPassword,
		"phoneNumber":     f.PhoneNumber,
		"emailId":         f.Email,
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			e.T.Fatal(err)
		}
	}
	fw, err := mw.CreateFormFile("image", "avatar.png")
	if err != nil {
		e.T.Fatal(err)
	}
	if _, err := fw.Write([]byte("png-bytes")); err != nil {
		e.T.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		e.T.Fatal(err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/users/signup", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	e.Router.ServeHTTP(w, req)
	return w
}

// signupResult decodes {result, token} and fails the test on a non-200.
func (e *testEnv) signupResult(f signupForm) (id, token string) {
	e.T.Helper()
	w := e.signup(f)
	if w.Code != 200 {
		e.T.Fatalf("signup %s: code=%d body=%s", f.Username, w.Code, w.Body.String())
	}
	var out struct {
		Result struct {
			ID string `json:"id"`
		} `json:"result"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		e.T.Fatalf("signup resp: %v; body=%s", err, w.Body.String())
	}
	if out.Result.ID == "" || out.Token == "" {
		e.T.Fatalf("signup resp missing id/token: %s", w.Body.String())
	}
	return out.Result.ID, out.Token
}

func decodeUser(t *testing.T, w *httptest.ResponseRecorder, key string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v; body=%s", err, w.Body.String())
	}
	if key == "" {
		return out
	}
	u, ok := out[key].(map[string]any)
	if !ok {
		t.Fatalf("no %q in body: %s", key, w.Body.String())
	}
	return u
}

func followBody(follower, user string) string {
	return fmt.Sprintf(`{"follower":%q,"user":%q}`, follower, user)
}
