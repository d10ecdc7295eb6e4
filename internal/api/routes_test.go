package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/File-Sharing-BondBridg/Video-Service/cmd/middleware"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/api/handlers"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/logger"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/ratelimit"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/auth"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/command"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/downloader"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/services/query"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/storage"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const legacySecret = "legacy-shared-secret"

// ytdlp answers metadata and download calls the way the real tool does.
type ytdlp struct{}

func (ytdlp) Run(_ context.Context, args ...string) (string, string, error) {
	switch args[0] {
	case "--dump-json":
		return `{"id":"dQw4w9WgXcQ","title":"Never Gonna Give You Up","duration":212}`, "", nil
	case "-F":
		return "ID EXT\n18 mp4 640x360\n", "", nil
	default:
		out := strings.Replace(args[3], "%(ext)s", "mp4", 1)
		return "", "", os.WriteFile(out, []byte("mp4"), 0o644)
	}
}

type server struct {
	store  *testutil.MemStore
	auth   *auth.Service
	router *gin.Engine
}

func newServer(t *testing.T) *server {
	t.Helper()
	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	store := testutil.NewMemStore()
	quiet := logger.Discard()
	authSvc := auth.NewService(store, auth.WithBcryptCost(bcrypt.MinCost), auth.WithLogger(quiet))
	files := command.NewFiles(store, local, command.WithLogger(quiet))

	h := &handlers.Handler{
		Auth:       authSvc,
		Downloader: downloader.NewService(ytdlp{}, local, files, downloader.Config{}, downloader.WithLogger(quiet)),
		FileQuery:  query.NewFiles(store),
		FileCmd:    files,
		Local:      local,
		Logger:     quiet,
	}

	r := gin.New()
	RegisterRoutes(r, h, middleware.NewGate(authSvc, legacySecret, quiet), ratelimit.NewMemoryLimiter(), quiet)

	ctx := context.Background()
	_, err = authSvc.CreateUser(ctx, "admin", "adminpass1", models.RoleAdmin)
	require.NoError(t, err)
	_, err = authSvc.CreateUser(ctx, "alice", "alicepass1", models.RoleUser)
	require.NoError(t, err)

	return &server{store: store, auth: authSvc, router: r}
}

func (s *server) call(method, target string, headers map[string]string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (s *server) login(t *testing.T, username, password string) map[string]string {
	t.Helper()
	w, body := s.call(http.MethodPost, "/auth/login", nil, gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := body["session_token"].(string)
	require.NotEmpty(t, token)
	return map[string]string{middleware.SessionHeader: token}
}

func TestAdminFlow(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin", "adminpass1")

	w, body := s.call(http.MethodGet, "/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["count"])
	names := []string{}
	for _, u := range body["users"].([]any) {
		names = append(names, u.(map[string]any)["username"].(string))
		assert.NotContains(t, u, "password_hash")
	}
	assert.Contains(t, names, "admin")

	w, _ = s.call(http.MethodGet, "/list-files", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	alice := s.login(t, "alice", "alicepass1")
	w, body = s.call(http.MethodGet, "/admin/users", alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", body["error"])
}

func TestLogin(t *testing.T) {
	s := newServer(t)

	w, body := s.call(http.MethodPost, "/auth/login", nil, gin.H{"username": "alice", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password", body["error"])

	w, unknown := s.call(http.MethodPost, "/auth/login", nil, gin.H{"username": "nobody", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, body, unknown)

	w, body = s.call(http.MethodPost, "/auth/login", nil, gin.H{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username and password are required", body["error"])

	w, body = s.call(http.MethodPost, "/auth/login", nil, gin.H{"username": "alice", "password": "alicepass1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "user", user["role"])
}

func TestVerifyAndLogout(t *testing.T) {
	s := newServer(t)
	alice := s.login(t, "alice", "alicepass1")

	w, body := s.call(http.MethodGet, "/auth/verify", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", body["user"].(map[string]any)["username"])

	w, _ = s.call(http.MethodPost, "/auth/logout", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, body = s.call(http.MethodGet, "/auth/verify", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired session", body["error"])
}

func TestUserAPIKeys(t *testing.T) {
	s := newServer(t)
	alice := s.login(t, "alice", "alicepass1")

	w, body := s.call(http.MethodGet, "/user/api-key-status", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["has_api_key"])

	w, body = s.call(http.MethodPost, "/user/api-keys/create", alice, gin.H{"description": "ci"})
	require.Equal(t, http.StatusOK, w.Code)
	key := body["api_key"].(string)
	assert.True(t, strings.HasPrefix(key, auth.APIKeyPrefix))

	w, body = s.call(http.MethodPost, "/user/api-keys/create", alice, gin.H{"expires_days": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "expires_days must not be negative", body["error"])

	w, body = s.call(http.MethodGet, "/user/api-keys", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])
	listed := body["api_keys"].([]any)[0].(map[string]any)
	assert.Equal(t, key[:8]+"..."+key[len(key)-4:], listed["api_key"])
	keyID := int(listed["id"].(float64))

	w, _ = s.call(http.MethodGet, "/list-files", map[string]string{middleware.APIKeyHeader: key}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// API keys do not open session-only routes.
	w, _ = s.call(http.MethodGet, "/user/api-keys", map[string]string{middleware.APIKeyHeader: key}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	admin := s.login(t, "admin", "adminpass1")
	w, body = s.call(http.MethodPost, "/user/api-keys/"+itoa(keyID)+"/revoke", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "API key not found or unauthorized", body["error"])

	w, _ = s.call(http.MethodPost, "/user/api-keys/"+itoa(keyID)+"/revoke", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.call(http.MethodGet, "/list-files", map[string]string{middleware.APIKeyHeader: key}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAPIKeysAndUsers(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin", "adminpass1")

	w, body := s.call(http.MethodPost, "/admin/api-keys/create", admin, gin.H{"username": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User ghost not found", body["error"])

	w, body = s.call(http.MethodPost, "/admin/api-keys/create", admin, gin.H{"username": "alice", "expires_days": 30})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "API key created for alice", body["message"])

	w, body = s.call(http.MethodGet, "/admin/api-keys", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := body["api_keys"].([]any)[0].(map[string]any)
	assert.Equal(t, "alice", listed["username"])
	assert.NotNil(t, listed["expires_at"])

	w, _ = s.call(http.MethodPost, "/admin/api-keys/"+itoa(int(listed["id"].(float64)))+"/revoke", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, body = s.call(http.MethodPost, "/admin/api-keys/99999/revoke", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "API key not found", body["error"])

	w, body = s.call(http.MethodPost, "/admin/users/create", admin, gin.H{"username": "bob", "password": "bobpass12"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User bob created successfully", body["message"])

	w, body = s.call(http.MethodPost, "/admin/users/create", admin, gin.H{"username": "bob", "password": "bobpass12"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Username bob already exists", body["error"])

	w, _ = s.call(http.MethodPost, "/admin/users/create", admin, gin.H{"username": "carol", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminDisableAndDeleteUser(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin", "adminpass1")
	alice := s.login(t, "alice", "alicepass1")

	u, err := s.auth.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)

	w, _ := s.call(http.MethodPost, "/admin/users/"+u.ID.String()+"/active", admin, gin.H{"is_active": false})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.call(http.MethodGet, "/auth/verify", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.call(http.MethodPost, "/admin/users/"+u.ID.String()+"/active", admin, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := s.call(http.MethodDelete, "/admin/users/"+u.ID.String(), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["files_removed"])

	w, _ = s.call(http.MethodDelete, "/admin/users/"+u.ID.String(), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.call(http.MethodDelete, "/admin/users/not-a-uuid", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadFlow(t *testing.T) {
	s := newServer(t)
	alice := s.login(t, "alice", "alicepass1")

	w, body := s.call(http.MethodPost, "/download", alice, gin.H{"url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "dQw4w9WgXcQ", body["video_id"])
	assert.EqualValues(t, 212, body["duration"])
	stored := body["file_path"].(string)
	assert.Equal(t, "/files/"+stored, body["download_path"])

	w, body = s.call(http.MethodGet, "/list-files", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	files := body["files"].([]any)
	require.Len(t, files, 1)
	assert.Equal(t, "Never_Gonna_Give_You_Up_dQw4w9WgXcQ.mp4", files[0].(map[string]any)["name"])

	w, _ = s.call(http.MethodGet, "/files/"+stored, alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = s.call(http.MethodPost, "/download", alice, gin.H{"url": "ftp://example.com/x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "URL must start with http:// or https://", body["error"])

	w, body = s.call(http.MethodPost, "/formats", alice, gin.H{"url": "https://e.com/v"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])
}

func TestLegacySecretDownload(t *testing.T) {
	s := newServer(t)
	legacy := map[string]string{middleware.APIKeyHeader: legacySecret}

	w, body := s.call(http.MethodPost, "/download", legacy, gin.H{"url": "https://e.com/v"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "00000000-0000-0000-0000-000000000000", body["user_id"])
	// The legacy identity has no user row, so the record is not kept.
	assert.Equal(t, 0, s.store.FileCount())

	w, _ = s.call(http.MethodGet, "/admin/users", legacy, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthAndCORS(t *testing.T) {
	s := newServer(t)

	w, body := s.call(http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, handlers.Version, body["version"])
	assert.Equal(t, "ok", body["database"])

	w, _ = s.call(http.MethodOptions, "/download", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), middleware.APIKeyHeader)

	w, body = s.call(http.MethodGet, "/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Endpoint not found", body["error"])
}

func TestDiskUsage(t *testing.T) {
	s := newServer(t)

	w, _ := s.call(http.MethodGet, "/disk-usage", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := s.call(http.MethodGet, "/disk-usage", s.login(t, "alice", "alicepass1"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Greater(t, body["total_space"], float64(0))
	assert.EqualValues(t, 0, body["download_dir_size"])
}

func TestLoginIsRateLimited(t *testing.T) {
	s := newServer(t)
	creds := gin.H{"username": "alice", "password": "wrong-password"}

	for i := 0; i < ratelimit.Login.Limit; i++ {
		w, _ := s.call(http.MethodPost, "/auth/login", nil, creds)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w, body := s.call(http.MethodPost, "/auth/login", nil, creds)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Rate limit exceeded", body["error"])
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
