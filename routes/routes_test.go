package routes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	v1 "github.com/bugpredictor/api/v1"
	"github.com/bugpredictor/config"
	"github.com/bugpredictor/database"
	"github.com/bugpredictor/lib/severity"
	"github.com/bugpredictor/lib/storage"
	"github.com/bugpredictor/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type outbox struct {
	mu    sync.Mutex
	links []string
}

func (o *outbox) Send(_, _, _ string, data interface{}) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if d, ok := data.(map[string]string); ok {
		o.links = append(o.links, d["Link"])
	}
	return nil
}

func (o *outbox) lastToken() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.links) == 0 {
		return ""
	}
	u, err := url.Parse(o.links[len(o.links)-1])
	if err != nil {
		return ""
	}
	return u.Query().Get("token")
}

type envelope struct {
	Status  string            `json:"status"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
	Data    json.RawMessage   `json:"data"`
}

type APITestSuite struct {
	suite.Suite
	router     *gin.Engine
	classifier *httptest.Server
	mail       *outbox
	label      string
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := database.OpenInMemory()
	s.Require().NoError(err)
	database.DB = db

	s.label = "critical"
	s.classifier = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(s.label))
	}))

	cfg := &config.Config{
		Server: config.ServerConfig{BaseURL: "http://bugs.test", AllowedOrigins: []string{"*"}},
		Auth: config.AuthConfig{
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
			ResetTTL:  time.Hour,
			VerifyTTL: time.Hour,
		},
		Upload: config.UploadConfig{
			Dir:               s.T().TempDir(),
			MaxBytes:          1 << 20,
			AllowedExtensions: []string{".png", ".txt"},
		},
	}

	s.mail = &outbox{}
	files := storage.NewDisk(cfg.Upload.Dir)
	classifier := severity.NewClient(severity.Options{BaseURL: s.classifier.URL, Timeout: time.Second})

	s.router = SetupRouter(cfg, v1.Services{
		Auth:      services.NewAuthService(cfg.Auth, cfg.Server.BaseURL, s.mail),
		Members:   services.NewMemberService(s.mail, cfg.Server.BaseURL),
		Bugs:      services.NewBugService(classifier, files, s.mail, cfg.Server.BaseURL),
		Comments:  services.NewCommentService(),
		Media:     services.NewMediaService(files, cfg.Upload),
		Dashboard: services.NewDashboardService(),
		Projects:  services.NewProjectService(),
	})
}

func (s *APITestSuite) TearDownTest() {
	s.classifier.Close()
	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (s *APITestSuite) request(method, path, token string, body interface{}) (int, envelope) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(req)
}

func (s *APITestSuite) serve(req *http.Request) (int, envelope) {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

func (s *APITestSuite) decode(raw json.RawMessage, v interface{}) {
	s.Require().NoError(json.Unmarshal(raw, v))
}

// registerOwner runs the sign-up, verification and login flow and returns a session token
func (s *APITestSuite) registerOwner(username, project string) string {
	code, _ := s.request(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"projectName": project,
		"username":    username,
		"email":       username + "@example.com",
		"password1":   "owner-pass-1",
		"password2":   "owner-pass-1",
	})
	s.Require().Equal(http.StatusCreated, code)

	code, _ = s.request(http.MethodGet, "/api/v1/auth/verify?token="+s.mail.lastToken(), "", nil)
	s.Require().Equal(http.StatusOK, code)

	return s.login(username, "owner-pass-1")
}

func (s *APITestSuite) login(username, password string) string {
	code, env := s.request(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"login":    username,
		"password": password,
	})
	s.Require().Equal(http.StatusOK, code, env.Message)

	var auth struct {
		Token string `json:"token"`
	}
	s.decode(env.Data, &auth)
	return auth.Token
}

func (s *APITestSuite) addMember(ownerToken, username string) string {
	code, env := s.request(http.MethodPost, "/api/v1/members", ownerToken, map[string]string{
		"username":  username,
		"email":     username + "@example.com",
		"fullName":  "Member " + username,
		"password1": "member-pass-1",
		"password2": "member-pass-1",
	})
	s.Require().Equal(http.StatusCreated, code, env.Message)

	var member struct {
		ID string `json:"id"`
	}
	s.decode(env.Data, &member)
	return member.ID
}

func (s *APITestSuite) createBug(token, title, description string) map[string]interface{} {
	code, env := s.request(http.MethodPost, "/api/v1/bugs", token, map[string]string{
		"title":       title,
		"description": description,
	})
	s.Require().Equal(http.StatusCreated, code, env.Message)

	var bug map[string]interface{}
	s.decode(env.Data, &bug)
	return bug
}

func (s *APITestSuite) TestHealthCheck() {
	code, _ := s.request(http.MethodGet, "/api/v1/health", "", nil)
	s.Equal(http.StatusOK, code)
}

func (s *APITestSuite) TestProtectedRoutesRequireSession() {
	code, env := s.request(http.MethodGet, "/api/v1/bugs", "", nil)
	s.Equal(http.StatusUnauthorized, code)
	s.Equal("UNAUTHORIZED", env.Code)
}

func (s *APITestSuite) TestUnverifiedOwnerCannotLogin() {
	code, _ := s.request(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"projectName": "Apollo",
		"username":    "olga",
		"email":       "olga@example.com",
		"password1":   "owner-pass-1",
		"password2":   "owner-pass-1",
	})
	s.Require().Equal(http.StatusCreated, code)

	code, env := s.request(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"login":    "olga",
		"password": "owner-pass-1",
	})
	s.Equal(http.StatusForbidden, code)
	s.Equal("FORBIDDEN", env.Code)
}

func (s *APITestSuite) TestRegisterReportsFieldErrors() {
	code, env := s.request(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"projectName": "Apollo",
		"username":    "olga",
		"email":       "not-an-email",
		"password1":   "owner-pass-1",
		"password2":   "owner-pass-1",
	})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("VALIDATION", env.Code)
	s.Contains(env.Fields, "email")
}

func (s *APITestSuite) TestBugLifecycleAcrossProjects() {
	owner := s.registerOwner("olga", "Apollo")
	s.addMember(owner, "tim")
	member := s.login("tim", "member-pass-1")

	bug := s.createBug(member, "Crash on save", "The app crashes when saving a draft")
	s.Equal("CRITICAL", bug["severity"])
	s.Equal("NEW", bug["status"])
	bugID := bug["id"].(string)

	// The owner sees the member's bug
	code, env := s.request(http.MethodGet, "/api/v1/bugs", owner, nil)
	s.Require().Equal(http.StatusOK, code)
	var list struct {
		Bugs       []map[string]interface{} `json:"bugs"`
		TotalCount int64                    `json:"totalCount"`
	}
	s.decode(env.Data, &list)
	s.Equal(int64(1), list.TotalCount)

	// Another project's owner does not
	other := s.registerOwner("pete", "Hermes")
	code, env = s.request(http.MethodGet, "/api/v1/bugs/"+bugID, other, nil)
	s.Equal(http.StatusNotFound, code)
	s.Equal("NOT_FOUND", env.Code)

	code, env = s.request(http.MethodGet, "/api/v1/bugs", other, nil)
	s.Require().Equal(http.StatusOK, code)
	s.decode(env.Data, &list)
	s.Zero(list.TotalCount)

	// Title is read-only
	code, env = s.request(http.MethodPut, "/api/v1/bugs/"+bugID, member, map[string]string{"title": "Renamed"})
	s.Equal(http.StatusBadRequest, code)
	s.Contains(env.Fields, "title")

	// Turning prediction off forces NORMAL
	code, env = s.request(http.MethodPut, "/api/v1/bugs/"+bugID, member, map[string]interface{}{"isPredicted": false})
	s.Require().Equal(http.StatusOK, code, env.Message)
	var updated map[string]interface{}
	s.decode(env.Data, &updated)
	s.Equal("NORMAL", updated["severity"])

	code, _ = s.request(http.MethodPost, "/api/v1/bugs/"+bugID+"/comments", owner, map[string]string{"body": "Looking into **it**"})
	s.Equal(http.StatusCreated, code)

	code, env = s.request(http.MethodGet, "/api/v1/bugs/"+bugID, member, nil)
	s.Require().Equal(http.StatusOK, code)
	var detail struct {
		Comments []map[string]interface{} `json:"comments"`
	}
	s.decode(env.Data, &detail)
	s.Len(detail.Comments, 1)
}

func (s *APITestSuite) TestOnlyOwnerAssigns() {
	owner := s.registerOwner("olga", "Apollo")
	memberID := s.addMember(owner, "tim")
	member := s.login("tim", "member-pass-1")
	bugID := s.createBug(member, "Broken link", "Footer link is 404")["id"].(string)

	code, env := s.request(http.MethodPut, "/api/v1/bugs/"+bugID, member, map[string]string{"assignedToId": memberID})
	s.Equal(http.StatusForbidden, code)
	s.Equal("FORBIDDEN", env.Code)

	code, env = s.request(http.MethodPut, "/api/v1/bugs/"+bugID, owner, map[string]string{"assignedToId": memberID})
	s.Require().Equal(http.StatusOK, code, env.Message)
	var bug struct {
		AssignedTo struct {
			ID string `json:"id"`
		} `json:"assignedTo"`
	}
	s.decode(env.Data, &bug)
	s.Equal(memberID, bug.AssignedTo.ID)
}

func (s *APITestSuite) TestMemberManagementIsOwnerOnly() {
	owner := s.registerOwner("olga", "Apollo")
	s.addMember(owner, "tim")
	member := s.login("tim", "member-pass-1")

	code, _ := s.request(http.MethodPost, "/api/v1/members", member, map[string]string{
		"username":  "eve",
		"email":     "eve@example.com",
		"password1": "member-pass-1",
		"password2": "member-pass-1",
	})
	s.Equal(http.StatusForbidden, code)

	code, env := s.request(http.MethodGet, "/api/v1/members", member, nil)
	s.Require().Equal(http.StatusOK, code)
	var page struct {
		Members    []map[string]interface{} `json:"members"`
		TotalCount int64                    `json:"totalCount"`
	}
	s.decode(env.Data, &page)
	s.Equal(int64(1), page.TotalCount)
}

func (s *APITestSuite) TestAdminRoutesNeedSuperuser() {
	owner := s.registerOwner("olga", "Apollo")
	code, _ := s.request(http.MethodGet, "/api/v1/admin/projects", owner, nil)
	s.Equal(http.StatusForbidden, code)
}

func (s *APITestSuite) TestMediaUpload() {
	owner := s.registerOwner("olga", "Apollo")
	bugID := s.createBug(owner, "Glitch", "Screen flickers")["id"].(string)

	upload := func(name string, content []byte) (int, envelope) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", name)
		s.Require().NoError(err)
		_, err = part.Write(content)
		s.Require().NoError(err)
		s.Require().NoError(mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/bugs/"+bugID+"/media", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+owner)
		return s.serve(req)
	}

	code, env := upload("payload.exe", []byte("MZ"))
	s.Equal(http.StatusBadRequest, code)
	s.Equal("VALIDATION", env.Code)
	s.Contains(env.Fields, "file")

	code, env = upload("steps.txt", []byte("1. open the app"))
	s.Require().Equal(http.StatusCreated, code, env.Message)
	var media struct {
		ID string `json:"id"`
	}
	s.decode(env.Data, &media)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bugs/"+bugID+"/media/"+media.ID, nil)
	req.Header.Set("Authorization", "Bearer "+owner)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("1. open the app", w.Body.String())
}

func (s *APITestSuite) TestDashboard() {
	owner := s.registerOwner("olga", "Apollo")
	s.createBug(owner, "One", "first")
	s.createBug(owner, "Two", "second")

	code, env := s.request(http.MethodGet, "/api/v1/dashboard", owner, nil)
	s.Require().Equal(http.StatusOK, code)
	var dash struct {
		TotalBugs int64 `json:"totalBugs"`
	}
	s.decode(env.Data, &dash)
	s.Equal(int64(2), dash.TotalBugs)
}

func TestCorsConfig(t *testing.T) {
	all := corsConfig([]string{"*"})
	assert.True(t, all.AllowAllOrigins)
	assert.False(t, all.AllowCredentials)

	listed := corsConfig([]string{"https://app.example.com"})
	assert.False(t, listed.AllowAllOrigins)
	assert.True(t, listed.AllowCredentials)
	assert.Equal(t, []string{"https://app.example.com"}, listed.AllowOrigins)
}
