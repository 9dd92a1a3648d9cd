package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/frahmantamala/study-tracker/cmd"
	"github.com/frahmantamala/study-tracker/internal"
	approvalDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/approval"
	catalogDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/catalog"
	passwordresetDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/passwordreset"
	planDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/plan"
	userDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/study-tracker/internal/notification"
	"github.com/frahmantamala/study-tracker/internal/transport/swagger"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestStudyTracker(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "StudyTracker Suite")
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (m *recordingMailer) Send(_ context.Context, msg notification.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) kinds(to string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, msg := range m.sent {
		if msg.To == to {
			out = append(out, msg.Kind)
		}
	}
	return out
}

func (m *recordingMailer) last(to, kind string) (notification.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To == to && m.sent[i].Kind == kind {
			return m.sent[i], true
		}
	}
	return notification.Message{}, false
}

var resetTokenPattern = regexp.MustCompile(`token=([A-Za-z0-9_%\-]+)`)

var _ = Describe("Study tracker API", func() {
	var (
		app    *cmd.App
		srv    *httptest.Server
		mailer *recordingMailer
		mr     *miniredis.Miniredis
		rdb    *redis.Client
		sqlDB  *sqlx.DB
	)

	BeforeEach(func() {
		var err error

		dsn := filepath.Join(GinkgoT().TempDir(), "study.db") + "?_busy_timeout=5000&_journal_mode=WAL"
		sqlDB, err = sqlx.Open("sqlite3", dsn)
		Expect(err).NotTo(HaveOccurred())

		gormDB, err := gorm.Open(sqlite.Dialector{Conn: sqlDB.DB}, &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(gormDB.AutoMigrate(
			&userDatamodel.User{},
			&userDatamodel.Permission{},
			&userDatamodel.UserPermission{},
			&approvalDatamodel.ApprovalRequest{},
			&passwordresetDatamodel.Token{},
			&passwordresetDatamodel.RequestLog{},
			&planDatamodel.DailyPlan{},
			&catalogDatamodel.Category{},
			&catalogDatamodel.Pattern{},
			&catalogDatamodel.Problem{},
			&catalogDatamodel.Progress{},
		)).To(Succeed())

		mr = miniredis.RunT(GinkgoT())
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})

		mailer = &recordingMailer{}
		cfg := &internal.Config{
			Env: "test",
			Server: internal.ServerConfig{
				AllowedOrigins:     "*",
				AuthThrottleRate:   1000,
				AuthThrottleWindow: time.Minute,
				OpenAPIPath:        "./api/openapi.yml",
			},
			Security: internal.SecurityConfig{
				SessionSecret: strings.Repeat("s", 40),
				SessionMaxAge: time.Hour,
				BCryptCost:    4,
			},
			Admin: internal.AdminConfig{Emails: []string{"admin@example.com"}},
			Mail: internal.MailConfig{
				AppName:   "DSA Tracker",
				Timeout:   time.Second,
				Workers:   1,
				QueueSize: 20,
			},
			App: internal.AppConfig{
				BaseURL:  "http://localhost:3000",
				Timezone: "Asia/Kolkata",
			},
			PasswordReset: internal.PasswordResetConfig{
				TokenTTL:    time.Hour,
				Window:      24 * time.Hour,
				MaxRequests: 3,
			},
		}

		app, err = cmd.NewApp(cmd.AppDeps{
			Config: cfg,
			DB:     gormDB,
			SQL:    sqlDB,
			Redis:  rdb,
			Mailer: mailer,
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
		Expect(err).NotTo(HaveOccurred())

		srv = httptest.NewServer(app.Handler)
	})

	AfterEach(func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(app.Close(ctx)).To(Succeed())
		Expect(rdb.Close()).To(Succeed())
		Expect(sqlDB.Close()).To(Succeed())
	})

	call := func(method, path, token string, body interface{}) (int, map[string]interface{}) {
		var reader io.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(raw)
		}
		req, err := http.NewRequest(method, srv.URL+"/api/v1"+path, reader)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		out := map[string]interface{}{}
		raw, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		if len(raw) > 0 {
			Expect(json.Unmarshal(raw, &out)).To(Succeed(), string(raw))
		}
		return resp.StatusCode, out
	}

	login := func(email, password string) string {
		status, body := call(http.MethodPost, "/login", "", map[string]string{"email": email, "password": password})
		Expect(status).To(Equal(http.StatusOK), "%v", body)
		return body["token"].(string)
	}

	pendingFor := func(adminToken, email string) map[string]interface{} {
		status, body := call(http.MethodGet, "/admin/approvals", adminToken, nil)
		Expect(status).To(Equal(http.StatusOK))
		for _, item := range body["approvals"].([]interface{}) {
			req := item.(map[string]interface{})
			if req["email"] == email {
				return req
			}
		}
		Fail("no approval request for " + email)
		return nil
	}

	signupAdmin := func() string {
		status, body := call(http.MethodPost, "/signup", "", map[string]string{
			"email": "admin@example.com", "username": "admin", "password": "adminpass",
		})
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body["status"]).To(Equal("approved"))
		return login("admin@example.com", "adminpass")
	}

	It("should walk an account from signup through approval to planning", func() {
		adminToken := signupAdmin()

		status, body := call(http.MethodPost, "/signup", "", map[string]string{
			"email": "Ana@Example.com", "username": "ana", "password": "secret123",
		})
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body["status"]).To(Equal("pending"))

		status, body = call(http.MethodPost, "/login", "", map[string]string{"email": "ana@example.com", "password": "secret123"})
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body["code"]).To(Equal("PENDING_APPROVAL"))

		pending := pendingFor(adminToken, "ana@example.com")
		Expect(pending["status"]).To(Equal("pending"))
		Expect(pending["username"]).To(Equal("ana"))

		status, body = call(http.MethodPatch, "/admin/approvals", adminToken, map[string]interface{}{
			"id": pending["id"], "status": "approved",
		})
		Expect(status).To(Equal(http.StatusOK), "%v", body)
		Expect(body["approval"].(map[string]interface{})["status"]).To(Equal("approved"))

		Eventually(func() []string { return mailer.kinds("ana@example.com") }).
			Should(ContainElement(notification.KindApproval))

		token := login("ana@example.com", "secret123")

		status, body = call(http.MethodGet, "/user/status", token, nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["status"]).To(Equal("approved"))

		status, body = call(http.MethodPost, "/plans", token, map[string]string{
			"problem_title": "Two Sum", "topic": "Arrays", "difficulty": "Easy",
		})
		Expect(status).To(Equal(http.StatusCreated), "%v", body)
		Expect(body["status"]).To(Equal("PLANNED"))
		Expect(body["platform"]).To(Equal("LeetCode"))
		planID := int64(body["id"].(float64))

		status, body = call(http.MethodGet, "/plans/counts", token, nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["today"]).To(BeEquivalentTo(1))
		Expect(body["tomorrow"]).To(BeEquivalentTo(0))

		status, body = call(http.MethodPatch, "/plans/"+itoa(planID)+"/skip", token, nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["status"]).To(Equal("SKIPPED"))

		status, body = call(http.MethodGet, "/plans?day=tomorrow", token, nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["plans"]).To(HaveLen(1))

		status, body = call(http.MethodPatch, "/plans/"+itoa(planID)+"/done", token, nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["status"]).To(Equal("DONE"))

		status, body = call(http.MethodGet, "/plans/history", token, nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["plans"]).To(HaveLen(1))

		status, _ = call(http.MethodPatch, "/plans/"+itoa(planID)+"/done", adminToken, nil)
		Expect(status).To(Equal(http.StatusNotFound))

		status, _ = call(http.MethodPost, "/logout", token, nil)
		Expect(status).To(Equal(http.StatusOK))

		status, body = call(http.MethodGet, "/user/status", token, nil)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body["code"]).To(Equal("SESSION_REVOKED"))
	})

	It("should keep rejected accounts out", func() {
		adminToken := signupAdmin()

		status, _ := call(http.MethodPost, "/signup", "", map[string]string{
			"email": "bob@example.com", "username": "bob", "password": "secret123",
		})
		Expect(status).To(Equal(http.StatusCreated))

		pending := pendingFor(adminToken, "bob@example.com")

		status, _ = call(http.MethodPatch, "/admin/approvals", adminToken, map[string]interface{}{
			"id": pending["id"], "status": "rejected", "notes": "unknown user",
		})
		Expect(status).To(Equal(http.StatusOK))

		status, body := call(http.MethodPost, "/login", "", map[string]string{"email": "bob@example.com", "password": "secret123"})
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body["code"]).To(Equal("ACCOUNT_REJECTED"))

		status, body = call(http.MethodPost, "/signup", "", map[string]string{
			"email": "bob@example.com", "username": "bob", "password": "secret123",
		})
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body["code"]).To(Equal("ACCOUNT_REJECTED"))
	})

	It("should keep the admin endpoints behind the admin permission", func() {
		adminToken := signupAdmin()

		status, _ := call(http.MethodGet, "/admin/approvals", "", nil)
		Expect(status).To(Equal(http.StatusUnauthorized))

		call(http.MethodPost, "/signup", "", map[string]string{
			"email": "cara@example.com", "username": "cara", "password": "secret123",
		})
		pending := pendingFor(adminToken, "cara@example.com")
		status, _ = call(http.MethodPatch, "/admin/approvals", adminToken, map[string]interface{}{
			"id": pending["id"], "status": "approved",
		})
		Expect(status).To(Equal(http.StatusOK))

		token := login("cara@example.com", "secret123")
		status, _ = call(http.MethodGet, "/admin/approvals", token, nil)
		Expect(status).To(Equal(http.StatusForbidden))

		status, body := call(http.MethodPatch, "/admin/approvals", adminToken, map[string]interface{}{
			"id": pending["id"], "status": "rejected",
		})
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body["code"]).To(Equal("ALREADY_REVIEWED"))
	})

	It("should reset a password through the emailed link", func() {
		signupAdmin()

		status, body := call(http.MethodPost, "/forgot-password", "", map[string]string{"email": "admin@example.com"})
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["success"]).To(BeTrue())

		status, unknown := call(http.MethodPost, "/forgot-password", "", map[string]string{"email": "nobody@example.com"})
		Expect(status).To(Equal(http.StatusOK))
		Expect(unknown["message"]).To(Equal(body["message"]))

		var msg notification.Message
		Eventually(func() bool {
			var ok bool
			msg, ok = mailer.last("admin@example.com", notification.KindReset)
			return ok
		}).Should(BeTrue())

		match := resetTokenPattern.FindStringSubmatch(msg.HTML)
		Expect(match).To(HaveLen(2))

		status, body = call(http.MethodPost, "/reset-password", "", map[string]string{"token": match[1], "password": "newpass1"})
		Expect(status).To(Equal(http.StatusOK), "%v", body)

		status, _ = call(http.MethodPost, "/login", "", map[string]string{"email": "admin@example.com", "password": "adminpass"})
		Expect(status).To(Equal(http.StatusUnauthorized))
		login("admin@example.com", "newpass1")

		status, body = call(http.MethodPost, "/reset-password", "", map[string]string{"token": match[1], "password": "another1"})
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body["code"]).To(Equal("RESET_TOKEN_USED"))
	})

	It("should report component health", func() {
		status, body := call(http.MethodGet, "/health", "", nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["components"]).To(HaveKey("postgres"))
		Expect(body["components"]).To(HaveKey("redis"))

		mr.Close()
		status, _ = call(http.MethodGet, "/health", "", nil)
		Expect(status).To(Equal(http.StatusServiceUnavailable))
	})

	It("should serve a valid OpenAPI document", func() {
		_, err := swagger.LoadSpec(context.Background(), "./api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())

		resp, err := http.Get(srv.URL + swagger.SpecURL)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})
})

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
