package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/study-tracker/internal"
	"github.com/frahmantamala/study-tracker/internal/approval"
	coreuser "github.com/frahmantamala/study-tracker/internal/core/user"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type mockAuthService struct {
	signupResult *SignupResult
	loginResult  *LoginResult
	principal    *coreuser.User
	err          error
	loggedOut    *coreuser.User
}

func (m *mockAuthService) Signup(context.Context, SignupDTO) (*SignupResult, error) {
	return m.signupResult, m.err
}

func (m *mockAuthService) Login(context.Context, LoginDTO) (*LoginResult, error) {
	return m.loginResult, m.err
}

func (m *mockAuthService) ValidateSession(context.Context, string) (*coreuser.User, error) {
	return m.principal, m.err
}

func (m *mockAuthService) Logout(_ context.Context, p *coreuser.User) error {
	m.loggedOut = p
	return m.err
}

func decodeBody(rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
	return body
}

var _ = ginkgo.Describe("Handler", func() {
	var (
		svc     *mockAuthService
		handler *Handler
		rec     *httptest.ResponseRecorder
	)

	ginkgo.BeforeEach(func() {
		svc = &mockAuthService{}
		handler = NewHandler(svc)
		rec = httptest.NewRecorder()
	})

	ginkgo.It("should answer a successful signup with 201 and the status", func() {
		svc.signupResult = &SignupResult{Success: true, Status: approval.StatusPending}
		req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"email":"a@b.c","username":"a","password":"p"}`))

		handler.Signup(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
		body := decodeBody(rec)
		gomega.Expect(body["success"]).To(gomega.BeTrue())
		gomega.Expect(body["status"]).To(gomega.Equal("pending"))
	})

	ginkgo.It("should answer a pending login with 403 PENDING_APPROVAL", func() {
		svc.err = internal.ErrAccountPending
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.c","password":"p"}`))

		handler.Login(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		body := decodeBody(rec)
		gomega.Expect(body["code"]).To(gomega.Equal("PENDING_APPROVAL"))
	})

	ginkgo.It("should reject malformed JSON with 400", func() {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{`))

		handler.Login(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var reached *coreuser.User

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached, _ = coreuser.FromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		})

		ginkgo.BeforeEach(func() { reached = nil })

		ginkgo.It("should return 401 without a bearer token", func() {
			req := httptest.NewRequest(http.MethodGet, "/user/status", nil)

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(reached).To(gomega.BeNil())
		})

		ginkgo.It("should return 401 for a revoked session", func() {
			svc.err = internal.ErrSessionRevoked
			req := httptest.NewRequest(http.MethodGet, "/user/status", nil)
			req.Header.Set("Authorization", "Bearer abc")

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should put the principal in the request context", func() {
			svc.principal = &coreuser.User{ID: 3, Email: "a@b.c"}
			req := httptest.NewRequest(http.MethodGet, "/user/status", nil)
			req.Header.Set("Authorization", "Bearer abc")

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(reached).ToNot(gomega.BeNil())
			gomega.Expect(reached.ID).To(gomega.Equal(int64(3)))
		})
	})

	ginkgo.It("should revoke the caller's session on logout", func() {
		principal := &coreuser.User{ID: 3, SessionID: "jti"}
		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req = req.WithContext(coreuser.WithUser(req.Context(), principal))

		handler.Logout(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(svc.loggedOut).To(gomega.Equal(principal))
	})
})
