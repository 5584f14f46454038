package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuadm/first-step-greet/internal/domain/assessment"
	"github.com/yuadm/first-step-greet/internal/domain/compliance"
	"github.com/yuadm/first-step-greet/internal/domain/dashboard"
	"github.com/yuadm/first-step-greet/internal/domain/master/branch"
	"github.com/yuadm/first-step-greet/internal/domain/user"
	"github.com/yuadm/first-step-greet/internal/handler/http/response"
	"github.com/yuadm/first-step-greet/internal/pkg/jwt"
	"github.com/yuadm/first-step-greet/internal/pkg/sse"
	authService "github.com/yuadm/first-step-greet/internal/service/auth"
	"github.com/yuadm/first-step-greet/internal/service/master"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type memoryUserRepo struct {
	users map[string]user.User
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

type memoryBranchRepo struct{}

func (memoryBranchRepo) GetByID(ctx context.Context, id string) (branch.Branch, error) {
	if id == "north" || id == "south" {
		return branch.Branch{ID: id, Name: strings.ToUpper(id), Timezone: "UTC"}, nil
	}
	return branch.Branch{}, branch.ErrBranchNotFound
}

func (memoryBranchRepo) List(ctx context.Context) ([]branch.Branch, error) {
	return []branch.Branch{{ID: "north", Name: "NORTH"}, {ID: "south", Name: "SOUTH"}}, nil
}

// stubCompliance records the requests the handlers pass through.
type stubCompliance struct {
	compliance.Service
	lastStatus   compliance.PeriodStatusRequest
	lastUpsert   compliance.UpsertRecordRequest
	lastEvidence string
}

func (s *stubCompliance) ListTypes(ctx context.Context, activeOnly bool) ([]compliance.TypeResponse, error) {
	return []compliance.TypeResponse{{ID: "t1", Name: "Supervision", Frequency: "quarterly"}}, nil
}

func (s *stubCompliance) CreateType(ctx context.Context, req compliance.CreateTypeRequest) (compliance.TypeResponse, error) {
	if err := req.Validate(); err != nil {
		return compliance.TypeResponse{}, err
	}
	return compliance.TypeResponse{ID: "t2", Name: req.Name, Frequency: req.Frequency}, nil
}

func (s *stubCompliance) GetPeriodStatus(ctx context.Context, req compliance.PeriodStatusRequest) (compliance.PeriodStatusResponse, error) {
	s.lastStatus = req
	if req.TypeID == "missing" {
		return compliance.PeriodStatusResponse{}, compliance.ErrTypeNotFound
	}
	return compliance.PeriodStatusResponse{PeriodIdentifier: req.PeriodIdentifier}, nil
}

func (s *stubCompliance) ExportPeriodStatus(ctx context.Context, req compliance.PeriodStatusRequest, w io.Writer) (string, error) {
	_, err := w.Write([]byte("PK-xlsx"))
	return "compliance-supervision-2025-Q1.xlsx", err
}

func (s *stubCompliance) UpsertRecord(ctx context.Context, req compliance.UpsertRecordRequest) (compliance.RecordResponse, error) {
	s.lastUpsert = req
	return compliance.RecordResponse{ID: "r1", ComplianceTypeID: req.TypeID, Status: "completed"}, nil
}

func (s *stubCompliance) AttachEvidence(ctx context.Context, typeID, recordID string, file io.Reader, filename string) (compliance.RecordResponse, error) {
	s.lastEvidence = filename
	path := "evidence/" + filename
	return compliance.RecordResponse{ID: recordID, EvidencePath: &path}, nil
}

type stubDashboard struct {
	lastBranch *string
}

func (s *stubDashboard) GetComplianceOverview(ctx context.Context, branchID *string) (*dashboard.ComplianceOverviewResponse, error) {
	s.lastBranch = branchID
	return &dashboard.ComplianceOverviewResponse{}, nil
}

func (s *stubDashboard) GetTypeSummary(ctx context.Context, typeID string, branchID *string) (*dashboard.TypeSummaryResponse, error) {
	return &dashboard.TypeSummaryResponse{ComplianceTypeID: typeID}, nil
}

type stubAssessment struct {
	assessment.AssessmentService
}

func (stubAssessment) GetDraft(ctx context.Context, ownerID string, kind assessment.FormKind) (assessment.DraftResponse, error) {
	return assessment.DraftResponse{FormKey: kind.DraftKey(), CurrentStep: 1}, nil
}

func (stubAssessment) Submit(ctx context.Context, ownerID string, req assessment.SubmitRequest) (assessment.SubmitResponse, error) {
	if req.Kind == assessment.FormJobApplication {
		return assessment.SubmitResponse{
			Form:        req.Kind,
			Application: &assessment.ApplicationResponse{ID: "app-1", Status: assessment.ApplicationStatusReceived, SubmittedBy: ownerID},
		}, nil
	}
	return assessment.SubmitResponse{}, assessment.ErrFormIncomplete
}

type testServer struct {
	router     http.Handler
	jwt        *jwt.JWTService
	hub        *sse.Hub
	compliance *stubCompliance
	dashboard  *stubDashboard
	users      *memoryUserRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	hash, err := authService.HashPassword("correct-horse")
	require.NoError(t, err)
	north := "north"

	users := &memoryUserRepo{users: map[string]user.User{
		"admin":   {ID: "admin", Email: "admin@example.com", PasswordHash: &hash, Role: user.RoleAdmin, IsActive: true},
		"manager": {ID: "manager", Email: "manager@example.com", PasswordHash: &hash, Role: user.RoleManager, BranchID: &north, IsActive: true},
		"staff":   {ID: "staff", Email: "staff@example.com", PasswordHash: &hash, Role: user.RoleStaff, BranchID: &north, IsActive: true},
	}}

	jwtService := jwt.NewJWTService(handlerTestSecret, time.Hour)
	hub := sse.NewHub()
	complianceStub := &stubCompliance{}
	dashboardStub := &stubDashboard{}

	router := NewRouter(RouterOptions{LoginRateLimit: 3}, jwtService, Handlers{
		Auth:       NewAuthHandler(authService.NewAuthService(users, jwtService)),
		Compliance: NewComplianceHandler(complianceStub),
		Dashboard:  NewDashboardHandler(dashboardStub),
		Assessment: NewAssessmentHandler(stubAssessment{}),
		Master:     NewMasterHandler(master.NewMasterService(memoryBranchRepo{})),
		Events:     NewEventsHandler(hub, jwtService, users),
	})

	return &testServer{
		router:     router,
		jwt:        jwtService,
		hub:        hub,
		compliance: complianceStub,
		dashboard:  dashboardStub,
		users:      users,
	}
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(s.users.users[userID])
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/compliance/types", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_PermissionsByRole(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/compliance/types", s.token(t, "staff"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/compliance/types", s.token(t, "manager"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.NotNil(t, body.Meta)
	assert.Equal(t, int64(1), body.Meta.TotalItems)

	rec = s.do(t, http.MethodPost, "/api/v1/compliance/types", s.token(t, "manager"),
		strings.NewReader(`{"name":"Fire drill","frequency":"annual","target_table":"employees"}`))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestComplianceHandler_CreateType(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "admin")

	rec := s.do(t, http.MethodPost, "/api/v1/compliance/types", admin,
		strings.NewReader(`{"name":"Fire drill","frequency":"Bi-Annual","target_table":"employees"}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, decodeBody(t, rec).Success)

	rec = s.do(t, http.MethodPost, "/api/v1/compliance/types", admin,
		strings.NewReader(`{"name":"","frequency":"fortnightly","target_table":"vehicles"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body.Error.Details, "frequency")
	assert.Contains(t, body.Error.Details, "target_table")

	rec = s.do(t, http.MethodPost, "/api/v1/compliance/types", admin, strings.NewReader(`{`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComplianceHandler_StatusBranchScope(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/compliance/types/t1/status?period=2025-Q1", s.token(t, "manager"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s.compliance.lastStatus.BranchID)
	assert.Equal(t, "north", *s.compliance.lastStatus.BranchID)
	assert.Equal(t, "t1", s.compliance.lastStatus.TypeID)
	assert.Equal(t, "2025-Q1", s.compliance.lastStatus.PeriodIdentifier)

	rec = s.do(t, http.MethodGet, "/api/v1/compliance/types/t1/status?branch_id=south", s.token(t, "manager"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/compliance/types/t1/status", s.token(t, "admin"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, s.compliance.lastStatus.BranchID)

	rec = s.do(t, http.MethodGet, "/api/v1/compliance/types/missing/status", s.token(t, "admin"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComplianceHandler_Export(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/compliance/types/t1/status/export?period=2025-Q1", s.token(t, "manager"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "compliance-supervision-2025-Q1.xlsx")
	assert.Equal(t, "PK-xlsx", rec.Body.String())
}

func TestComplianceHandler_UpsertRecordSetsCompletedBy(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPut, "/api/v1/compliance/types/t1/records", s.token(t, "manager"),
		strings.NewReader(`{"entity_id":"e1","period_identifier":"2025-Q1","completion_date":"2025-02-03"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t1", s.compliance.lastUpsert.TypeID)
	require.NotNil(t, s.compliance.lastUpsert.CompletedBy)
	assert.Equal(t, "manager", *s.compliance.lastUpsert.CompletedBy)
}

func TestComplianceHandler_AttachEvidence(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "signed.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compliance/types/t1/records/r1/evidence", &buf)
	req.Header.Set("Authorization", "Bearer "+s.token(t, "manager"))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "signed.pdf", s.compliance.lastEvidence)
}

func TestDashboardHandler_ScopesManagers(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/dashboard/compliance", s.token(t, "manager"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s.dashboard.lastBranch)
	assert.Equal(t, "north", *s.dashboard.lastBranch)

	rec = s.do(t, http.MethodGet, "/api/v1/dashboard/compliance", s.token(t, "staff"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAssessmentHandler(t *testing.T) {
	s := newTestServer(t)
	staff := s.token(t, "staff")

	rec := s.do(t, http.MethodGet, "/api/v1/forms/spot-check/draft", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/forms/timesheet/draft", staff, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/forms/competency-assessment/submit", staff, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/forms/job-application/submit", staff, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var submitted struct {
		Data assessment.SubmitResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	assert.Equal(t, assessment.FormJobApplication, submitted.Data.Form)
	require.NotNil(t, submitted.Data.Application)
	assert.Equal(t, "staff", submitted.Data.Application.SubmittedBy)
	assert.Nil(t, submitted.Data.Record)
}

func TestMasterHandler_ListBranches(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/branches", s.token(t, "manager"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []branch.BranchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "north", body.Data[0].ID)

	rec = s.do(t, http.MethodGet, "/api/v1/branches/south", s.token(t, "manager"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthHandler_LoginAndLogout(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "",
		strings.NewReader(`{"email":"manager@example.com","password":"correct-horse"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	token := body.Data.AccessToken
	require.NotEmpty(t, token)

	rec = s.do(t, http.MethodGet, "/api/v1/compliance/types", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/compliance/types", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_LoginRateLimited(t *testing.T) {
	s := newTestServer(t)

	var last int
	for i := 0; i < 4; i++ {
		rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "",
			strings.NewReader(`{"email":"manager@example.com","password":"wrong"}`))
		last = rec.Code
		if i < 3 {
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		}
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestEventsHandler_StreamsSummariesToAdmins(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	sseToken, _, err := s.jwt.GenerateSSEToken("admin")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events?token="+sseToken, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	s.hub.Publish(dashboard.TopicComplianceSummary, sse.Event{
		Event: dashboard.TopicComplianceSummary,
		Data:  dashboard.TypeSummaryResponse{ComplianceTypeID: "t1"},
	})

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: "+dashboard.TopicComplianceSummary) {
			break
		}
	}
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"compliance_type_id":"t1"`)
}

func TestEventsHandler_RejectsBadTokens(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/events", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	access := s.token(t, "admin")
	rec = s.do(t, http.MethodGet, "/api/v1/events?token="+access, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	sseToken, _, err := s.jwt.GenerateSSEToken("staff")
	require.NoError(t, err)
	rec = s.do(t, http.MethodGet, "/api/v1/events?token="+sseToken, "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

