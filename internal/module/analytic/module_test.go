package analytic

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/domain"
	"github.com/openhelpdesk/helpdesk/internal/identity"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAnalyticDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Agency{}, &domain.User{}, &domain.Analytic{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func asActor(a *identity.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity.Set(c, a)
		c.Next()
	}
}

func newAnalyticRouter(db *gorm.DB, a *identity.Actor) *gin.Engine {
	router := gin.New()
	api := router.Group("/api/v1")
	NewModule(db, asActor(a)).RegisterRoutes(api)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type analyticFixture struct {
	agencyA uuid.UUID
	agencyB uuid.UUID
	agentA  uuid.UUID // works for agency A
	agentB  uuid.UUID // works for agency B
}

func seedAgents(t *testing.T, db *gorm.DB) analyticFixture {
	t.Helper()
	a := &domain.Agency{Name: "Acme"}
	b := &domain.Agency{Name: "Globex"}
	for _, ag := range []*domain.Agency{a, b} {
		if err := db.Create(ag).Error; err != nil {
			t.Fatalf("seed agency: %v", err)
		}
	}
	ua := &domain.User{Name: "Abel", Email: "abel@example.com", PasswordHash: "x", Role: domain.RoleAgent, AgencyID: &a.ID, Version: 1}
	ub := &domain.User{Name: "Bree", Email: "bree@example.com", PasswordHash: "x", Role: domain.RoleAgent, AgencyID: &b.ID, Version: 1}
	for _, u := range []*domain.User{ua, ub} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	return analyticFixture{agencyA: a.ID, agencyB: b.ID, agentA: ua.ID, agentB: ub.ID}
}

type analyticEnvelope struct {
	Data Response `json:"data"`
}

func TestAnalyticCreate_RecordsSnapshot(t *testing.T) {
	db := setupAnalyticDB(t)
	fx := seedAgents(t, db)

	admin := &identity.Actor{UserID: uuid.New(), Roles: []string{domain.RoleAdmin}}
	router := newAnalyticRouter(db, admin)

	body := fmt.Sprintf(`{"agent_id":%q,"agency_id":%q,"tickets_resolved":12,"customer_satisfaction_score":4.5}`,
		fx.agentA, fx.agencyA)
	w := doJSON(t, router, http.MethodPost, "/api/v1/analytics", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var got analyticEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Data.AgentID != fx.agentA || got.Data.TicketsResolved != 12 {
		t.Errorf("response = %+v", got.Data)
	}
	if got.Data.CustomerSatisfactionScore != 4.5 {
		t.Errorf("score = %v", got.Data.CustomerSatisfactionScore)
	}
}

func TestAnalyticCreate_UnknownAgentRejected(t *testing.T) {
	db := setupAnalyticDB(t)
	fx := seedAgents(t, db)

	admin := &identity.Actor{UserID: uuid.New(), Roles: []string{domain.RoleAdmin}}
	router := newAnalyticRouter(db, admin)

	body := fmt.Sprintf(`{"agent_id":%q,"agency_id":%q}`, uuid.New(), fx.agencyA)
	w := doJSON(t, router, http.MethodPost, "/api/v1/analytics", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("create status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "agent does not exist") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAnalyticCreate_AgentFromOtherAgencyRejected(t *testing.T) {
	db := setupAnalyticDB(t)
	fx := seedAgents(t, db)

	admin := &identity.Actor{UserID: uuid.New(), Roles: []string{domain.RoleAdmin}}
	router := newAnalyticRouter(db, admin)

	body := fmt.Sprintf(`{"agent_id":%q,"agency_id":%q}`, fx.agentB, fx.agencyA)
	w := doJSON(t, router, http.MethodPost, "/api/v1/analytics", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("create status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "agent belongs to a different agency") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAnalyticList_SortByResolvedAndAgentFilter(t *testing.T) {
	db := setupAnalyticDB(t)
	fx := seedAgents(t, db)
	for _, row := range []*domain.Analytic{
		{AgentID: fx.agentA, AgencyID: fx.agencyA, TicketsResolved: 3},
		{AgentID: fx.agentA, AgencyID: fx.agencyA, TicketsResolved: 9},
		{AgentID: fx.agentB, AgencyID: fx.agencyB, TicketsResolved: 7},
	} {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed analytic: %v", err)
		}
	}

	admin := &identity.Actor{UserID: uuid.New(), Roles: []string{domain.RoleAdmin}}
	router := newAnalyticRouter(db, admin)

	path := "/api/v1/analytics?count=-1&sortColumn=tickets_resolved&sortDirection=desc&filters[agentId]=" + fx.agentA.String()
	w := doJSON(t, router, http.MethodGet, path, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, body = %s", w.Code, w.Body.String())
	}
	var list struct {
		Data []Response `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list.Data) != 2 {
		t.Fatalf("rows = %d, want the two snapshots for the agent", len(list.Data))
	}
	if list.Data[0].TicketsResolved != 9 || list.Data[1].TicketsResolved != 3 {
		t.Errorf("order = %d, %d, want descending", list.Data[0].TicketsResolved, list.Data[1].TicketsResolved)
	}
	if list.Data[0].AgentName != "Abel" {
		t.Errorf("AgentName = %q, want preloaded agent name", list.Data[0].AgentName)
	}
}

func TestAnalyticList_ManagerScopedToOwnAgency(t *testing.T) {
	db := setupAnalyticDB(t)
	fx := seedAgents(t, db)
	for _, row := range []*domain.Analytic{
		{AgentID: fx.agentA, AgencyID: fx.agencyA, TicketsResolved: 3},
		{AgentID: fx.agentB, AgencyID: fx.agencyB, TicketsResolved: 7},
	} {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed analytic: %v", err)
		}
	}

	manager := &identity.Actor{UserID: uuid.New(), Roles: []string{domain.RoleManager}, AgencyID: &fx.agencyA}
	router := newAnalyticRouter(db, manager)

	w := doJSON(t, router, http.MethodGet, "/api/v1/analytics?count=-1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, body = %s", w.Code, w.Body.String())
	}
	var list struct {
		Data []Response `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list.Data) != 1 || list.Data[0].AgencyID != fx.agencyA {
		t.Fatalf("rows = %+v, want only the manager's agency", list.Data)
	}
}
