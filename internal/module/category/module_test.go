package category

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

func setupCategoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Agency{}, &domain.Category{}); err != nil {
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

func newCategoryRouter(db *gorm.DB, a *identity.Actor) *gin.Engine {
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

func seedAgency(t *testing.T, db *gorm.DB, name string) uuid.UUID {
	t.Helper()
	a := &domain.Agency{Name: name}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("seed agency: %v", err)
	}
	return a.ID
}

type categoryEnvelope struct {
	Data Response `json:"data"`
}

func TestCategoryCreate_UnknownAgencyRejected(t *testing.T) {
	db := setupCategoryDB(t)
	admin := &identity.Actor{UserID: uuid.New(), Roles: []string{domain.RoleAdmin}}
	router := newCategoryRouter(db, admin)

	body := fmt.Sprintf(`{"name":"Billing","agency_id":%q}`, uuid.New())
	w := doJSON(t, router, http.MethodPost, "/api/v1/categories", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("create status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "agency does not exist") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestCategoryCreate_ManagerPinnedToOwnAgency(t *testing.T) {
	db := setupCategoryDB(t)
	agencyA := seedAgency(t, db, "Acme")
	agencyB := seedAgency(t, db, "Globex")

	manager := &identity.Actor{UserID: uuid.New(), Roles: []string{domain.RoleManager}, AgencyID: &agencyA}
	router := newCategoryRouter(db, manager)

	body := fmt.Sprintf(`{"name":"Billing","agency_id":%q}`, agencyB)
	w := doJSON(t, router, http.MethodPost, "/api/v1/categories", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var got categoryEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Data.AgencyID != agencyA {
		t.Errorf("agency = %s, want the manager's own %s", got.Data.AgencyID, agencyA)
	}
}

func TestCategoryUpdate_AgencyBindingFixed(t *testing.T) {
	db := setupCategoryDB(t)
	agencyA := seedAgency(t, db, "Acme")

	cat := &domain.Category{Name: "Billing", AgencyID: agencyA}
	if err := db.Create(cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	admin := &identity.Actor{UserID: uuid.New(), Roles: []string{domain.RoleAdmin}}
	router := newCategoryRouter(db, admin)

	w := doJSON(t, router, http.MethodPut, "/api/v1/categories/"+cat.ID.String(),
		`{"name":"Invoicing","description":"billing questions"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	var got categoryEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Data.Name != "Invoicing" || got.Data.AgencyID != agencyA {
		t.Errorf("response = %+v", got.Data)
	}
}

func TestCategoryList_AgentScopedWithAgencyName(t *testing.T) {
	db := setupCategoryDB(t)
	agencyA := seedAgency(t, db, "Acme")
	agencyB := seedAgency(t, db, "Globex")
	for _, cat := range []*domain.Category{
		{Name: "Ours", AgencyID: agencyA},
		{Name: "Theirs", AgencyID: agencyB},
	} {
		if err := db.Create(cat).Error; err != nil {
			t.Fatalf("seed category: %v", err)
		}
	}

	agent := &identity.Actor{UserID: uuid.New(), Roles: []string{domain.RoleAgent}, AgencyID: &agencyA}
	router := newCategoryRouter(db, agent)

	w := doJSON(t, router, http.MethodGet, "/api/v1/categories?count=-1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, body = %s", w.Code, w.Body.String())
	}
	var list struct {
		Data []Response `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list.Data) != 1 || list.Data[0].Name != "Ours" {
		t.Fatalf("rows = %+v, want only the agent's agency", list.Data)
	}
	if list.Data[0].AgencyName != "Acme" {
		t.Errorf("AgencyName = %q, want preloaded agency name", list.Data[0].AgencyName)
	}
}
