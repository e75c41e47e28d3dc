package crud

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openhelpdesk/helpdesk/internal/domain"
	"github.com/openhelpdesk/helpdesk/internal/identity"
)

var (
	agencyA = uuid.MustParse("11111111-1111-7111-8111-111111111111")
	agencyB = uuid.MustParse("22222222-2222-7222-8222-222222222222")
)

func TestScopeByAgency_AdminSeesEverything(t *testing.T) {
	db := setupTestDB(t)
	seedNotes(t, db, []note{
		{Title: "a1", AgencyID: agencyA},
		{Title: "b1", AgencyID: agencyB},
	})

	scope, err := ScopeByAgency(&identity.Actor{Roles: []string{domain.RoleAdmin}}, "agency_id")
	if err != nil {
		t.Fatalf("ScopeByAgency: %v", err)
	}
	titles := findTitles(t, db, scope)
	if len(titles) != 2 {
		t.Errorf("admin sees %v; want both agencies", titles)
	}
}

func TestScopeByAgency_AgentSeesOwnAgencyOnly(t *testing.T) {
	db := setupTestDB(t)
	seedNotes(t, db, []note{
		{Title: "a1", AgencyID: agencyA},
		{Title: "b1", AgencyID: agencyB},
		{Title: "a2", AgencyID: agencyA},
	})

	scope, err := ScopeByAgency(&identity.Actor{Roles: []string{domain.RoleAgent}, AgencyID: &agencyA}, "agency_id")
	if err != nil {
		t.Fatalf("ScopeByAgency: %v", err)
	}
	titles := findTitles(t, db, scope)
	if len(titles) != 2 || titles[0] != "a1" || titles[1] != "a2" {
		t.Errorf("agent sees %v; want only agency A rows", titles)
	}
}

func TestScopeByAgency_ManagerScopedLikeAgent(t *testing.T) {
	db := setupTestDB(t)
	seedNotes(t, db, []note{
		{Title: "a1", AgencyID: agencyA},
		{Title: "b1", AgencyID: agencyB},
	})

	scope, err := ScopeByAgency(&identity.Actor{Roles: []string{domain.RoleManager}, AgencyID: &agencyB}, "agency_id")
	if err != nil {
		t.Fatalf("ScopeByAgency: %v", err)
	}
	titles := findTitles(t, db, scope)
	if len(titles) != 1 || titles[0] != "b1" {
		t.Errorf("manager sees %v; want only agency B rows", titles)
	}
}

func TestScopeByAgency_APIKeyActorScoped(t *testing.T) {
	db := setupTestDB(t)
	seedNotes(t, db, []note{
		{Title: "a1", AgencyID: agencyA},
		{Title: "b1", AgencyID: agencyB},
	})

	scope, err := ScopeByAgency(&identity.Actor{APIKey: true, AgencyID: &agencyA}, "agency_id")
	if err != nil {
		t.Fatalf("ScopeByAgency: %v", err)
	}
	titles := findTitles(t, db, scope)
	if len(titles) != 1 || titles[0] != "a1" {
		t.Errorf("api key actor sees %v; want only its agency", titles)
	}
}

func TestScopeByAgency_AgentWithoutAgency(t *testing.T) {
	_, err := ScopeByAgency(&identity.Actor{Roles: []string{domain.RoleAgent}}, "agency_id")
	if !domain.IsUnauthorized(err) {
		t.Fatalf("err = %v; want unauthorized", err)
	}
	// A structured error, never a panic or an empty result set.
	if err.Error() != "agent not authorized: no agency assigned" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestScopeByAgency_NilActor(t *testing.T) {
	_, err := ScopeByAgency(nil, "agency_id")
	if !domain.IsUnauthorized(err) {
		t.Errorf("err = %v; want unauthorized", err)
	}
}

func TestEffectiveAgencyID(t *testing.T) {
	tests := []struct {
		name      string
		actor     *identity.Actor
		requested uuid.UUID
		want      uuid.UUID
		wantErr   bool
	}{
		{
			name:      "admin keeps requested agency",
			actor:     &identity.Actor{Roles: []string{domain.RoleAdmin}},
			requested: agencyB,
			want:      agencyB,
		},
		{
			name:      "agent overrides requested agency with own",
			actor:     &identity.Actor{Roles: []string{domain.RoleAgent}, AgencyID: &agencyA},
			requested: agencyB,
			want:      agencyA,
		},
		{
			name:      "api key actor pinned to key agency",
			actor:     &identity.Actor{APIKey: true, AgencyID: &agencyA},
			requested: agencyB,
			want:      agencyA,
		},
		{
			name:    "agent without agency fails",
			actor:   &identity.Actor{Roles: []string{domain.RoleAgent}},
			wantErr: true,
		},
		{
			name:    "nil actor fails",
			actor:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EffectiveAgencyID(tt.actor, tt.requested)
			if tt.wantErr {
				if !domain.IsUnauthorized(err) {
					t.Fatalf("err = %v; want unauthorized", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("EffectiveAgencyID: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s; want %s", got, tt.want)
			}
		})
	}
}

func actorContext(t *testing.T, actor *identity.Actor) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if actor != nil {
		identity.Set(c, actor)
	}
	return c
}

func TestAgencyGuard(t *testing.T) {
	guard := AgencyGuard(func(n *note) uuid.UUID { return n.AgencyID })
	entity := &note{AgencyID: agencyA}

	tests := []struct {
		name    string
		actor   *identity.Actor
		wantErr bool
	}{
		{
			name:  "admin allowed anywhere",
			actor: &identity.Actor{Roles: []string{domain.RoleAdmin}},
		},
		{
			name:  "agent allowed within own agency",
			actor: &identity.Actor{Roles: []string{domain.RoleAgent}, AgencyID: &agencyA},
		},
		{
			name:    "agent blocked across agencies",
			actor:   &identity.Actor{Roles: []string{domain.RoleAgent}, AgencyID: &agencyB},
			wantErr: true,
		},
		{
			name:    "agent without agency blocked",
			actor:   &identity.Actor{Roles: []string{domain.RoleAgent}},
			wantErr: true,
		},
		{
			name:  "plain user not restricted by the guard",
			actor: &identity.Actor{Roles: []string{domain.RoleUser}},
		},
		{
			name:    "missing actor blocked",
			actor:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard(actorContext(t, tt.actor), entity)
			if tt.wantErr && !domain.IsUnauthorized(err) {
				t.Errorf("err = %v; want unauthorized", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("err = %v; want nil", err)
			}
		})
	}
}
