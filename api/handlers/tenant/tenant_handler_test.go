package tenant

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/store"
)

type fakeTenantService struct {
	lastCreate store.CreateTenantInput
}

func (f *fakeTenantService) ListTenants() []store.Tenant {
	return []store.Tenant{
		{ID: "tenant_acme", Name: "Acme Inc", Slug: "acme", CreatedAt: time.Unix(0, 0).UTC()},
		{ID: "tenant_beta", Name: "Beta Corp", Slug: "beta", CreatedAt: time.Unix(0, 0).UTC()},
	}
}

func (f *fakeTenantService) CreateTenant(in store.CreateTenantInput) (store.Tenant, error) {
	f.lastCreate = in
	if in.Name == "" {
		return store.Tenant{}, common.NewValidationError("name is required")
	}
	return store.Tenant{ID: "tenant_1", Name: in.Name, Slug: store.Slugify(in.Name)}, nil
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTenantHandler(svc)
	r := gin.New()
	r.GET("/tenants", h.ListTenants)
	r.POST("/tenants", h.CreateTenant)
	return r
}

func TestTenantHandlerListTenants(t *testing.T) {
	r := setupRouter(&fakeTenantService{})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/tenants", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var body struct {
		Data []store.Tenant `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if len(body.Data) != 2 || body.Data[0].Slug != "acme" {
		t.Fatalf("unexpected tenants: %+v", body.Data)
	}
}

func TestTenantHandlerCreateTenant(t *testing.T) {
	svc := &fakeTenantService{}
	r := setupRouter(svc)

	payload := []byte(`{"name":"Initech Labs"}`)
	req := httptest.NewRequest(http.MethodPost, "/tenants", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastCreate.Name != "Initech Labs" {
		t.Fatalf("expected name to be forwarded, got %q", svc.lastCreate.Name)
	}
}

func TestTenantHandlerCreateTenantValidation(t *testing.T) {
	r := setupRouter(&fakeTenantService{})

	tests := []struct {
		name    string
		payload string
	}{
		{"缺少名称", `{"slug":"x"}`},
		{"非法 JSON", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/tenants", bytes.NewReader([]byte(tt.payload)))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)

			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", resp.Code)
			}
			var body common.ErrorBody
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Fatalf("expected error body, got %s", resp.Body.String())
			}
		})
	}
}
