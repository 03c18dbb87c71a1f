package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/common"
)

// stepClock 每次调用前进一秒，保证时间戳有序且可预测
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	clock := newStepClock()
	s := New(append([]Option{WithClock(clock.Now)}, opts...)...)
	require.NoError(t, s.Load(Fixtures{
		Tenants: []TenantFixture{
			{ID: "tenant_acme", Name: "Acme"},
			{ID: "tenant_globex", Name: "Globex"},
		},
	}))
	return s
}

func strPtr(s string) *string { return &s }

func mustCreate(t *testing.T, s *Store, tenantID, title string, tags ...string) Prompt {
	t.Helper()
	p, err := s.CreatePrompt(CreatePromptInput{
		TenantID: tenantID,
		Title:    title,
		Body:     "body of " + title,
		Tags:     tags,
	}, nil)
	require.NoError(t, err)
	return p
}

func TestAllocatorSkipsReservedIDs(t *testing.T) {
	a := NewAllocator()
	require.True(t, a.Reserve("prompt_2"))
	require.False(t, a.Reserve("prompt_2"))

	assert.Equal(t, "prompt_1", a.Next(PrefixPrompt))
	assert.Equal(t, "prompt_3", a.Next(PrefixPrompt))
	assert.Equal(t, "comment_1", a.Next(PrefixComment))

	a.Reset()
	assert.Equal(t, "prompt_1", a.Next(PrefixPrompt))
}

func TestCreateTenant(t *testing.T) {
	s := newTestStore(t)

	tenant, err := s.CreateTenant(CreateTenantInput{Name: "Initech Labs"})
	require.NoError(t, err)
	assert.Equal(t, "initech-labs", tenant.Slug)
	assert.Equal(t, "tenant_1", tenant.ID)

	_, err = s.CreateTenant(CreateTenantInput{Name: "Other", Slug: "initech-labs"})
	require.Error(t, err)
	assert.True(t, common.IsValidation(err), "重复 slug 应为校验错误")

	_, err = s.CreateTenant(CreateTenantInput{Name: "  "})
	assert.True(t, common.IsValidation(err))

	tenants := s.ListTenants()
	require.Len(t, tenants, 3)
	assert.Equal(t, tenant.ID, tenants[2].ID)
}

func TestTenantLookupErrors(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTenant("")
	be, ok := common.AsBusinessError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodeTenantRequired, be.Code)

	_, err = s.GetTenant("missing")
	assert.True(t, common.IsNotFound(err))

	// 创建接口上未知租户为校验错误
	_, err = s.CreatePrompt(CreatePromptInput{TenantID: "missing", Title: "A", Body: "b"}, nil)
	assert.True(t, common.IsValidation(err))

	_, err = s.ListPrompts("missing", ListQuery{})
	assert.True(t, common.IsNotFound(err))
}

func TestTenantIsolation(t *testing.T) {
	s := newTestStore(t)
	acme := mustCreate(t, s, "tenant_acme", "Acme prompt")
	mustCreate(t, s, "tenant_globex", "Globex prompt")

	page, err := s.ListPrompts("tenant_acme", ListQuery{})
	require.NoError(t, err)
	for _, p := range page.Items {
		assert.Equal(t, "tenant_acme", p.TenantID)
	}

	_, err = s.GetPrompt("tenant_globex", acme.ID)
	assert.True(t, common.IsNotFound(err), "跨租户访问应返回 NotFound")

	_, err = s.UpdatePrompt("tenant_globex", acme.ID, UpdatePromptInput{}, nil)
	assert.True(t, common.IsNotFound(err))
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := newTestStore(t)
	p, err := s.CreatePrompt(CreatePromptInput{
		TenantID: "tenant_acme",
		Title:    "A",
		Body:     "b",
		Tags:     []string{"x"},
		Metadata: map[string]any{"k": "v"},
	}, nil)
	require.NoError(t, err)

	p.Tags[0] = "mutated"
	p.Metadata["k"] = "mutated"

	got, err := s.GetPrompt("tenant_acme", p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Tags)
	assert.Equal(t, "v", got.Metadata["k"])
}

func TestCountsAndReset(t *testing.T) {
	s := newTestStore(t)
	p := mustCreate(t, s, "tenant_acme", "A")
	_, err := s.RecordUsage("tenant_acme", p.ID, nil, nil)
	require.NoError(t, err)

	c := s.Counts()
	assert.Equal(t, 2, c.Tenants)
	assert.Equal(t, 1, c.Prompts)
	assert.Equal(t, 1, c.Versions)
	assert.Equal(t, 1, c.Activity)

	s.Reset()
	assert.Equal(t, Counts{}, s.Counts())
}

func TestConcurrentUpdatesKeepVersionsStrict(t *testing.T) {
	s := newTestStore(t)
	p := mustCreate(t, s, "tenant_acme", "A")

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdatePrompt("tenant_acme", p.ID, UpdatePromptInput{}, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.GetPrompt("tenant_acme", p.ID)
	require.NoError(t, err)
	assert.Equal(t, writers+1, got.Version)

	versions, err := s.ListVersions("tenant_acme", p.ID)
	require.NoError(t, err)
	require.Len(t, versions, writers+1)
	for i, v := range versions {
		assert.Equal(t, writers+1-i, v.Version, "版本历史应严格倒序")
	}
}
