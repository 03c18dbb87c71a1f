package store

import (
	"fmt"
	"slices"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// Fixtures 种子数据，YAML 与 TOML 共用同一结构
type Fixtures struct {
	Tenants       []TenantFixture       `yaml:"tenants" toml:"tenants"`
	Notifications []NotificationFixture `yaml:"notifications" toml:"notifications"`
}

// TenantFixture 租户及其 Prompt
type TenantFixture struct {
	ID        string          `yaml:"id" toml:"id"`
	Name      string          `yaml:"name" toml:"name"`
	Slug      string          `yaml:"slug" toml:"slug"`
	CreatedAt time.Time       `yaml:"createdAt" toml:"createdAt"`
	Prompts   []PromptFixture `yaml:"prompts" toml:"prompts"`
}

// PromptFixture 种子 Prompt，以版本 1 入库
type PromptFixture struct {
	ID        string            `yaml:"id" toml:"id"`
	Title     string            `yaml:"title" toml:"title"`
	Body      string            `yaml:"body" toml:"body"`
	Tags      []string          `yaml:"tags" toml:"tags"`
	Metadata  map[string]any    `yaml:"metadata" toml:"metadata"`
	Archived  bool              `yaml:"archived" toml:"archived"`
	CreatedBy string            `yaml:"createdBy" toml:"createdBy"`
	CreatedAt time.Time         `yaml:"createdAt" toml:"createdAt"`
	UpdatedAt time.Time         `yaml:"updatedAt" toml:"updatedAt"`
	Activity  []ActivityFixture `yaml:"activity" toml:"activity"`
}

// ActivityFixture 种子活动记录
type ActivityFixture struct {
	Action    string    `yaml:"action" toml:"action"`
	Actor     string    `yaml:"actor" toml:"actor"`
	CreatedAt time.Time `yaml:"createdAt" toml:"createdAt"`
}

// NotificationFixture 种子通知
type NotificationFixture struct {
	ID        string    `yaml:"id" toml:"id"`
	TenantID  string    `yaml:"tenantId" toml:"tenantId"`
	Recipient string    `yaml:"recipient" toml:"recipient"`
	Type      string    `yaml:"type" toml:"type"`
	Message   string    `yaml:"message" toml:"message"`
	CreatedAt time.Time `yaml:"createdAt" toml:"createdAt"`
}

// Load 清空现有数据后写入种子。显式 ID 会登记到分配器，重复时报错且不修改现有数据。
func (s *Store) Load(f Fixtures) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkFixtureIDs(f); err != nil {
		return err
	}
	s.resetLocked()

	now := s.now()
	orNow := func(t time.Time) time.Time {
		if t.IsZero() {
			return now
		}
		return t.UTC()
	}
	s.reserveFixtureIDs(f)

	for _, tf := range f.Tenants {
		t := &Tenant{
			ID:        tf.ID,
			Name:      tf.Name,
			Slug:      tf.Slug,
			CreatedAt: orNow(tf.CreatedAt),
		}
		if t.ID == "" {
			t.ID = s.ids.Next(PrefixTenant)
		}
		if t.Slug == "" {
			t.Slug = Slugify(t.Name)
		}
		s.insertTenantLocked(t)

		for _, pf := range tf.Prompts {
			s.loadPromptLocked(t.ID, pf, orNow)
		}
	}

	for _, nf := range f.Notifications {
		n := &NotificationItem{
			ID:        nf.ID,
			TenantID:  optional(nf.TenantID),
			Recipient: nf.Recipient,
			Type:      nf.Type,
			Message:   nf.Message,
			Metadata:  map[string]any{},
			CreatedAt: orNow(nf.CreatedAt),
		}
		if n.ID == "" {
			n.ID = s.ids.Next(PrefixNotification)
		}
		s.notifications = append(s.notifications, n)
	}
	slices.SortStableFunc(s.notifications, func(a, b *NotificationItem) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	s.log.Info("fixtures loaded",
		zap.Int("tenants", len(s.tenants)),
		zap.Int("prompts", len(s.prompts)),
		zap.Int("notifications", len(s.notifications)))
	return nil
}

func (s *Store) loadPromptLocked(tenantID string, pf PromptFixture, orNow func(time.Time) time.Time) {
	p := Prompt{
		ID:        pf.ID,
		TenantID:  tenantID,
		Title:     pf.Title,
		Body:      pf.Body,
		Tags:      cloneTags(pf.Tags),
		Metadata:  cloneMetadata(pf.Metadata),
		CreatedAt: orNow(pf.CreatedAt),
		Version:   1,
		Archived:  pf.Archived,
		CreatedBy: optional(pf.CreatedBy),
	}
	if p.ID == "" {
		p.ID = s.ids.Next(PrefixPrompt)
	}
	p.UpdatedAt = p.CreatedAt
	if !pf.UpdatedAt.IsZero() {
		p.UpdatedAt = pf.UpdatedAt.UTC()
	}

	rec := &promptRecord{
		prompt:   p,
		versions: []PromptVersion{snapshotOf(&p, p.CreatedAt, p.CreatedBy)},
	}
	for _, af := range pf.Activity {
		rec.activity = append(rec.activity, &PromptActivityEntry{
			ID:        s.ids.Next(PrefixActivity),
			PromptID:  p.ID,
			TenantID:  tenantID,
			Actor:     optional(af.Actor),
			Action:    af.Action,
			CreatedAt: orNow(af.CreatedAt),
		})
	}
	slices.SortStableFunc(rec.activity, func(a, b *PromptActivityEntry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	s.insertPromptLocked(rec)
}

func (s *Store) reserveFixtureIDs(f Fixtures) {
	for _, tf := range f.Tenants {
		s.reserve(tf.ID)
		for _, pf := range tf.Prompts {
			s.reserve(pf.ID)
		}
	}
	for _, nf := range f.Notifications {
		s.reserve(nf.ID)
	}
}

func (s *Store) reserve(id string) {
	if id != "" {
		s.ids.Reserve(id)
	}
}

// checkFixtureIDs 显式 ID 必须全局唯一
func checkFixtureIDs(f Fixtures) error {
	seen := map[string]bool{}
	check := func(kind, id string) error {
		if id == "" {
			return nil
		}
		if seen[id] {
			return fmt.Errorf("duplicate %s id %q in fixtures", kind, id)
		}
		seen[id] = true
		return nil
	}
	for _, tf := range f.Tenants {
		if tf.Name == "" {
			return fmt.Errorf("tenant %q: name is required", tf.ID)
		}
		if err := check("tenant", tf.ID); err != nil {
			return err
		}
		for _, pf := range tf.Prompts {
			if err := check("prompt", pf.ID); err != nil {
				return err
			}
		}
	}
	for _, nf := range f.Notifications {
		if err := check("notification", nf.ID); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================================
// 快照
// ============================================================================

// TenantSnapshot 单个租户的记录数
type TenantSnapshot struct {
	ID        string `json:"id" toml:"id"`
	Slug      string `json:"slug" toml:"slug"`
	Prompts   int    `json:"prompts" toml:"prompts"`
	Versions  int    `json:"versions" toml:"versions"`
	Comments  int    `json:"comments" toml:"comments"`
	Shares    int    `json:"shares" toml:"shares"`
	Approvals int    `json:"approvals" toml:"approvals"`
	Activity  int    `json:"activity" toml:"activity"`
}

// Snapshot 供测试断言用的数据概览
type Snapshot struct {
	Counts  Counts           `json:"counts" toml:"counts"`
	Tenants []TenantSnapshot `json:"tenants" toml:"tenant"`
}

// Snapshot 生成当前数据概览，租户按创建顺序
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Counts: s.countsLocked(), Tenants: make([]TenantSnapshot, 0, len(s.tenantOrder))}
	for _, id := range s.tenantOrder {
		ts := TenantSnapshot{ID: id, Slug: s.tenants[id].Slug}
		for _, pid := range s.tenantPrompts[id] {
			rec := s.prompts[pid]
			ts.Prompts++
			ts.Versions += len(rec.versions)
			ts.Comments += len(rec.comments)
			ts.Shares += len(rec.shares)
			ts.Approvals += len(rec.approvals)
			ts.Activity += len(rec.activity)
		}
		snap.Tenants = append(snap.Tenants, ts)
	}
	return snap
}

type snapshotTOML Snapshot

// MarshalTOML 以 TOML 输出快照
func (snap Snapshot) MarshalTOML() ([]byte, error) {
	data, err := toml.Marshal(snapshotTOML(snap))
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}
