package fault

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumeBudget(t *testing.T) {
	inj := New(nil)
	require.NoError(t, inj.Configure(Rule{Capability: Dashboard, TenantID: "t1", Count: 2}))

	assert.False(t, inj.Consume(Dashboard, "t2", ""), "其他租户不受影响")
	assert.True(t, inj.Consume(Dashboard, "t1", ""))
	assert.Equal(t, 1, inj.Remaining(Dashboard, "t1", ""))
	assert.True(t, inj.Consume(Dashboard, "t1", ""))
	assert.False(t, inj.Consume(Dashboard, "t1", ""))
	assert.Empty(t, inj.Rules(), "预算耗尽后规则被移除")
}

func TestUnconfiguredCapabilityNeverFails(t *testing.T) {
	inj := New(nil)
	for i := 0; i < 10; i++ {
		assert.False(t, inj.Consume(ListPrompts, "tenant_acme", ""))
	}
}

func TestLookupOrder(t *testing.T) {
	inj := New(nil)
	require.NoError(t, inj.Configure(Rule{Capability: Analytics, TenantID: "t1", Key: "7d", Count: 1}))
	require.NoError(t, inj.Configure(Rule{Capability: Analytics, TenantID: "t1", Count: 1}))
	require.NoError(t, inj.Configure(Rule{Capability: Analytics, Count: 1}))

	// 30d 没有精确规则，先用租户级预算
	assert.True(t, inj.Consume(Analytics, "t1", "30d"))
	assert.Equal(t, 0, inj.Remaining(Analytics, "t1", ""))
	assert.Equal(t, 1, inj.Remaining(Analytics, "t1", "7d"))

	assert.True(t, inj.Consume(Analytics, "t1", "7d"))
	assert.Equal(t, 1, inj.Remaining(Analytics, "", ""))

	// 全局预算对任意租户生效
	assert.True(t, inj.Consume(Analytics, "t9", "90d"))
	assert.False(t, inj.Consume(Analytics, "t1", "7d"))
}

func TestKeyOnlyRuleAppliesToAnyTenant(t *testing.T) {
	inj := New(nil)
	require.NoError(t, inj.Configure(Rule{Capability: Analytics, Key: "7d", Count: 2}))
	require.NoError(t, inj.Configure(Rule{Capability: Analytics, TenantID: "t1", Count: 1}))

	// 租户级预算优先于只有 key 的规则
	assert.True(t, inj.Consume(Analytics, "t1", "7d"))
	assert.Equal(t, 2, inj.Remaining(Analytics, "", "7d"))

	assert.True(t, inj.Consume(Analytics, "t1", "7d"))
	assert.False(t, inj.Consume(Analytics, "t2", "30d"))
	assert.True(t, inj.Consume(Analytics, "t2", "7d"))
	assert.Equal(t, 0, inj.Remaining(Analytics, "", "7d"))
	assert.False(t, inj.Consume(Analytics, "t2", "7d"))
}

func TestConfigureValidation(t *testing.T) {
	inj := New(nil)
	assert.Error(t, inj.Configure(Rule{Count: 1}))
	assert.Error(t, inj.Configure(Rule{Capability: Dashboard, Count: -1}))

	require.NoError(t, inj.Configure(Rule{Capability: Dashboard, Count: 3}))
	require.NoError(t, inj.Configure(Rule{Capability: Dashboard, Count: 0}))
	assert.Empty(t, inj.Rules())
}

func TestRulesSortedAndReset(t *testing.T) {
	inj := New(nil)
	require.NoError(t, inj.Configure(Rule{Capability: ListPrompts, TenantID: "b", Count: 1}))
	require.NoError(t, inj.Configure(Rule{Capability: Dashboard, Count: 2}))
	require.NoError(t, inj.Configure(Rule{Capability: ListPrompts, TenantID: "a", Count: 3}))

	assert.Equal(t, []Rule{
		{Capability: Dashboard, Count: 2},
		{Capability: ListPrompts, TenantID: "a", Count: 3},
		{Capability: ListPrompts, TenantID: "b", Count: 1},
	}, inj.Rules())

	inj.Reset()
	assert.Empty(t, inj.Rules())
}

func TestConcurrentConsumeNeverOverspends(t *testing.T) {
	const budget = 25
	inj := New(nil)
	require.NoError(t, inj.Configure(Rule{Capability: CreatePrompt, TenantID: "t1", Count: budget}))

	var failures atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if inj.Consume(CreatePrompt, "t1", "") {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(budget), failures.Load())
	assert.Equal(t, 0, inj.Remaining(CreatePrompt, "t1", ""))
}
