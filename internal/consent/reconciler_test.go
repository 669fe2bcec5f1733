package consent_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/sitekit/internal/consent"
	"github.com/joestump/sitekit/internal/kv"
)

// recordingReporter captures every Report call.
type recordingReporter struct {
	mu     sync.Mutex
	calls  []map[string]consent.Value
	action []string
}

func (r *recordingReporter) Report(_ context.Context, action string, delta map[string]consent.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.action = append(r.action, action)
	r.calls = append(r.calls, delta)
}

func testCategories() consent.Categories {
	return consent.Categories{
		{Key: "analytics", Group: []string{"analytics_storage"}},
		{Key: "ads", Group: []string{"ad_storage", "ad_user_data", "ad_personalization"}},
		{Key: "necessary", Group: []string{"security_storage"}, Exempt: true, Params: map[string]any{"wait_for_update": 500}},
	}
}

func TestLoadEffective(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, consent.KeyPrefix+"A", "granted"))

	r := consent.NewReconciler(store)
	eff := r.LoadEffective(ctx, consent.Categories{
		{Key: "A", Group: []string{"x", "y"}},
		{Key: "B", Group: []string{"z"}, Exempt: true},
	})

	assert.Equal(t, map[string]consent.Value{
		"x": consent.Granted,
		"y": consent.Granted,
		"z": consent.Granted,
	}, eff)
}

func TestLoadEffective_UnsetIsDenied(t *testing.T) {
	r := consent.NewReconciler(kv.NewMemory())
	eff := r.LoadEffective(context.Background(), testCategories())

	assert.Equal(t, consent.Denied, eff["analytics_storage"])
	assert.Equal(t, consent.Denied, eff["ad_storage"])
	assert.Equal(t, consent.Granted, eff["security_storage"])
}

func TestLoadEffective_GarbageIsDenied(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, consent.KeyPrefix+"analytics", "maybe"))

	eff := consent.NewReconciler(store).LoadEffective(ctx, testCategories())
	assert.Equal(t, consent.Denied, eff["analytics_storage"])
}

func TestLoadEffective_StorageUnavailable(t *testing.T) {
	r := consent.NewReconciler(kv.Unavailable{})
	eff := r.LoadEffective(context.Background(), testCategories())

	assert.Equal(t, consent.Denied, eff["analytics_storage"])
	assert.Equal(t, consent.Denied, eff["ad_personalization"])
	assert.Equal(t, consent.Granted, eff["security_storage"])
}

func TestLoadEffective_OrderIndependent(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, consent.KeyPrefix+"ads", "granted"))
	r := consent.NewReconciler(store)

	cs := testCategories()
	reversed := consent.Categories{cs[2], cs[1], cs[0]}
	assert.Equal(t, r.LoadEffective(ctx, cs), r.LoadEffective(ctx, reversed))
}

func TestDefaultSettings(t *testing.T) {
	r := consent.NewReconciler(kv.NewMemory())
	settings := r.DefaultSettings(context.Background(), testCategories())

	assert.Equal(t, 500, settings["wait_for_update"])
	payload, err := json.Marshal(settings)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"wait_for_update":500`)
	assert.Equal(t, "denied", settings["analytics_storage"])
	assert.Equal(t, "granted", settings["security_storage"])
}

func TestApplyBulk_DenyAll(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	rep := &recordingReporter{}
	r := consent.NewReconciler(store, consent.WithReporter(rep))

	res := r.ApplyBulk(ctx, r.Load(ctx, testCategories()), consent.Denied)

	assert.Equal(t, map[string]consent.Value{
		"analytics_storage":  consent.Denied,
		"ad_storage":         consent.Denied,
		"ad_user_data":       consent.Denied,
		"ad_personalization": consent.Denied,
	}, res.Delta)
	assert.NotContains(t, res.Delta, "security_storage")

	necessary, ok := res.Categories.Lookup("necessary")
	require.True(t, ok)
	assert.Equal(t, consent.Granted, necessary.Value)

	_, stored, _ := store.Get(ctx, consent.KeyPrefix+"necessary")
	assert.False(t, stored, "exempt category is never persisted")

	v, _, _ := store.Get(ctx, consent.KeyPrefix+"ads")
	assert.Equal(t, "denied", v)
	assert.True(t, r.BannerDone(ctx))

	require.Len(t, rep.calls, 1)
	assert.Equal(t, consent.ActionUpdate, rep.action[0])
	assert.Equal(t, res.Delta, rep.calls[0])
}

func TestApplyBulk_AcceptAll(t *testing.T) {
	ctx := context.Background()
	r := consent.NewReconciler(kv.NewMemory())

	res := r.ApplyBulk(ctx, r.Load(ctx, testCategories()), consent.Granted)
	for _, c := range res.Categories {
		assert.Equal(t, consent.Granted, c.Value, c.Key)
	}

	eff := r.LoadEffective(ctx, testCategories())
	assert.Equal(t, consent.Granted, eff["ad_user_data"])
}

func TestApplySelective(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	rep := &recordingReporter{}
	r := consent.NewReconciler(store, consent.WithReporter(rep))

	cs := consent.Categories{{Key: "A", Group: []string{"x", "y"}, Value: consent.Denied}}
	checked := map[string]bool{"A": true}

	res := r.ApplySelective(ctx, cs, checked)
	a, _ := res.Categories.Lookup("A")
	assert.Equal(t, consent.Granted, a.Value)
	assert.Equal(t, map[string]consent.Value{"x": consent.Granted, "y": consent.Granted}, res.Delta)
	assert.Equal(t, consent.Denied, cs[0].Value, "input categories are not mutated")
	assert.True(t, r.BannerDone(ctx))

	again := r.ApplySelective(ctx, res.Categories, checked)
	assert.Empty(t, again.Delta)
	assert.Len(t, rep.calls, 1, "unchanged save is not reported")
}

func TestApplySelective_OnlyChangedReported(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	r := consent.NewReconciler(store)

	cs := testCategories()
	cs[0].Value = consent.Granted
	cs[1].Value = consent.Granted

	res := r.ApplySelective(ctx, cs, map[string]bool{"analytics": true})
	assert.Equal(t, map[string]consent.Value{
		"ad_storage":         consent.Denied,
		"ad_user_data":       consent.Denied,
		"ad_personalization": consent.Denied,
	}, res.Delta)

	_, stored, _ := store.Get(ctx, consent.KeyPrefix+"analytics")
	assert.False(t, stored, "unchanged category is not rewritten")
}

func TestApplySelective_NoChangeLeavesBanner(t *testing.T) {
	ctx := context.Background()
	r := consent.NewReconciler(kv.NewMemory())

	cs := consent.Categories{{Key: "A", Group: []string{"x"}, Value: consent.Denied}}
	res := r.ApplySelective(ctx, cs, nil)
	assert.Empty(t, res.Delta)
	assert.False(t, r.BannerDone(ctx))
}

func TestApplySelective_CompleteOnSave(t *testing.T) {
	ctx := context.Background()
	r := consent.NewReconciler(kv.NewMemory(), consent.WithCompleteOnSave(true))

	cs := consent.Categories{{Key: "A", Group: []string{"x"}, Value: consent.Denied}}
	r.ApplySelective(ctx, cs, nil)
	assert.True(t, r.BannerDone(ctx))
}

func TestApply_StorageUnavailable(t *testing.T) {
	ctx := context.Background()
	rep := &recordingReporter{}
	r := consent.NewReconciler(kv.Unavailable{}, consent.WithReporter(rep))

	res := r.ApplyBulk(ctx, testCategories(), consent.Granted)
	assert.Len(t, res.Delta, 4, "writes are dropped but the delta is still reported")
	assert.Len(t, rep.calls, 1)
	assert.False(t, r.BannerDone(ctx))
}

func TestValidate(t *testing.T) {
	require.NoError(t, testCategories().Validate())

	overlap := consent.Categories{
		{Key: "a", Group: []string{"x"}},
		{Key: "b", Group: []string{"y", "x"}},
	}
	assert.ErrorIs(t, overlap.Validate(), consent.ErrInvalidCategories)

	dup := consent.Categories{{Key: "a"}, {Key: "a"}}
	assert.ErrorIs(t, dup.Validate(), consent.ErrInvalidCategories)

	empty := consent.Categories{{Key: ""}}
	assert.ErrorIs(t, empty.Validate(), consent.ErrInvalidCategories)

	blankKey := consent.Categories{{Key: "a", Group: []string{""}}}
	assert.ErrorIs(t, blankKey.Validate(), consent.ErrInvalidCategories)
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, consent.Granted, consent.ParseValue("granted"))
	assert.Equal(t, consent.Denied, consent.ParseValue("denied"))
	assert.Equal(t, consent.Unset, consent.ParseValue(""))
	assert.Equal(t, consent.Unset, consent.ParseValue("true"))
}
