package kpi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIntegrity(t *testing.T) {
	// GIVEN the deployed catalog
	reg := DefaultRegistry()
	all := reg.All()

	// THEN there are 14 targets split 3 daily / 7 weekly / 4 monthly
	require.Len(t, all, 14)
	assert.Len(t, reg.ByCadence(CadenceDaily), 3)
	assert.Len(t, reg.ByCadence(CadenceWeekly), 7)
	assert.Len(t, reg.ByCadence(CadenceMonthly), 4)

	// AND ids are unique with positive quotas and penalties
	ids := map[int]bool{}
	for _, target := range all {
		require.False(t, ids[target.ID], "duplicate id %d", target.ID)
		ids[target.ID] = true
		assert.Positive(t, target.Quota, target.Name)
		assert.False(t, target.Penalty.IsZero(), target.Name)
		assert.False(t, target.Penalty.IsNegative(), target.Name)
	}
}

func TestCatalogValues(t *testing.T) {
	reg := DefaultRegistry()

	leads, ok := reg.ByID(1)
	require.True(t, ok)
	assert.Equal(t, "Menginput Data Lead", leads.Name)
	assert.Equal(t, 20, leads.Quota)
	assert.True(t, leads.Penalty.Equal(NewMoney(15000)))
	assert.Equal(t, CollectionLeads, leads.Source)

	b2b, ok := reg.ByID(11)
	require.True(t, ok)
	assert.Equal(t, CadenceMonthly, b2b.Cadence)
	assert.True(t, b2b.Penalty.Equal(NewMoney(200000)))
}

func TestEnablementDefaults(t *testing.T) {
	// GIVEN no saved enablement at all
	var e Enablement
	// THEN every target is enabled
	assert.True(t, e.IsEnabled(1))

	// GIVEN a map that omits a target
	e = Enablement{2: false, 3: true}
	// THEN the missing target is enabled, only explicit false disables
	assert.True(t, e.IsEnabled(1))
	assert.False(t, e.IsEnabled(2))
	assert.True(t, e.IsEnabled(3))
}
