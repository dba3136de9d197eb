package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinProfiles(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	general, err := LoadStoreProfile("general")
	require.NoError(t, err)
	assert.Empty(t, general.Seed)
	assert.Equal(t, "general", general.PersistenceKey())

	health, err := LoadStoreProfile("healthcare")
	require.NoError(t, err)
	require.Len(t, health.Seed, 4)
	assert.Equal(t, "How can I schedule an appointment?", health.Seed[0].Question)
	assert.NotEqual(t, general.PersistenceKey(), health.PersistenceKey(), "stores must not share keys")
}

func TestStoreProfile_SaveLoadDelete(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	p := StoreProfile{
		Name:        "billing",
		Description: "Billing desk",
		Key:         "kb-billing",
		Seed:        []SeedEntry{{Question: "Can I pay by card?", Answer: "Yes."}},
	}
	require.NoError(t, SaveStoreProfile(p))

	got, err := LoadStoreProfile("billing")
	require.NoError(t, err)
	assert.Equal(t, p, *got)
	assert.Equal(t, "kb-billing", got.PersistenceKey())

	names, err := ListStoreProfiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"billing", "general", "healthcare"}, names)

	require.NoError(t, DeleteStoreProfile("billing"))
	_, err = LoadStoreProfile("billing")
	assert.Error(t, err)
}

func TestStoreProfile_SavedOverridesBuiltin(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	require.NoError(t, SaveStoreProfile(StoreProfile{Name: "healthcare", Description: "custom"}))
	got, err := LoadStoreProfile("healthcare")
	require.NoError(t, err)
	assert.Equal(t, "custom", got.Description)
	assert.Empty(t, got.Seed)
}

func TestStoreProfile_Errors(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := LoadStoreProfile("missing")
	assert.ErrorContains(t, err, "not found")

	assert.Error(t, SaveStoreProfile(StoreProfile{Name: "../escape"}))
	assert.Error(t, SaveStoreProfile(StoreProfile{}))
	assert.ErrorContains(t, DeleteStoreProfile("general"), "built in")
	assert.ErrorContains(t, DeleteStoreProfile("nope"), "not found")
}

func TestStoreProfile_KeysAreUnique(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	assert.ErrorContains(t, SaveStoreProfile(StoreProfile{Name: "alias", Key: "general"}), "already used by store 'general'")
	assert.ErrorContains(t, SaveStoreProfile(StoreProfile{Name: "general2", Key: "healthcare"}), "already used")

	require.NoError(t, SaveStoreProfile(StoreProfile{Name: "billing", Key: "kb-billing"}))
	assert.ErrorContains(t, SaveStoreProfile(StoreProfile{Name: "invoices", Key: "kb-billing"}), "store 'billing'")
	assert.ErrorContains(t, SaveStoreProfile(StoreProfile{Name: "kb-billing"}), "store 'billing'")

	// Re-saving a profile under its own key is fine.
	require.NoError(t, SaveStoreProfile(StoreProfile{Name: "billing", Key: "kb-billing", Description: "updated"}))

	owner, err := KeyOwner("kb-billing", "")
	require.NoError(t, err)
	assert.Equal(t, "billing", owner)
	owner, err = KeyOwner("unused", "")
	require.NoError(t, err)
	assert.Empty(t, owner)
}
