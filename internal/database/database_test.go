package database

import (
	"testing"
	"time"

	"finance-ledger/internal/config"
	"finance-ledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestDB_CreatesLedgerSchema(t *testing.T) {
	db := SetupTestDB(t)

	migrator := db.Migrator()
	assert.True(t, migrator.HasTable(&models.Category{}))
	assert.True(t, migrator.HasTable(&models.CategorizationRule{}))
	assert.True(t, migrator.HasTable(&models.Transaction{}))
	assert.True(t, migrator.HasIndex(&models.Transaction{}, "idx_transactions_date"))
	assert.True(t, migrator.HasIndex(&models.Transaction{}, "idx_transactions_category_id"))
	assert.True(t, migrator.HasIndex(&models.CategorizationRule{}, "idx_categorization_rules_category_id"))
	assert.True(t, migrator.HasIndex(&models.CategorizationRule{}, "idx_categorization_rules_is_enabled"))
	assert.NoError(t, db.HealthCheck())
}

func TestForeignKeys_CascadeRulesProtectTransactions(t *testing.T) {
	db := SetupTestDB(t)

	category := CreateTestCategory(t, db, "Groceries")
	CreateTestRule(t, db, category.ID, "walmart", 1)
	CreateTestTransaction(t, db, "WALMART #1", time.Now(), category)

	err := db.Delete(&models.Category{}, "id = ?", category.ID).Error
	assert.Error(t, err, "a referenced category must not be deletable at the store level")

	require.NoError(t, db.Exec("DELETE FROM transactions").Error)
	require.NoError(t, db.Delete(&models.Category{}, "id = ?", category.ID).Error)

	var rules int64
	require.NoError(t, db.Model(&models.CategorizationRule{}).Count(&rules).Error)
	assert.Zero(t, rules, "rules cascade with their category")
}

func TestNew_SQLiteFile(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:          config.DriverSQLite,
		Path:            t.TempDir() + "/nested/ledger.db",
		ConnMaxLifetime: time.Minute,
	}

	db, err := New(cfg)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, config.DriverSQLite, db.Driver())
	require.NoError(t, db.AutoMigrate())
	require.NoError(t, db.CreateIndexes())
	assert.True(t, db.hasSchema())
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(&config.DatabaseConfig{Driver: "oracle"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestInitialize_FallsBackToAutoMigrate(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:         config.DriverSQLite,
			Path:           t.TempDir() + "/ledger.db",
			AutoMigrate:    true,
			MigrationsPath: t.TempDir(),
		},
	}

	db, err := Initialize(cfg)
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, db.hasSchema())
}
