package database

import (
	"fmt"
	"testing"
	"time"

	"finance-ledger/internal/config"
	"finance-ledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite store with foreign keys
// enforced and the ledger schema migrated. It is closed when the test ends.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), gormConfig)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// every pooled connection would otherwise see its own empty database
	sqlDB.SetMaxOpenConns(1)

	testDB := &DB{
		DB: db,
		config: &config.DatabaseConfig{
			Driver:         config.DriverSQLite,
			MaxConnections: 1,
			MaxIdleConns:   1,
		},
	}

	if err := testDB.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = testDB.Close()
	})

	return testDB
}

func CreateTestCategory(t *testing.T, db *DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:         name,
		SpendingType: models.SpendingTypeUnclassified,
	}

	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}

	return category
}

func CreateTestRule(t *testing.T, db *DB, categoryID uuid.UUID, pattern string, priority int) *models.CategorizationRule {
	t.Helper()

	rule := &models.CategorizationRule{
		Pattern:    pattern,
		Priority:   priority,
		IsEnabled:  true,
		CategoryID: categoryID,
	}

	if err := db.Omit("Category").Create(rule).Error; err != nil {
		t.Fatalf("failed to create test rule: %v", err)
	}

	return rule
}

func CreateTestTransaction(t *testing.T, db *DB, description string, date time.Time, category *models.Category) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		Date:        date,
		Description: description,
		Amount:      decimal.NewFromFloat(-12.50),
	}
	if category != nil {
		transaction.CategoryID = &category.ID
	}

	if err := db.Omit("Category").Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}

	return transaction
}

func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	tables := []string{
		"transactions",
		"categorization_rules",
		"categories",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("failed to cleanup table %s: %v", table, err)
		}
	}
}
