package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finance-ledger/internal/database"
	"finance-ledger/internal/models"
	"finance-ledger/internal/repositories"
	"finance-ledger/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SampleDataServiceSuite struct {
	suite.Suite
	ctx             context.Context
	db              *database.DB
	transactionRepo repositories.TransactionRepositoryInterface
	categoryRepo    repositories.CategoryRepositoryInterface
	ruleRepo        repositories.CategorizationRuleRepositoryInterface
	service         *SampleDataService
}

func TestSampleDataServiceSuite(t *testing.T) {
	suite.Run(t, new(SampleDataServiceSuite))
}

func (s *SampleDataServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = database.SetupTestDB(s.T())
	s.transactionRepo = repositories.NewTransactionRepository(s.db.DB)
	s.categoryRepo = repositories.NewCategoryRepository(s.db.DB)
	s.ruleRepo = repositories.NewCategorizationRuleRepository(s.db.DB)

	audit := NewAuditLogger(discardLogger())
	categorization := NewCategorizationService(
		s.transactionRepo, s.categoryRepo, s.ruleRepo,
		audit, NewPrometheusMetrics(prometheus.NewRegistry()), discardLogger(),
	)

	s.service = NewSampleDataService(
		NewCategoryService(s.categoryRepo, audit, discardLogger()),
		NewCategorizationRuleService(s.ruleRepo, discardLogger()),
		categorization,
		42,
		discardLogger(),
	).(*SampleDataService)
}

func (s *SampleDataServiceSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *SampleDataServiceSuite) TestSeed_EmptyLedger() {
	summary, err := s.service.Seed(s.ctx, 40)
	s.Require().NoError(err)

	s.Equal(len(sampleCategories), summary.CategoriesCreated)
	s.Equal(len(sampleRules), summary.RulesCreated)
	s.Equal(40, summary.TransactionsCreated)

	all, err := s.transactionRepo.GetAll()
	s.Require().NoError(err)
	s.Len(all, 40)

	categorized := 0
	for _, t := range all {
		if t.CategoryID != nil {
			categorized++
		}
		s.Nil(t.ReviewedAt, "seeded transactions are not reviewed")
	}
	s.Equal(summary.Categorized, categorized)

	queued, err := s.transactionRepo.CountUncategorized()
	s.Require().NoError(err)
	s.Equal(int64(40-categorized), queued)
}

func (s *SampleDataServiceSuite) TestSeed_IsIdempotentForCategoriesAndRules() {
	_, err := s.service.Seed(s.ctx, 5)
	s.Require().NoError(err)

	summary, err := s.service.Seed(s.ctx, 5)
	s.Require().NoError(err)

	s.Zero(summary.CategoriesCreated)
	s.Zero(summary.RulesCreated)
	s.Equal(5, summary.TransactionsCreated)

	categories, err := s.categoryRepo.GetAll()
	s.Require().NoError(err)
	s.Len(categories, len(sampleCategories))
}

func (s *SampleDataServiceSuite) TestSeed_KeepsExistingCategory() {
	existing := &models.Category{Name: "Groceries", SpendingType: models.SpendingTypeMixed}
	s.Require().NoError(s.categoryRepo.Create(existing))

	summary, err := s.service.Seed(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(len(sampleCategories)-1, summary.CategoriesCreated)

	rules, err := s.ruleRepo.GetAll()
	s.Require().NoError(err)
	for _, r := range rules {
		if r.Pattern == "walmart" {
			s.Equal(existing.ID, r.CategoryID)
		}
	}
}

func (s *SampleDataServiceSuite) TestGenerateTransactions() {
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -30)

	transactions := s.service.GenerateTransactions(100, start, end)
	s.Len(transactions, 100)

	for _, t := range transactions {
		s.NoError(t.Validate())
		s.False(t.Date.Before(start))
		s.False(t.Date.After(end))
		s.Nil(t.CategoryID)
		s.True(t.Amount.Equal(t.Amount.Round(2)))
		if t.Amount.GreaterThan(decimal.Zero) {
			s.Contains(t.Description, "PAYROLL")
		}
	}
}

func (s *SampleDataServiceSuite) TestSeed_DefaultCount() {
	summary, err := s.service.Seed(s.ctx, 0)
	s.Require().NoError(err)
	s.Equal(defaultSeedTransactions, summary.TransactionsCreated)
}

func TestSampleDataService_IngestionFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	categories := service_mocks.NewMockCategoryServiceInterface(ctrl)
	rules := service_mocks.NewMockCategorizationRuleServiceInterface(ctrl)
	categorization := service_mocks.NewMockCategorizationServiceInterface(ctrl)

	existing := make([]models.Category, len(sampleCategories))
	copy(existing, sampleCategories)

	categories.EXPECT().GetAllCategories(gomock.Any()).Return(existing, nil)
	rules.EXPECT().GetAllRules(gomock.Any()).Return(nil, nil)
	rules.EXPECT().CreateRule(gomock.Any(), gomock.Any()).Return(nil).Times(len(sampleRules))
	categorization.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(3)).Return(errors.New("disk full"))

	service := NewSampleDataService(categories, rules, categorization, 1, discardLogger())

	summary, err := service.Seed(context.Background(), 3)
	if err == nil || summary != nil {
		t.Fatalf("expected ingestion failure, got summary=%v err=%v", summary, err)
	}
}
