package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finance-ledger/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultSeedTransactions = 50
	seedHistoryDays         = 90
	unexpectedRate          = 0.03
)

type sampleMerchant struct {
	name      string
	category  string
	minAmount float64
	maxAmount float64
}

// merchantPool mixes merchants the default rules cover with ones they do
// not, so a seeded ledger has both categorized and queued transactions
var merchantPool = []sampleMerchant{
	{"WALMART SUPERCENTER", "Groceries", 15, 250},
	{"KROGER", "Groceries", 15, 180},
	{"TRADER JOE'S", "Groceries", 10, 120},
	{"WHOLE FOODS MARKET", "Groceries", 20, 220},
	{"STARBUCKS", "Dining", 4, 18},
	{"CHIPOTLE MEXICAN GRILL", "Dining", 9, 40},
	{"PANERA BREAD", "Dining", 8, 35},
	{"UBER TRIP", "Transport", 8, 60},
	{"LYFT RIDE", "Transport", 8, 55},
	{"SHELL OIL", "Transport", 25, 80},
	{"NETFLIX.COM", "Entertainment", 10, 23},
	{"SPOTIFY USA", "Entertainment", 10, 17},
	{"AMC THEATRES", "Entertainment", 12, 60},
	{"AMAZON MKTPLACE", "Shopping", 10, 300},
	{"BEST BUY", "Shopping", 30, 600},
	{"IKEA", "Shopping", 20, 400},
	{"RENT PAYMENT", "Housing", 1200, 2400},
	{"PG&E UTILITY", "Housing", 50, 250},
	{"ACME CORP PAYROLL", "Income", 2000, 6000},
}

type sampleRule struct {
	pattern  string
	isRegex  bool
	priority int
	category string
}

var sampleRules = []sampleRule{
	{"walmart", false, 0, "Groceries"},
	{"kroger", false, 0, "Groceries"},
	{"starbucks", false, 0, "Dining"},
	{`^(uber|lyft)\b`, true, 5, "Transport"},
	{"netflix|spotify", true, 0, "Entertainment"},
	{"amazon", false, 0, "Shopping"},
	{"rent payment", false, 10, "Housing"},
	{"payroll", false, 10, "Income"},
}

var sampleCategories = []models.Category{
	{Name: "Groceries", SpendingType: models.SpendingTypeEssential},
	{Name: "Housing", SpendingType: models.SpendingTypeEssential},
	{Name: "Transport", SpendingType: models.SpendingTypeEssential},
	{Name: "Dining", SpendingType: models.SpendingTypeDiscretionary},
	{Name: "Entertainment", SpendingType: models.SpendingTypeDiscretionary},
	{Name: "Shopping", SpendingType: models.SpendingTypeMixed},
	{Name: "Income", SpendingType: models.SpendingTypeUnclassified},
}

// SampleDataService fills a development ledger with plausible data. Sample
// transactions go through the normal ingestion path so the rules categorize
// them.
type SampleDataService struct {
	categoryService       CategoryServiceInterface
	ruleService           CategorizationRuleServiceInterface
	categorizationService CategorizationServiceInterface
	faker                 *gofakeit.Faker
	logger                *slog.Logger
	now                   func() time.Time
}

// NewSampleDataService creates the generator. A zero seed picks a random one.
func NewSampleDataService(
	categoryService CategoryServiceInterface,
	ruleService CategorizationRuleServiceInterface,
	categorizationService CategorizationServiceInterface,
	seed uint64,
	logger *slog.Logger,
) SampleDataServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &SampleDataService{
		categoryService:       categoryService,
		ruleService:           ruleService,
		categorizationService: categorizationService,
		faker:                 gofakeit.New(seed),
		logger:                logger,
		now:                   time.Now,
	}
}

// Seed creates the sample categories and rules that are missing, then ingests
// count generated transactions
func (s *SampleDataService) Seed(ctx context.Context, count int) (*models.SeedSummary, error) {
	if count <= 0 {
		count = defaultSeedTransactions
	}

	summary := &models.SeedSummary{}

	categoryIDs, err := s.ensureCategories(ctx, summary)
	if err != nil {
		return nil, err
	}

	if err := s.ensureRules(ctx, categoryIDs, summary); err != nil {
		return nil, err
	}

	end := s.now().UTC()
	start := end.AddDate(0, 0, -seedHistoryDays)
	transactions := s.GenerateTransactions(count, start, end)

	if err := s.categorizationService.CreateTransactions(ctx, transactions); err != nil {
		return nil, err
	}

	summary.TransactionsCreated = len(transactions)
	for _, t := range transactions {
		if t.CategoryID != nil {
			summary.Categorized++
		}
	}

	s.logger.InfoContext(ctx, "sample data seeded",
		slog.Int("categories_created", summary.CategoriesCreated),
		slog.Int("rules_created", summary.RulesCreated),
		slog.Int("transactions_created", summary.TransactionsCreated),
		slog.Int("categorized", summary.Categorized),
	)

	return summary, nil
}

func (s *SampleDataService) ensureCategories(ctx context.Context, summary *models.SeedSummary) (map[string]uuid.UUID, error) {
	existing, err := s.categoryService.GetAllCategories(ctx)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]uuid.UUID, len(existing))
	for _, c := range existing {
		ids[c.Name] = c.ID
	}

	var missing []*models.Category
	for _, c := range sampleCategories {
		if _, ok := ids[c.Name]; ok {
			continue
		}
		category := c
		missing = append(missing, &category)
	}

	if len(missing) == 0 {
		return ids, nil
	}

	if err := s.categoryService.CreateCategories(ctx, missing); err != nil {
		return nil, err
	}
	for _, c := range missing {
		ids[c.Name] = c.ID
	}
	summary.CategoriesCreated = len(missing)

	return ids, nil
}

func (s *SampleDataService) ensureRules(ctx context.Context, categoryIDs map[string]uuid.UUID, summary *models.SeedSummary) error {
	existing, err := s.ruleService.GetAllRules(ctx)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(existing))
	for _, r := range existing {
		known[strings.ToLower(r.Pattern)] = true
	}

	for _, r := range sampleRules {
		if known[r.pattern] {
			continue
		}
		categoryID, ok := categoryIDs[r.category]
		if !ok {
			continue
		}

		rule := &models.CategorizationRule{
			Pattern:    r.pattern,
			IsRegex:    r.isRegex,
			Priority:   r.priority,
			IsEnabled:  true,
			CategoryID: categoryID,
		}
		if err := s.ruleService.CreateRule(ctx, rule); err != nil {
			return err
		}
		summary.RulesCreated++
	}

	return nil
}

// GenerateTransactions builds count uncategorized transactions dated between
// start and end. Spending is negative and income positive.
func (s *SampleDataService) GenerateTransactions(count int, start, end time.Time) []*models.Transaction {
	transactions := make([]*models.Transaction, 0, count)

	for i := 0; i < count; i++ {
		merchant := merchantPool[s.faker.IntRange(0, len(merchantPool)-1)]

		amount := decimal.NewFromFloat(s.faker.Float64Range(merchant.minAmount, merchant.maxAmount)).Round(2)
		if merchant.category != "Income" {
			amount = amount.Neg()
		}

		date := s.faker.DateRange(start, end).UTC()
		details := fmt.Sprintf("Card ending %04d", s.faker.IntRange(0, 9999))

		transactions = append(transactions, &models.Transaction{
			Date:         time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
			Description:  fmt.Sprintf("%s #%d", merchant.name, s.faker.IntRange(100, 9999)),
			Details:      &details,
			Amount:       amount,
			IsUnexpected: s.faker.Float64Range(0, 1) < unexpectedRate,
		})
	}

	return transactions
}
