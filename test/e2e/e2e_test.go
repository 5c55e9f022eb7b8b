// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"claims-workers/internal/common/config"
	"claims-workers/internal/common/database"
	"claims-workers/internal/common/genai"
	"claims-workers/internal/common/logger"
	"claims-workers/internal/models"
	"claims-workers/internal/policy"
	"claims-workers/internal/scopediff"

	// Import all worker packages
	checkcompliance "claims-workers/internal/workers/claim/check-compliance"
	comparescopes "claims-workers/internal/workers/claim/compare-scopes"
	detectcarrier "claims-workers/internal/workers/claim/detect-carrier"
	extractcarrierscope "claims-workers/internal/workers/claim/extract-carrier-scope"
	generatesupplement "claims-workers/internal/workers/claim/generate-supplement"
	scoreseverity "claims-workers/internal/workers/claim/score-severity"
	validatescope "claims-workers/internal/workers/claim/validate-scope"
	notifyadjuster "claims-workers/internal/workers/communication/notify-adjuster"
	indexclaimresults "claims-workers/internal/workers/data-access/index-claim-results"
	recordevaluation "claims-workers/internal/workers/data-access/record-evaluation"
	buildclaimreport "claims-workers/internal/workers/infrastructure/build-claim-report"
)

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
)

func TestMain(m *testing.M) {
	var err error

	// Initialize Zeebe client with real connection
	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         "localhost:26500",
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("❌ Failed to connect to Zeebe: %v", err))
	}

	// Initialize logger
	zapLog, _ = zap.NewProduction()

	// Run tests
	code := m.Run()

	// Cleanup
	zeebeClient.Close()
	os.Exit(code)
}

func TestFullE2E(t *testing.T) {
	_, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Load config
	cfg, err := config.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	t.Log("🚀 Starting FULL E2E Test with real services...")

	// 1. Check all external services are available
	assertAllServicesConnectivity(t, cfg)

	// 2. Create DB tables if needed
	createDatabaseTables(t, cfg)

	// 3. Deploy all BPMN files
	deployAllBPMN(t, cfg, zapLog)

	// 4. Test all 11 workers with real execution
	testAllWorkers(t, cfg, zapLog)

	// 5. Run the full pipeline end to end
	testClaimPipeline(t, cfg, zapLog)

	t.Log("✅ ALL TESTS PASSED - Full E2E workflow successful!")
}

func assertAllServicesConnectivity(t *testing.T, cfg *config.Config) {
	t.Log("🔍 Checking service connectivity...")

	// 🔧 FORCE LOCALHOST FOR E2E TESTS
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Elasticsearch.URL = "http://localhost:9200"

	// --- PostgreSQL ---
	db, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "❌ PostgreSQL connection failed")
	assert.NoError(t, db.Ping(context.Background()), "❌ PostgreSQL ping failed")
	db.Close()
	t.Log("✅ PostgreSQL connected")

	// --- Redis ---
	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "❌ Redis client creation failed")
	assert.NoError(t, rdb.Ping(context.Background()), "❌ Redis ping failed")
	t.Log("✅ Redis connected")

	// --- Elasticsearch ---
	esURL := cfg.Database.Elasticsearch.GetURL()
	t.Logf("🔗 Elasticsearch URL: %s", esURL)

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esURL},
	})
	require.NoError(t, err, "❌ Elasticsearch client creation failed")

	res, err := es.Info()
	require.NoError(t, err, "❌ Elasticsearch info request failed")
	assert.False(t, res.IsError(), "❌ Elasticsearch returned error")
	res.Body.Close()
	t.Log("✅ Elasticsearch connected")

	// --- Zeebe ---
	_, err = zeebeClient.NewTopologyCommand().Send(context.Background())
	assert.NoError(t, err, "❌ Zeebe topology request failed")
	t.Log("✅ Zeebe connected")
}

// ==========================
// 2. Database Tables Setup
// ==========================
func createDatabaseTables(t *testing.T, cfg *config.Config) {
	t.Log("🔧 Creating database tables...")

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	db := dbClient.GetDB()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS claim_evaluations (
			id VARCHAR(255) PRIMARY KEY,
			claim_id VARCHAR(255) UNIQUE NOT NULL,
			carrier_name VARCHAR(255),
			verdict VARCHAR(50),
			approval_chance INTEGER,
			critical_issues INTEGER,
			warnings INTEGER,
			supplement_total NUMERIC(12,2),
			severity_score NUMERIC(4,2),
			severity_category VARCHAR(50),
			report JSONB,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		_, err := db.ExecContext(context.Background(), query)
		if err != nil {
			t.Logf("Warning: Failed to create table: %v", err)
		}
	}

	t.Log("✅ Database tables created/verified")
}

// ==========================
// 3. Deploy All BPMN Files
// ==========================
func deployAllBPMN(t *testing.T, _ *config.Config, _ *zap.Logger) {
	t.Log("🏗️ Deploying BPMN files...")

	client := zeebeClient

	// Try multiple possible paths for BPMN directory
	possiblePaths := []string{
		"bpmn",
		"../bpmn",
		"../../bpmn",
		"./bpmn",
	}

	var bpmnDir string
	var files []os.DirEntry
	var err error

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			files, err = os.ReadDir(path)
			if err == nil {
				bpmnDir = path
				t.Logf("📁 Found BPMN directory: %s", bpmnDir)
				break
			}
		}
	}

	if bpmnDir == "" {
		t.Log("⚠️ BPMN directory not found in any expected location, skipping deployment")
		return
	}

	require.NoError(t, err, "❌ Cannot read BPMN directory")

	bpmnCount := 0
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(f.Name()), ".bpmn") {
			continue
		}

		path := fmt.Sprintf("%s/%s", bpmnDir, f.Name())
		t.Logf("📄 Deploying BPMN: %s", path)

		_, err := client.NewDeployResourceCommand().AddResourceFile(path).Send(context.Background())
		if err != nil {
			t.Logf("⚠️ Failed to deploy BPMN %s: %v", f.Name(), err)
		} else {
			t.Logf("✅ Deployed: %s", f.Name())
			bpmnCount++
		}
	}

	if bpmnCount == 0 {
		t.Log("ℹ️ No BPMN files were successfully deployed")
	} else {
		t.Logf("✅ Successfully deployed %d BPMN files", bpmnCount)
	}
}

// mockGenerator points at a non-routable gateway so text generation always
// degrades; the engines are expected to keep their numbers either way.
func mockGenerator() genai.TextGenerator {
	return genai.NewHTTPGenerator(genai.Config{
		BaseURL:    "http://localhost:8080/mock",
		MaxRetries: 1,
		Timeout:    2 * time.Second,
	}, logger.NewNoOpLogger())
}

func newDiffEngine(cfg *config.Config, log logger.Logger) *scopediff.Engine {
	dc := scopediff.DefaultConfig()
	dc.BatchDelay = 0
	return scopediff.NewEngine(dc, mockGenerator(), log)
}

// ==========================
// 4. Test All 11 Workers
// ==========================
func testAllWorkers(t *testing.T, cfg *config.Config, log *zap.Logger) {
	t.Log("🧪 Testing all 11 workers with real execution...")

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	db := dbClient.GetDB()

	esURL := cfg.Database.Elasticsearch.GetURL()
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{esURL}})
	require.NoError(t, err)

	rdbClient, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdbClient.Close()

	rdb := rdbClient.GetClient()

	testCases := []struct {
		name   string
		testFn func(*testing.T, *config.Config, *zap.Logger, *sql.DB, *elasticsearch.Client, *redis.Client)
	}{
		{"detect-carrier", testDetectCarrier},
		{"validate-scope", testValidateScope},
		{"check-compliance", testCheckCompliance},
		{"extract-carrier-scope", testExtractCarrierScope},
		{"compare-scopes", testCompareScopes},
		{"generate-supplement", testGenerateSupplement},
		{"score-severity", testScoreSeverity},
		{"build-claim-report", testBuildClaimReport},
		{"record-evaluation", testRecordEvaluation},
		{"index-claim-results", testIndexClaimResults},
		{"notify-adjuster", testNotifyAdjuster},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.testFn(t, cfg, log, db, es, rdb)
		})
	}
}

// ==========================
// Worker Test Functions
// ==========================

func testDetectCarrier(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := detectcarrier.NewHandler(detectcarrier.LoadConfig(), policy.MustNewStore(), logger.NewZapAdapter(log))

	input := &detectcarrier.Input{
		ClaimID:       "e2e-claim-detect",
		AdjusterEmail: "adjuster@statefarm.com",
	}
	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "State Farm", output.CarrierName)
	assert.True(t, output.Supported)
	assert.NotNil(t, output.CarrierRule)
}

func testValidateScope(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := validatescope.NewHandler(validatescope.LoadConfig(), logger.NewZapAdapter(log))

	input := &validatescope.Input{
		ClaimID:   "e2e-claim-validate",
		ScopeType: "contractor",
		LineItems: []map[string]interface{}{
			{"code": "RFG240", "description": "Laminated shingles", "quantity": 25.0, "unit": "SQ", "unitPrice": 420.0},
			{"code": "RFG410", "description": "Drip edge", "quantity": 110.0, "unit": "LF", "unitPrice": 2.85},
		},
	}
	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, output.Valid)
	assert.Equal(t, 2, output.ItemCount)
	assert.Equal(t, 25.0, output.TotalSquares)
}

func testCheckCompliance(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := checkcompliance.NewHandler(checkcompliance.LoadConfig(), policy.MustNewStore(), logger.NewZapAdapter(log))

	input := &checkcompliance.Input{
		ClaimID:     "e2e-claim-compliance",
		CarrierName: "State Farm",
		LineItems: []models.LineItem{
			{Code: "RFG240", Description: "Laminated shingles", Quantity: 25, Unit: models.UnitSquare, UnitPrice: 420, TotalPrice: 10500},
		},
	}
	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, output.RuleApplied)
	// State Farm requires drip edge; scope without it gets flagged.
	assert.NotEmpty(t, output.Conflicts)
}

func testExtractCarrierScope(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := extractcarrierscope.NewHandler(extractcarrierscope.LoadConfig(), mockGenerator(), rdb, logger.NewZapAdapter(log))

	// Unreachable generator degrades to an empty scope, not an error.
	input := &extractcarrierscope.Input{
		ClaimID:      "e2e-claim-extract",
		DocumentText: "RFG240 Laminated shingles 25 SQ @ 400.00 = 10,000.00",
	}
	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 0, output.ItemCount)
}

func testCompareScopes(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := comparescopes.NewHandler(comparescopes.LoadConfig(), newDiffEngine(cfg, logger.NewZapAdapter(log)), logger.NewZapAdapter(log))

	input := &comparescopes.Input{
		ClaimID: "e2e-claim-compare",
		ContractorScope: []models.LineItem{
			{Code: "RFG240", Description: "Laminated shingles", Quantity: 25, Unit: models.UnitSquare, UnitPrice: 420, TotalPrice: 10500},
			{Code: "RFG410", Description: "Drip edge", Quantity: 110, Unit: models.UnitLinearFoot, UnitPrice: 2.85, TotalPrice: 313.50},
		},
		CarrierScope: []models.LineItem{
			{Code: "RFG240", Description: "Laminated shingles", Quantity: 25, Unit: models.UnitSquare, UnitPrice: 400, TotalPrice: 10000},
		},
		Jurisdiction: models.Jurisdiction{City: "Minneapolis", State: "MN"},
	}
	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, output.MissingCount)
	assert.Equal(t, 1, output.UnderpaidCount)
	assert.Equal(t, 500.0, output.UnderpaidTotal)
	assert.NotEmpty(t, output.CodeUpgrades)
}

func testGenerateSupplement(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := generatesupplement.NewHandler(generatesupplement.LoadConfig(), newDiffEngine(cfg, logger.NewZapAdapter(log)), logger.NewZapAdapter(log))

	input := &generatesupplement.Input{
		ClaimID:     "e2e-claim-supplement",
		CarrierName: "State Farm",
		Comparison: models.ScopeComparison{
			MissingItems: []models.LineItem{
				{Code: "RFG410", Description: "Drip edge", Quantity: 110, Unit: models.UnitLinearFoot, UnitPrice: 2.85, TotalPrice: 313.50},
			},
		},
		Jurisdiction: models.Jurisdiction{State: "MN"},
		Tone:         models.ToneFirm,
	}
	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, output.Arguments, 1)
	// Generation is unavailable; the dollar math still has to hold.
	assert.Equal(t, 313.50, output.Arguments[0].Difference)
	assert.Equal(t, 313.50, output.Totals.Subtotal)
}

func testScoreSeverity(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := scoreseverity.NewHandler(scoreseverity.LoadConfig(), logger.NewZapAdapter(log))

	input := &scoreseverity.Input{
		ClaimID: "e2e-claim-severity",
		DamageZones: []models.DamageZone{
			{
				Name:              "south slope",
				CoveragePercent:   90,
				MaterialCondition: models.ConditionCritical,
				StructuralImpact:  true,
				Urgency:           models.UrgencyCritical,
			},
		},
	}
	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryCatastrophic, output.Category)
	assert.Contains(t, output.CriticalZones, "south slope")
}

func testBuildClaimReport(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := buildclaimreport.NewHandler(buildclaimreport.LoadConfig(), logger.NewZapAdapter(log))

	input := &buildclaimreport.Input{
		ClaimID:     "e2e-claim-report",
		CarrierName: "State Farm",
		Summary: models.ComplianceSummary{
			OverallCompliance:       models.VerdictApproved,
			EstimatedApprovalChance: 95,
		},
		Totals:       models.SupplementTotals{Subtotal: 313.50, Total: 339.36},
		OverallScore: 7.4,
		Category:     models.CategorySevere,
	}
	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.NotEmpty(t, output.ClaimReport)
	assert.NotEmpty(t, output.GeneratedAt)
}

func testRecordEvaluation(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := recordevaluation.NewHandler(&recordevaluation.Config{}, db, logger.NewZapAdapter(log))

	claimID := fmt.Sprintf("e2e-claim-record-%d", time.Now().UnixNano())
	input := &recordevaluation.Input{
		ClaimID:     claimID,
		CarrierName: "State Farm",
		Summary: models.ComplianceSummary{
			OverallCompliance:       models.VerdictApproved,
			EstimatedApprovalChance: 95,
		},
		SupplementAsk: 339.36,
		OverallScore:  7.4,
		Category:      models.CategorySevere,
	}

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err, "Should record evaluation successfully")
	assert.NotEmpty(t, output.EvaluationID, "Should generate evaluation ID")

	// Second run for the same claim is a duplicate.
	_, err = handler.Execute(context.Background(), input)
	assert.ErrorIs(t, err, recordevaluation.ErrDuplicateEvaluation)
}

func testIndexClaimResults(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler := indexclaimresults.NewHandler(indexclaimresults.LoadConfig(), es, logger.NewZapAdapter(log))

	input := &indexclaimresults.Input{
		ClaimID:      fmt.Sprintf("e2e-claim-index-%d", time.Now().UnixNano()),
		EvaluationID: "eval-e2e",
		CarrierName:  "State Farm",
		Summary: models.ComplianceSummary{
			OverallCompliance:       models.VerdictApproved,
			EstimatedApprovalChance: 95,
		},
		Totals:       models.SupplementTotals{Total: 339.36},
		OverallScore: 7.4,
		Category:     models.CategorySevere,
	}
	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, output.Indexed)
	assert.NotEmpty(t, output.DocumentID)
}

func testNotifyAdjuster(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	handler, err := notifyadjuster.NewHandler(&notifyadjuster.Config{
		Timeout:      30 * time.Second,
		AWSRegion:    "us-east-1",
		EmailEnabled: false,
		SNSEnabled:   false,
	}, logger.NewZapAdapter(log))
	require.NoError(t, err)

	input := &notifyadjuster.Input{
		ClaimID:       "e2e-claim-notify",
		AdjusterEmail: "adjuster@example.com",
		CarrierName:   "State Farm",
		Verdict:       models.VerdictApproved,
	}
	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, notifyadjuster.StatusDisabled, output.Status)
}

// ==========================
// 5. Full Claim Pipeline
// ==========================
func testClaimPipeline(t *testing.T, cfg *config.Config, log *zap.Logger) {
	t.Log("🧪 Running the claim pipeline end to end...")

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()
	db := dbClient.GetDB()

	esURL := cfg.Database.Elasticsearch.GetURL()
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{esURL}})
	require.NoError(t, err)

	adapter := logger.NewZapAdapter(log)
	store := policy.MustNewStore()
	diff := newDiffEngine(cfg, adapter)
	claimID := fmt.Sprintf("e2e-pipeline-%d", time.Now().UnixNano())
	ctx := context.Background()

	// Carrier detection
	detect, err := detectcarrier.NewHandler(detectcarrier.LoadConfig(), store, adapter).
		Execute(ctx, &detectcarrier.Input{ClaimID: claimID, AdjusterEmail: "claims@usaa.com"})
	require.NoError(t, err)
	require.Equal(t, "USAA", detect.CarrierName)

	// Contractor scope validation
	validated, err := validatescope.NewHandler(validatescope.LoadConfig(), adapter).
		Execute(ctx, &validatescope.Input{
			ClaimID:   claimID,
			ScopeType: "contractor",
			LineItems: []map[string]interface{}{
				{"code": "RFG300", "description": "Roofing felt", "quantity": 25.0, "unit": "SQ", "unitPrice": 32.50},
				{"code": "RFG240", "description": "Laminated shingles", "quantity": 25.0, "unit": "SQ", "unitPrice": 420.0},
				{"code": "RFG410", "description": "Drip edge", "quantity": 110.0, "unit": "LF", "unitPrice": 2.85},
			},
		})
	require.NoError(t, err)
	require.True(t, validated.Valid)

	// Compliance against the detected carrier
	compliance, err := checkcompliance.NewHandler(checkcompliance.LoadConfig(), store, adapter).
		Execute(ctx, &checkcompliance.Input{
			ClaimID:     claimID,
			CarrierName: detect.CarrierName,
			LineItems:   validated.NormalizedScope,
		})
	require.NoError(t, err)
	require.True(t, compliance.RuleApplied)

	// Scope diff against the carrier estimate
	comparison, err := comparescopes.NewHandler(comparescopes.LoadConfig(), diff, adapter).
		Execute(ctx, &comparescopes.Input{
			ClaimID:         claimID,
			ContractorScope: compliance.AdjustedScope,
			CarrierScope: []models.LineItem{
				{Code: "RFG240", Description: "Laminated shingles", Quantity: 25, Unit: models.UnitSquare, UnitPrice: 400, TotalPrice: 10000},
				{Code: "RFG300", Description: "Roofing felt", Quantity: 25, Unit: models.UnitSquare, UnitPrice: 32.50, TotalPrice: 812.50},
			},
			Jurisdiction: models.Jurisdiction{State: "TX"},
		})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, comparison.MissingCount, 1)

	// Supplement package
	supplement, err := generatesupplement.NewHandler(generatesupplement.LoadConfig(), diff, adapter).
		Execute(ctx, &generatesupplement.Input{
			ClaimID:      claimID,
			CarrierName:  detect.CarrierName,
			Comparison:   comparison.Comparison,
			CodeUpgrades: comparison.CodeUpgrades,
			Jurisdiction: models.Jurisdiction{State: "TX"},
		})
	require.NoError(t, err)
	assert.Greater(t, supplement.Totals.Total, 0.0)

	// Severity
	severity, err := scoreseverity.NewHandler(scoreseverity.LoadConfig(), adapter).
		Execute(ctx, &scoreseverity.Input{
			ClaimID: claimID,
			DamageZones: []models.DamageZone{
				{Name: "south slope", CoveragePercent: 60, MaterialCondition: models.ConditionPoor, Urgency: models.UrgencyHigh},
				{Name: "garage", CoveragePercent: 15, MaterialCondition: models.ConditionGood, Urgency: models.UrgencyLow},
			},
		})
	require.NoError(t, err)
	require.Len(t, severity.ZoneScores, 2)

	// Report assembly
	report, err := buildclaimreport.NewHandler(buildclaimreport.LoadConfig(), adapter).
		Execute(ctx, &buildclaimreport.Input{
			ClaimID:        claimID,
			CarrierName:    detect.CarrierName,
			DetectedFrom:   detect.DetectedFrom,
			Confidence:     detect.Confidence,
			Summary:        compliance.Summary,
			Conflicts:      compliance.Conflicts,
			AdjustedScope:  compliance.AdjustedScope,
			Comparison:     comparison.Comparison,
			Arguments:      supplement.Arguments,
			Totals:         supplement.Totals,
			OverallScore:   severity.OverallScore,
			Category:       severity.Category,
			CriticalZones:  severity.CriticalZones,
			RepairPriority: severity.RepairPriority,
		})
	require.NoError(t, err)
	require.NotEmpty(t, report.ClaimReport)

	// Persist to PostgreSQL
	recorded, err := recordevaluation.NewHandler(&recordevaluation.Config{}, db, adapter).
		Execute(ctx, &recordevaluation.Input{
			ClaimID:       claimID,
			CarrierName:   detect.CarrierName,
			Summary:       compliance.Summary,
			SupplementAsk: supplement.Totals.Total,
			OverallScore:  severity.OverallScore,
			Category:      severity.Category,
			ClaimReport:   report.ClaimReport,
		})
	require.NoError(t, err)

	// Index for search
	indexed, err := indexclaimresults.NewHandler(indexclaimresults.LoadConfig(), es, adapter).
		Execute(ctx, &indexclaimresults.Input{
			ClaimID:      claimID,
			EvaluationID: recorded.EvaluationID,
			CarrierName:  detect.CarrierName,
			Summary:      compliance.Summary,
			Totals:       supplement.Totals,
			OverallScore: severity.OverallScore,
			Category:     severity.Category,
			ClaimReport:  report.ClaimReport,
		})
	require.NoError(t, err)
	assert.True(t, indexed.Indexed)

	t.Logf("✅ Pipeline complete for %s: verdict=%s supplement=%.2f severity=%s",
		claimID, compliance.Summary.OverallCompliance, supplement.Totals.Total, severity.Category)
}

// ==========================
// Benchmark Tests
// ==========================
func BenchmarkHandler_DetectCarrier(b *testing.B) {
	handler := detectcarrier.NewHandler(detectcarrier.LoadConfig(), policy.MustNewStore(), logger.NewStructured("info", "json"))

	input := &detectcarrier.Input{
		ClaimID:       "bench-claim",
		AdjusterEmail: "adjuster@statefarm.com",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}

func BenchmarkHandler_ValidateScope(b *testing.B) {
	handler := validatescope.NewHandler(validatescope.LoadConfig(), logger.NewStructured("info", "json"))

	input := &validatescope.Input{
		ClaimID: "bench-claim",
		LineItems: []map[string]interface{}{
			{"code": "RFG240", "description": "Laminated shingles", "quantity": 25.0, "unit": "SQ", "unitPrice": 420.0},
			{"code": "RFG300", "description": "Roofing felt", "quantity": 25.0, "unit": "SQ", "unitPrice": 32.50},
			{"code": "RFG410", "description": "Drip edge", "quantity": 110.0, "unit": "LF", "unitPrice": 2.85},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}

func BenchmarkHandler_CheckCompliance(b *testing.B) {
	handler := checkcompliance.NewHandler(checkcompliance.LoadConfig(), policy.MustNewStore(), logger.NewStructured("info", "json"))

	input := &checkcompliance.Input{
		ClaimID:     "bench-claim",
		CarrierName: "State Farm",
		LineItems: []models.LineItem{
			{Code: "RFG240", Description: "Laminated shingles", Quantity: 25, Unit: models.UnitSquare, UnitPrice: 420, TotalPrice: 10500},
			{Code: "RFG410", Description: "Drip edge", Quantity: 110, Unit: models.UnitLinearFoot, UnitPrice: 2.85, TotalPrice: 313.50},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}

func BenchmarkHandler_CompareScopes(b *testing.B) {
	log := logger.NewStructured("info", "json")
	dc := scopediff.DefaultConfig()
	dc.BatchDelay = 0
	diff := scopediff.NewEngine(dc, mockGenerator(), log)
	handler := comparescopes.NewHandler(comparescopes.LoadConfig(), diff, log)

	input := &comparescopes.Input{
		ClaimID: "bench-claim",
		ContractorScope: []models.LineItem{
			{Code: "RFG240", Description: "Laminated shingles", Quantity: 25, Unit: models.UnitSquare, UnitPrice: 420, TotalPrice: 10500},
			{Code: "RFG410", Description: "Drip edge", Quantity: 110, Unit: models.UnitLinearFoot, UnitPrice: 2.85, TotalPrice: 313.50},
		},
		CarrierScope: []models.LineItem{
			{Code: "RFG240", Description: "Laminated shingles", Quantity: 25, Unit: models.UnitSquare, UnitPrice: 400, TotalPrice: 10000},
		},
		Jurisdiction: models.Jurisdiction{State: "TX"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}

func BenchmarkHandler_ScoreSeverity(b *testing.B) {
	handler := scoreseverity.NewHandler(scoreseverity.LoadConfig(), logger.NewStructured("info", "json"))

	input := &scoreseverity.Input{
		ClaimID: "bench-claim",
		DamageZones: []models.DamageZone{
			{Name: "south slope", CoveragePercent: 90, MaterialCondition: models.ConditionCritical, StructuralImpact: true, Urgency: models.UrgencyCritical},
			{Name: "north slope", CoveragePercent: 60, MaterialCondition: models.ConditionPoor, Urgency: models.UrgencyHigh},
			{Name: "garage", CoveragePercent: 15, MaterialCondition: models.ConditionGood, Urgency: models.UrgencyLow},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}

func BenchmarkHandler_BuildClaimReport(b *testing.B) {
	handler := buildclaimreport.NewHandler(buildclaimreport.LoadConfig(), logger.NewStructured("info", "json"))

	input := &buildclaimreport.Input{
		ClaimID:     "bench-claim",
		CarrierName: "State Farm",
		Summary: models.ComplianceSummary{
			OverallCompliance:       models.VerdictApproved,
			EstimatedApprovalChance: 95,
		},
		Totals:       models.SupplementTotals{Subtotal: 313.50, Total: 339.36},
		OverallScore: 7.4,
		Category:     models.CategorySevere,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}
