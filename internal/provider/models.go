package provider

import "strings"

// ModelType names a kind of upstream data. Each ModelType maps to a specific
// result type documented next to its constant.
type ModelType string

// --- Market data ---
const (
	ModelChart         ModelType = "Chart"         // *models.Chart
	ModelQuoteType     ModelType = "QuoteType"     // *models.QuoteType
	ModelFundamentals  ModelType = "Fundamentals"  // *models.Fundamentals
	ModelProfile       ModelType = "Profile"       // *models.Profile
	ModelCalendar      ModelType = "Calendar"      // *models.Calendar
	ModelEstimates     ModelType = "Estimates"     // *models.Estimates
	ModelNews          ModelType = "News"          // []models.NewsItem
	ModelRealtime      ModelType = "Realtime"      // *models.RealtimePrice
	ModelRealtimeQuote ModelType = "RealtimeQuote" // *models.RealtimeQuote
	ModelEarnings      ModelType = "Earnings"      // *models.Earnings
	ModelBondHistory   ModelType = "BondHistory"   // []models.Bar
	ModelCoinPrice     ModelType = "CoinPrice"     // *models.RealtimePrice
	ModelCoinChart     ModelType = "CoinChart"     // series.Series
)

// --- Regulatory ---
const (
	ModelCompanyTickers ModelType = "CompanyTickers" // []models.CompanyTicker
	ModelSubmissions    ModelType = "Submissions"    // []models.Filing
)

// --- Economy ---
const (
	ModelFredSeries ModelType = "FredSeries" // series.Series
	ModelNIPA       ModelType = "NIPA"       // series.Series
	ModelBLSSeries  ModelType = "BLSSeries"  // series.Series
	ModelIFS        ModelType = "IFS"        // series.Series
)

// AllModels returns every model type, grouped by category.
func AllModels() []ModelType {
	return []ModelType{
		ModelChart, ModelQuoteType, ModelFundamentals, ModelProfile, ModelCalendar,
		ModelEstimates, ModelNews, ModelRealtime, ModelRealtimeQuote, ModelEarnings,
		ModelBondHistory, ModelCoinPrice, ModelCoinChart,
		ModelCompanyTickers, ModelSubmissions,
		ModelFredSeries, ModelNIPA, ModelBLSSeries, ModelIFS,
	}
}

// ParseModel resolves a model name case-insensitively, so "profile" and
// "Profile" both name ModelProfile.
func ParseModel(name string) (ModelType, bool) {
	for _, m := range AllModels() {
		if strings.EqualFold(string(m), name) {
			return m, true
		}
	}
	return "", false
}

// ModelCategory returns the category a model belongs to.
func ModelCategory(m ModelType) string {
	switch m {
	case ModelCompanyTickers, ModelSubmissions:
		return "Regulators"
	case ModelFredSeries, ModelNIPA, ModelBLSSeries, ModelIFS:
		return "Economy"
	default:
		return "Market"
	}
}
