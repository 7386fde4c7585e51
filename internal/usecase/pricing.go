package usecase

import (
	"context"
	"slices"
	"strings"

	"phone-repair/internal/dto/request"
	"phone-repair/internal/dto/response"
)

// Issue labels as shown to customers.
const (
	IssueScreen       = "Επισκευή Οθόνης"
	IssueBattery      = "Αντικατάσταση Μπαταρίας"
	IssueChargingPort = "Θύρα Φόρτισης"
	IssueRearCamera   = "Πίσω Κάμερα"
	IssueBackGlass    = "Πίσω Τζάμι"
	IssueSpeaker      = "Ηχείο"
)

// BrandOther is offered for devices that are quoted on inspection.
const BrandOther = "Other"

var issueOrder = []string{
	IssueScreen,
	IssueBattery,
	IssueChargingPort,
	IssueRearCamera,
	IssueBackGlass,
	IssueSpeaker,
}

type issuePrices map[string]float64

func prices(screen, battery, port, camera, glass, speaker float64) issuePrices {
	return issuePrices{
		IssueScreen:       screen,
		IssueBattery:      battery,
		IssueChargingPort: port,
		IssueRearCamera:   camera,
		IssueBackGlass:    glass,
		IssueSpeaker:      speaker,
	}
}

// priceTable is brand -> model -> issue -> price in EUR.
var priceTable = map[string]map[string]issuePrices{
	"iPhone": {
		"11": prices(119, 45, 49, 89, 79, 39),
		"12": prices(149, 49, 55, 99, 89, 45),
		"13": prices(179, 55, 59, 119, 99, 49),
		"14": prices(219, 65, 69, 139, 119, 55),
		"15": prices(269, 75, 79, 159, 139, 59),
	},
	"Samsung": {
		"Galaxy S21": prices(159, 49, 55, 99, 79, 39),
		"Galaxy S22": prices(189, 55, 59, 109, 89, 45),
		"Galaxy S23": prices(219, 59, 65, 129, 99, 49),
		"Galaxy A54": prices(119, 45, 49, 69, 59, 35),
	},
	"Xiaomi": {
		"Redmi Note 12": prices(79, 35, 39, 49, 39, 29),
		"13T":           prices(129, 45, 49, 79, 59, 35),
	},
	BrandOther: {},
}

// PriceFor looks up a single repair. Unknown brand, model or issue yields 0,
// meaning the price is quoted on inspection.
func PriceFor(brand, model, issue string) float64 {
	return priceTable[brand][model][issue]
}

// CleanIssues trims issue labels and drops blanks and repeats, keeping order.
func CleanIssues(issues []string) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		issue = strings.TrimSpace(issue)
		if issue == "" || slices.Contains(out, issue) {
			continue
		}
		out = append(out, issue)
	}
	return out
}

// QuoteRepair prices every issue and returns the lines in input order with their sum.
func QuoteRepair(brand, model string, issues []string) ([]response.QuoteLine, float64) {
	lines := make([]response.QuoteLine, 0, len(issues))
	var total float64
	for _, issue := range issues {
		price := PriceFor(brand, model, issue)
		lines = append(lines, response.QuoteLine{Issue: issue, Price: price})
		total += price
	}
	return lines, total
}

type PricingService interface {
	GetPriceTable(ctx context.Context) *response.PriceTableResponse
	Quote(ctx context.Context, req *request.QuoteRequest) (*response.QuoteResponse, error)
}

type pricingService struct{}

func NewPricingService() PricingService {
	return &pricingService{}
}

func (s *pricingService) GetPriceTable(ctx context.Context) *response.PriceTableResponse {
	brands := make(map[string]map[string]map[string]float64, len(priceTable))
	for brand, models := range priceTable {
		out := make(map[string]map[string]float64, len(models))
		for model, issues := range models {
			out[model] = make(map[string]float64, len(issues))
			for issue, price := range issues {
				out[model][issue] = price
			}
		}
		brands[brand] = out
	}

	issues := make([]string, len(issueOrder))
	copy(issues, issueOrder)

	return &response.PriceTableResponse{Brands: brands, Issues: issues}
}

func (s *pricingService) Quote(ctx context.Context, req *request.QuoteRequest) (*response.QuoteResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	brand := strings.TrimSpace(req.Brand)
	model := strings.TrimSpace(req.Model)
	lines, total := QuoteRepair(brand, model, CleanIssues(req.Issues))

	return &response.QuoteResponse{
		Brand: brand,
		Model: model,
		Lines: lines,
		Total: total,
	}, nil
}
