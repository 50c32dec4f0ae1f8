package evaluation

// RiskCategory is one of the four fixed risk keys.
type RiskCategory string

const (
	RiskMarket      RiskCategory = "market"
	RiskFinancial   RiskCategory = "financial"
	RiskOperational RiskCategory = "operational"
	RiskCompetitive RiskCategory = "competitive"
)

// RiskCategories is the fixed presentation order.
var RiskCategories = []RiskCategory{RiskMarket, RiskFinancial, RiskOperational, RiskCompetitive}

// RiskFullMark is the top of the risk score scale.
const RiskFullMark = 10

// Label is the display name of the category.
func (c RiskCategory) Label() string {
	switch c {
	case RiskMarket:
		return "Market"
	case RiskFinancial:
		return "Financial"
	case RiskOperational:
		return "Operational"
	case RiskCompetitive:
		return "Competitive"
	}
	return string(c)
}

// Get returns the assessment for a category.
func (r Risks) Get(c RiskCategory) (RiskAssessment, bool) {
	switch c {
	case RiskMarket:
		return r.Market, true
	case RiskFinancial:
		return r.Financial, true
	case RiskOperational:
		return r.Operational, true
	case RiskCompetitive:
		return r.Competitive, true
	}
	return RiskAssessment{}, false
}

// RiskPoint is one row of radar-chart data.
type RiskPoint struct {
	Subject  string       `json:"subject"`
	Key      RiskCategory `json:"key"`
	Score    int          `json:"score"`
	FullMark int          `json:"fullMark"`
}

// RiskChart returns exactly four rows in RiskCategories order.
func (r *Result) RiskChart() []RiskPoint {
	if r == nil {
		return nil
	}
	out := make([]RiskPoint, 0, len(RiskCategories))
	for _, c := range RiskCategories {
		a, _ := r.Risks.Get(c)
		out = append(out, RiskPoint{Subject: c.Label(), Key: c, Score: a.Score, FullMark: RiskFullMark})
	}
	return out
}
