package credits

import "time"

// StartingBalance is granted to every new account.
const StartingBalance = 500

// Feature identifies a metered AI feature.
type Feature string

const (
	FeatureJobFitAnalysis Feature = "job_fit_analysis"
	FeatureCoverLetter    Feature = "cover_letter"
	FeatureTailoredResume Feature = "tailored_resume"
)

// prices is the fixed cost table. Costs are whole credits.
var prices = map[Feature]int{
	FeatureJobFitAnalysis: 2,
	FeatureCoverLetter:    10,
	FeatureTailoredResume: 20,
}

// PriceOf returns the fixed cost of a feature.
func PriceOf(feature Feature) (int, bool) {
	cost, ok := prices[feature]
	return cost, ok
}

// Account is a user's credit balance snapshot.
type Account struct {
	UserID    string    `json:"-"`
	Balance   int       `json:"balance"`
	Used      int       `json:"used"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DebitResult is the outcome of a TryDebit call. Allowed=false is a normal
// outcome, not an error: the caller must not perform the metered action.
type DebitResult struct {
	Allowed bool
	Cost    int
	Balance int
	Used    int
}

func defaultAccount(userID string, now time.Time) Account {
	return Account{
		UserID:    userID,
		Balance:   StartingBalance,
		Used:      0,
		UpdatedAt: now,
	}
}
