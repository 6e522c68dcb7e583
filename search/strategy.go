package search

// Strategy names the query plan chosen for a set of criteria.
type Strategy string

const (
	StrategyExactID         Strategy = "exact_id"
	StrategyCompositeKey    Strategy = "composite_key"
	StrategyNameAndEmployer Strategy = "name_and_employer"
	StrategyNameOnly        Strategy = "name_only"
	StrategyEmployerOnly    Strategy = "employer_only"
	StrategyNone            Strategy = "none"
)

// SelectStrategy picks the most selective strategy the criteria support.
// The first applicable strategy in priority order wins.
func SelectStrategy(c Criteria) Strategy {
	hasName := c.EmployeeName != ""
	hasEmployer := c.EmployerID != ""

	switch {
	case c.NationalID != "" && hasEmployer:
		return StrategyExactID
	case hasName && hasEmployer && c.EmploymentStartDate != "":
		return StrategyCompositeKey
	case hasName && hasEmployer:
		return StrategyNameAndEmployer
	case hasName:
		return StrategyNameOnly
	case hasEmployer:
		return StrategyEmployerOnly
	default:
		return StrategyNone
	}
}

// noResultsTip is added to empty responses.
func (s Strategy) noResultsTip() string {
	switch s {
	case StrategyExactID:
		return "Try checking National ID format or employer ID"
	case StrategyCompositeKey:
		return "Try relaxing date criteria or check spelling"
	case StrategyNameAndEmployer:
		return "Try using partial matching or check name spelling"
	case StrategyNone:
		return "Please provide at least employee name or employer ID"
	default:
		return ""
	}
}

// resultsTip is added to non-empty responses.
func (s Strategy) resultsTip() string {
	switch s {
	case StrategyNameOnly:
		return "Consider adding employer filter for more precise results"
	case StrategyEmployerOnly:
		return "All employees for this employer - add name filter to narrow results"
	default:
		return ""
	}
}
