package scoring

// Rule is one (predicate, result) pair of a first-match cascade.
type Rule[In, Out any] struct {
	Name string
	When func(In) bool
	Then Out
}

// Chain evaluates rules top-down and returns the first match.
// Rule order is significant: later rules assume earlier ones were false.
type Chain[In, Out any] struct {
	Rules []Rule[In, Out]
	Else  Out
}

// Eval returns the result of the first matching rule, or Else.
func (c Chain[In, Out]) Eval(in In) Out {
	out, _ := c.Match(in)
	return out
}

// Match is Eval plus the name of the rule that fired ("else" when none did).
func (c Chain[In, Out]) Match(in In) (Out, string) {
	for _, r := range c.Rules {
		if r.When(in) {
			return r.Then, r.Name
		}
	}
	return c.Else, "else"
}

// Tier maps a composite score to action text by descending floors.
type Tier struct {
	Min    float64
	Action string
}

// TierFor returns the action of the first tier whose floor score reaches,
// or fallback when none does. tiers must be sorted by Min descending.
func TierFor(tiers []Tier, score float64, fallback string) string {
	for _, t := range tiers {
		if score >= t.Min {
			return t.Action
		}
	}
	return fallback
}
