package commands

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/wonny/fundlens/internal/s1_universe"
	"github.com/wonny/fundlens/internal/strategyconfig"
)

// promptForCodes asks which whitelisted stocks to analyze, plus free-form codes
func promptForCodes(cfg *strategyconfig.Config) ([]string, error) {
	u := cfg.Universe

	var options []string
	for _, code := range u.Codes() {
		e := u.Stocks[code]
		if !e.IsRecommended() {
			continue
		}
		options = append(options, fmt.Sprintf("%s %s (%s)", code, e.Name, e.Industry))
	}

	var selected []string
	if len(options) > 0 {
		prompt := &survey.MultiSelect{
			Message:  "Select stocks to analyze:",
			Options:  options,
			Help:     fmt.Sprintf("Space to select, enter to confirm. At most %d per batch.", u.MaxBatch),
			PageSize: 12,
		}
		err := survey.AskOne(prompt, &selected, survey.WithValidator(func(val interface{}) error {
			answers, ok := val.([]survey.OptionAnswer)
			if !ok {
				return fmt.Errorf("invalid selection type")
			}
			if len(answers) > u.MaxBatch {
				return fmt.Errorf("select at most %d stocks", u.MaxBatch)
			}
			return nil
		}))
		if err != nil {
			return nil, err
		}
	}

	var extra string
	prompt := &survey.Input{
		Message: "Other stock codes (optional, e.g. 2330, 6669):",
	}
	err := survey.AskOne(prompt, &extra, survey.WithValidator(func(val interface{}) error {
		for _, code := range s1_universe.ParseCodes(fmt.Sprint(val)) {
			if !strategyconfig.ValidCode(code) {
				return fmt.Errorf("%q is not a stock code", code)
			}
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(selected))
	for _, s := range selected {
		codes = append(codes, strings.Fields(s)[0])
	}
	codes = s1_universe.Normalize(append(codes, s1_universe.ParseCodes(extra)...))
	if len(codes) == 0 {
		return nil, fmt.Errorf("no stock selected")
	}
	return codes, nil
}
