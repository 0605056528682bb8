package cmd

import (
	"github.com/huangsam/leaguerank/core"
	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/spf13/cobra"
)

// predictCmd ranks every team of a season.
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the final table for a season.",
	Long: `Train the rank model on every season before the target year and predict
where each team will finish.

For each team the model sees recency-weighted averages of its past seasons
plus a recent form score, which nudges the predicted position toward the
direction the team is trending. Bootstrap resampling adds a confidence
interval per team, and when actual positions are known the report shows
accuracy, interval coverage and the biggest misses.

Examples:
  # Predict the season after the latest one in the dataset
  leaguerank predict --data pl-tables-1993-2023.csv

  # Backtest 2023 against its actual table with 500 bootstrap samples
  leaguerank predict --year 2023 --bootstrap 500

  # Only a few teams, with an external file of actual outcomes
  leaguerank predict --year 2024 --teams "Arsenal,Chelsea,Liverpool" --outcomes actual-2024.csv

  # Include the cross-validation score and export a workbook
  leaguerank predict --validate --output xlsx --output-file predictions.xlsx`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePredict(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run prediction", err)
		}
	},
}

// validateCmd runs temporal cross-validation.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Score the rank model with time-sliced cross-validation.",
	Long: `Train on every season up to each fold's training end year and score the
predictions for the fold's test seasons with the coefficient of determination.

Folds never leak future seasons into training. A fold with no training rows
or fewer than two test predictions is reported but not scored.

Examples:
  # Default folds 2013:2014-2016, 2016:2017-2019, 2019:2020-2023
  leaguerank validate

  # Custom folds as JSON
  leaguerank validate --folds "2010:2011-2015,2015:2016-2020" --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteValidate(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run validation", err)
		}
	},
}

// formCmd prints team feature profiles.
var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Show the weighted history and recent form of teams.",
	Long: `Print the recency-weighted season averages and recent form score the rank
model would see for each team.

Examples:
  leaguerank form --teams "Arsenal,Tottenham" --year 2024
  leaguerank form --teams Everton --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteForm(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build team form", err)
		}
	},
}
