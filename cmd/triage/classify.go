package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/triage/pkg/directory"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/runner"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Classify a free-text description of symptoms",
	Example: `  triage classify "I have a headache"
  triage classify --doctors --json my chest hurts`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		text, err := runner.Sanitizer{MaxSize: app.Config.Input.MaxSize}.Sanitize(strings.Join(args, " "))
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		match := app.Engine.Classifier().Explain(ctx, text)

		withDoctors, _ := cmd.Flags().GetBool("doctors")
		var doctors []domain.Doctor
		if withDoctors {
			doctors, err = directory.Match(ctx, app.Directory, match.Recommendation, directory.Options{
				Fallback: app.Fallback,
				Limit:    3,
				Logger:   app.Logger,
			})
			if err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				RuleID         string                `json:"rule_id,omitempty"`
				Keyword        string                `json:"keyword,omitempty"`
				Recommendation domain.Recommendation `json:"recommendation"`
				Doctors        []domain.Doctor       `json:"doctors,omitempty"`
			}{match.RuleID, match.Keyword, match.Recommendation, doctors})
		}

		rec := match.Recommendation
		if rec.HasSpecialization() {
			fmt.Fprintf(out, "%s (rule %s, keyword %q)\n", rec.Specialization.DisplayName(), match.RuleID, match.Keyword)
		}
		fmt.Fprintln(out, rec.Message)
		for _, d := range doctors {
			fmt.Fprintf(out, "  - %s, %s <%s>\n", d.FullName, d.Specialization, d.Email)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().Bool("doctors", false, "List doctors for the recommendation")
	classifyCmd.Flags().Bool("json", false, "Print the result as JSON")
}
