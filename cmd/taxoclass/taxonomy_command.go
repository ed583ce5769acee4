package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"taxoclass/internal/exemplar"
	"taxoclass/internal/taxonomy"
)

func newTaxonomyCommand(ctx *commandContext) *cobra.Command {
	taxonomyCmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Inspect the taxonomy prompts are grounded on",
	}
	taxonomyCmd.AddCommand(newTaxonomyShowCommand(ctx))
	taxonomyCmd.AddCommand(newTaxonomyContextCommand(ctx))
	return taxonomyCmd
}

func newTaxonomyShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List the active taxonomy as a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			cat := openCatalog(cmd.Context(), cfg, logger)
			if cat == nil {
				return fmt.Errorf("catalog %s is unavailable", cfg.Catalog.Path)
			}
			defer cat.Close()

			forest, err := taxonomy.Load(cmd.Context(), cat)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if forest.Empty() {
				fmt.Fprintln(out, "No active taxonomy nodes.")
				return nil
			}

			var rows [][]string
			forest.Walk(func(t *taxonomy.Tree, depth int) {
				rows = append(rows, []string{
					t.Node.Kind.String(),
					strings.Repeat("  ", depth) + t.Node.Name,
					t.Node.ID,
					strconv.Itoa(len(t.Children)),
				})
			})
			fmt.Fprintln(out, renderTable([]string{"Level", "Name", "ID", "Children"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
			fmt.Fprintf(out, "%d pillars, %d subcomponents, %d competences, %d behaviors\n",
				forest.Count(taxonomy.KindPillar),
				forest.Count(taxonomy.KindSubcomponent),
				forest.Count(taxonomy.KindCompetence),
				forest.Count(taxonomy.KindBehavior),
			)
			return nil
		},
	}
}

func newTaxonomyContextCommand(ctx *commandContext) *cobra.Command {
	var withExemplars bool

	cmd := &cobra.Command{
		Use:   "context",
		Short: "Print the taxonomy block exactly as prompts carry it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			cat := openCatalog(cmd.Context(), cfg, logger)
			if cat != nil {
				defer cat.Close()
			}

			var forest taxonomy.Forest
			if cat != nil {
				forest, err = taxonomy.Load(cmd.Context(), cat)
				if err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, taxonomy.Serialize(forest, taxonomy.SerializeOptions{BehaviorBudget: cfg.Prompt.BehaviorBudget}))

			if withExemplars {
				var source exemplar.Source
				if cat != nil {
					source = cat
				}
				sampler := exemplar.NewSampler(source, exemplar.Options{
					Limit:        cfg.Prompt.ExemplarLimit,
					ExcerptChars: cfg.Prompt.ExemplarExcerptChars,
				}, logger)
				if block := sampler.Block(cmd.Context()); block != "" {
					fmt.Fprintln(out)
					fmt.Fprint(out, block)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withExemplars, "exemplars", false, "Also print the approved examples block")
	return cmd
}
