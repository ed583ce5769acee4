package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taxoclass/internal/config"
)

const healthCheckTimeout = 30 * time.Second

func newModelsCommand(ctx *commandContext) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List candidate models in fallback order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			headers := []string{"#", "Provider", "Model", "Credential"}
			aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}
			rows := make([][]string, 0, len(cfg.Models))
			for i, m := range cfg.Models {
				rows = append(rows, []string{strconv.Itoa(i + 1), m.Provider, m.Name, yesNo(hasCredential(cfg, m.Provider))})
			}

			if check {
				providers, err := buildProviders(cmd.Context(), cfg, false)
				if err != nil {
					return err
				}
				headers = append(headers, "Status")
				for i, m := range cfg.Models {
					rows[i] = append(rows[i], checkModel(cmd.Context(), providers.checker(m.Provider), m))
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Send a minimal request to each candidate to verify access")
	return cmd
}

func hasCredential(cfg *config.Config, provider string) bool {
	switch provider {
	case config.ProviderGemini:
		return strings.TrimSpace(cfg.Gemini.APIKey) != ""
	case config.ProviderOpenRouter:
		return strings.TrimSpace(cfg.OpenRouter.APIKey) != ""
	default:
		return false
	}
}

func checkModel(ctx context.Context, checker healthChecker, m config.Model) string {
	if checker == nil {
		return "no client"
	}
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	start := time.Now()
	if err := checker.HealthCheck(ctx, m.Name); err != nil {
		return "error: " + err.Error()
	}
	return "ok (" + time.Since(start).Round(time.Millisecond).String() + ")"
}
