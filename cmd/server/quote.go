package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"silosremeco/backend/internal/pricing"
	"silosremeco/backend/internal/store"
)

func newQuoteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quote <name>",
		Short: "Print the display price of a catalog item",
		Long: `Computes the price of one item with the preferences in force and prints it
the way the site shows it. When the item cannot be priced the reason is printed
next to the fallback display.

Examples:
  silos quote 12
  silos quote Autoconsumo --env-file .env.production`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close(log)

			name := strings.TrimSpace(args[0])
			item, err := a.repo.GetItemByName(ctx, name)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no catalog item named %q", name)
			}
			if err != nil {
				return err
			}
			prefs, err := a.repo.GetPreferences(ctx)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}

			out := cmd.OutOrStdout()
			price, reason := a.calculator.Quote(name, prefs, *item)
			if reason != nil {
				fmt.Fprintf(out, "%s\t%s\t(%v)\n", name, a.formatter.Format(price), reason)
				return nil
			}
			fmt.Fprintf(out, "%s\t%s\n", name, a.formatter.Format(price))
			for _, key := range sortedOptionKeys(item.SelectableOptions()) {
				optionPrice := pricing.OptionPrice(price, key, prefs)
				if pricing.Available(optionPrice) {
					fmt.Fprintf(out, "  %s\t%s\n", item.Options[key], a.formatter.Format(optionPrice))
				}
			}
			if prefs.OffersFiberBase(item.Name) {
				fmt.Fprintf(out, "  base de fibra\t%s\n", a.formatter.Format(a.calculator.AccessoryPrice(prefs)))
			}
			return nil
		},
	}
}

func sortedOptionKeys(options map[string]string) []string {
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, store.CompareNames)
	return keys
}
