// Product catalog commands.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lector/pkg/types"
)

var productsLimit int

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Look up the local product catalog",
}

var productsFindCmd = &cobra.Command{
	Use:   "find <code>",
	Short: "Find a product by code, ignoring leading zeros",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("products find: %w", err))
		}
		defer backend.Detach()

		p, err := backend.FindProduct(args[0])
		if err != nil {
			return fmt.Errorf("products find: %w", err)
		}

		if flagJSON {
			return printJSON(cmd.OutOrStdout(), p)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.Code, p.Description)
		return nil
	},
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalog in sync order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("products list: %w", err))
		}
		defer backend.Detach()

		products, err := backend.ListProducts()
		if err != nil {
			return sysErr(fmt.Errorf("products list: %w", err))
		}
		total := len(products)
		if productsLimit > 0 && productsLimit < total {
			products = products[:productsLimit]
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, products)
		}
		if total == 0 {
			fmt.Fprintln(out, "Catalog is empty. Run `lector sync`.")
			return nil
		}
		printTable(out, []string{"CODE", "DESCRIPTION"}, productRows(products))
		fmt.Fprintf(out, "Total: %d product(s)\n", total)
		return nil
	},
}

func productRows(products []types.Product) [][]string {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{p.Code, truncate(p.Description, 50)})
	}
	return rows
}

func init() {
	productsListCmd.Flags().IntVar(&productsLimit, "limit", 0, "maximum number of rows (0 = no limit)")

	productsCmd.AddCommand(productsFindCmd)
	productsCmd.AddCommand(productsListCmd)
}
