package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/proxy6/proxy6"
)

var (
	versionFlag string
	jsonOutput  bool
)

var priceCmd = &cobra.Command{
	Use:   "price <count> <period>",
	Short: "Show the price of an order",
	Long:  `Show what count proxies of a version cost for period days.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runPrice,
}

var countCmd = &cobra.Command{
	Use:   "count <country>",
	Short: "Show how many proxies can be bought in a country",
	Args:  cobra.ExactArgs(1),
	RunE:  runCount,
}

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List the countries a proxy version is sold in",
	Args:  cobra.NoArgs,
	RunE:  runCountries,
}

func init() {
	for _, c := range []*cobra.Command{priceCmd, countCmd, countriesCmd} {
		c.Flags().StringVarP(&versionFlag, "version", "v", "6", "proxy version: 6 (ipv6), 4 (ipv4), 3 (ipv4 shared)")
		c.Flags().BoolVar(&jsonOutput, "json", false, "print the raw response as JSON")
		rootCmd.AddCommand(c)
	}
}

func runPrice(cmd *cobra.Command, args []string) error {
	count, err := parsePositive("count", args[0])
	if err != nil {
		return err
	}
	period, err := parsePositive("period", args[1])
	if err != nil {
		return err
	}
	version, err := proxy6.ParseVersion(versionFlag)
	if err != nil {
		return err
	}

	resp, err := client.GetPrice(cmd.Context(), count, period, version)
	if err != nil {
		return fmt.Errorf("failed to get price: %w", err)
	}
	if jsonOutput {
		return printJSON(resp.Raw)
	}

	fmt.Printf("%d × %s for %d days: %s %s (%s per proxy per day)\n",
		resp.Count, version, resp.Period, resp.Price.StringFixed(2), resp.Currency, resp.PriceSingle.String())
	printBalance(resp.Response)
	return nil
}

func runCount(cmd *cobra.Command, args []string) error {
	version, err := proxy6.ParseVersion(versionFlag)
	if err != nil {
		return err
	}

	country := strings.ToLower(args[0])
	resp, err := client.GetCount(cmd.Context(), country, version)
	if err != nil {
		return fmt.Errorf("failed to get count: %w", err)
	}
	if jsonOutput {
		return printJSON(resp.Raw)
	}

	fmt.Printf("%d %s proxies available in %s\n", resp.Count, version, strings.ToUpper(country))
	return nil
}

func runCountries(cmd *cobra.Command, args []string) error {
	version, err := proxy6.ParseVersion(versionFlag)
	if err != nil {
		return err
	}

	resp, err := client.GetCountries(cmd.Context(), version)
	if err != nil {
		return fmt.Errorf("failed to get countries: %w", err)
	}
	if jsonOutput {
		return printJSON(resp.Raw)
	}

	fmt.Printf("%s proxies are available in %d countries:\n", version, len(resp.Countries))
	fmt.Println(strings.ToUpper(strings.Join(resp.Countries, ", ")))
	return nil
}

func printBalance(r proxy6.Response) {
	if r.Currency == "" {
		return
	}
	fmt.Printf("Balance: %s %s\n", r.Balance.StringFixed(2), r.Currency)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parsePositive(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	return n, nil
}
