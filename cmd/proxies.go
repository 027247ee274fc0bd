package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/proxy6/filter"
	"github.com/s0up4200/proxy6/proxy6"
)

var (
	// list flags
	stateFlag  string
	descrFlag  string
	filterExpr string
	preset     string

	// mutation flags
	noConfirm   bool
	oldDescr    string
	removeAuth  bool
	buyCount    int
	buyPeriod   int
	buyCountry  string
	buyType     string
	autoProlong bool
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your proxies",
	Long: `List the proxies on your account. The list can be narrowed by state and
technical description on the server side, and by an expr filter expression
on the client side, for example:

  proxy6 list --filter 'isSocks() and expiresWithin(3)'`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var setTypeCmd = &cobra.Command{
	Use:   "set-type <http|socks> <id>...",
	Short: "Change the protocol of proxies",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSetType,
}

var setDescrCmd = &cobra.Command{
	Use:   "set-descr <new> [id...]",
	Short: "Change the technical description of proxies",
	Long: `Change the technical description of proxies, selected either by ids or
by their current description (--old). Exactly one selector must be given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSetDescr,
}

var buyCmd = &cobra.Command{
	Use:   "buy",
	Short: "Buy proxies",
	Args:  cobra.NoArgs,
	RunE:  runBuy,
}

var prolongCmd = &cobra.Command{
	Use:   "prolong <period> <id>...",
	Short: "Renew proxies for a number of days",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runProlong,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id...]",
	Short: "Delete proxies",
	Long:  `Delete proxies selected either by ids or by technical description (--descr).`,
	RunE:  runDelete,
}

var checkCmd = &cobra.Command{
	Use:   "check <id>...",
	Short: "Check whether proxies are working",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

var ipAuthCmd = &cobra.Command{
	Use:   "ipauth [ip...]",
	Short: "Bind proxy authorization to IP addresses",
	Long:  `Bind proxy authorization to the given IP addresses, or remove the binding with --delete.`,
	RunE:  runIPAuth,
}

func init() {
	listCmd.Flags().StringVarP(&stateFlag, "state", "s", "all", "proxy state: active, expired, expiring, all")
	listCmd.Flags().StringVar(&descrFlag, "descr", "", "only proxies with this technical description")
	listCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	listCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	listCmd.Flags().BoolVar(&jsonOutput, "json", false, "print proxies as JSON")

	setDescrCmd.Flags().StringVar(&oldDescr, "old", "", "select proxies by their current description")

	buyCmd.Flags().IntVarP(&buyCount, "count", "n", 1, "number of proxies")
	buyCmd.Flags().IntVar(&buyPeriod, "period", 30, "period in days")
	buyCmd.Flags().StringVar(&buyCountry, "country", "", "country ISO2 code")
	buyCmd.Flags().StringVarP(&versionFlag, "version", "v", "6", "proxy version: 6 (ipv6), 4 (ipv4), 3 (ipv4 shared)")
	buyCmd.Flags().StringVar(&buyType, "type", "http", "proxy protocol: http or socks")
	buyCmd.Flags().StringVar(&descrFlag, "descr", "", "technical description")
	buyCmd.Flags().BoolVar(&autoProlong, "auto-prolong", false, "enable automatic renewal")
	_ = buyCmd.MarkFlagRequired("country")

	deleteCmd.Flags().StringVar(&descrFlag, "descr", "", "select proxies by technical description")

	ipAuthCmd.Flags().BoolVar(&removeAuth, "delete", false, "remove IP based authorization")

	for _, c := range []*cobra.Command{buyCmd, prolongCmd, deleteCmd} {
		c.Flags().BoolVarP(&noConfirm, "yes", "y", false, "skip confirmation prompt")
	}

	rootCmd.AddCommand(listCmd, setTypeCmd, setDescrCmd, buyCmd, prolongCmd, deleteCmd, checkCmd, ipAuthCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	state, err := proxy6.ParseState(stateFlag)
	if err != nil {
		return err
	}

	expression, err := getFilterExpression()
	if err != nil {
		return err
	}

	var exprFilter *filter.ExprFilter
	if expression != "" {
		exprFilter, err = filter.CompileExprFilter(expression)
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
		logger.Debug().Str("filter", expression).Msg("Filtering proxies")
	}

	resp, err := client.GetProxies(cmd.Context(), state, descrFlag)
	if err != nil {
		return fmt.Errorf("failed to list proxies: %w", err)
	}

	proxies := resp.List()
	if exprFilter != nil {
		proxies, err = exprFilter.Apply(proxies)
		if err != nil {
			return err
		}
	}

	if jsonOutput {
		return printJSON(proxies)
	}

	if len(proxies) == 0 {
		fmt.Println("No proxies found matching the criteria.")
		return nil
	}

	fmt.Printf("\nFound %d proxies:\n", len(proxies))
	fmt.Println(strings.Repeat("-", 80))

	now := time.Now()
	for _, p := range proxies {
		status := "inactive"
		if p.Active {
			status = "active"
		}
		fmt.Printf("• #%s %s\n", p.ID, p.URI())
		fmt.Printf("  %s, %s, %s, %s", strings.ToUpper(p.Country), p.Version, p.Type, status)
		if !p.DateEnd.IsZero() {
			fmt.Printf(", expires %s (%d days left)", p.DateEnd.Format("2006-01-02"), p.DaysLeft(now))
		}
		fmt.Println()
		if p.Description != "" {
			fmt.Printf("  Description: %s\n", p.Description)
		}
	}

	return nil
}

// getFilterExpression determines the filter expression to use
func getFilterExpression() (string, error) {
	// Priority: command line filter > preset > default preset
	if filterExpr != "" {
		return filterExpr, nil
	}

	if preset != "" {
		return cfg.Preset(preset)
	}

	if cfg.Filter.Default != "" {
		return cfg.Preset(cfg.Filter.Default)
	}

	return "", nil
}

func runSetType(cmd *cobra.Command, args []string) error {
	typ, err := proxy6.ParseProtocol(args[0])
	if err != nil {
		return err
	}
	ids := splitList(args[1:])

	if _, err := client.SetType(cmd.Context(), ids, typ); err != nil {
		return fmt.Errorf("failed to change proxy type: %w", err)
	}

	fmt.Printf("✓ Changed %d proxies to %s\n", len(ids), typ)
	return nil
}

func runSetDescr(cmd *cobra.Command, args []string) error {
	ids := splitList(args[1:])

	resp, err := client.SetDescription(cmd.Context(), args[0], oldDescr, ids)
	if err != nil {
		return fmt.Errorf("failed to change description: %w", err)
	}

	fmt.Printf("✓ Updated description of %d proxies\n", resp.Count)
	return nil
}

func runBuy(cmd *cobra.Command, args []string) error {
	version, err := proxy6.ParseVersion(versionFlag)
	if err != nil {
		return err
	}
	typ, err := proxy6.ParseProtocol(buyType)
	if err != nil {
		return err
	}

	req := proxy6.BuyRequest{
		Count:       buyCount,
		Period:      buyPeriod,
		Country:     strings.ToLower(buyCountry),
		Version:     version,
		Type:        typ,
		Description: descrFlag,
		AutoProlong: autoProlong,
	}

	if !noConfirm {
		price, err := client.GetPrice(cmd.Context(), req.Count, req.Period, req.Version)
		if err != nil {
			return fmt.Errorf("failed to get price: %w", err)
		}
		question := fmt.Sprintf("Buy %d %s %s proxies in %s for %d days at %s %s?",
			req.Count, version, typ, strings.ToUpper(req.Country), req.Period, price.Price.StringFixed(2), price.Currency)
		if !confirm(question) {
			logger.Info().Msg("Purchase cancelled")
			return nil
		}
	}

	resp, err := client.Buy(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to buy proxies: %w", err)
	}

	fmt.Printf("✓ Bought %d proxies for %s %s\n", resp.Count, resp.Price.StringFixed(2), resp.Currency)
	for _, p := range resp.List() {
		fmt.Printf("  #%s %s (until %s)\n", p.ID, p.URI(), p.DateEnd.Format("2006-01-02"))
	}
	printBalance(resp.Response)
	return nil
}

func runProlong(cmd *cobra.Command, args []string) error {
	period, err := parsePositive("period", args[0])
	if err != nil {
		return err
	}
	ids := splitList(args[1:])

	if !noConfirm && !confirm(fmt.Sprintf("Renew %d proxies for %d days?", len(ids), period)) {
		logger.Info().Msg("Renewal cancelled")
		return nil
	}

	resp, err := client.Prolong(cmd.Context(), period, ids)
	if err != nil {
		return fmt.Errorf("failed to renew proxies: %w", err)
	}

	fmt.Printf("✓ Renewed %d proxies for %s %s\n", resp.Count, resp.Price.StringFixed(2), resp.Currency)
	for _, id := range slices.Sorted(maps.Keys(resp.Proxies)) {
		fmt.Printf("  #%s until %s\n", id, resp.Proxies[id].DateEnd.Format("2006-01-02 15:04"))
	}
	printBalance(resp.Response)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ids := splitList(args)

	selector := fmt.Sprintf("%d proxies", len(ids))
	if len(ids) == 0 {
		selector = fmt.Sprintf("all proxies described %q", descrFlag)
	}

	// Invalid selector combinations are rejected by the client without a prompt
	if !noConfirm && (len(ids) == 0) != (descrFlag == "") && !confirm("Delete "+selector+"?") {
		logger.Info().Msg("Deletion cancelled")
		return nil
	}

	resp, err := client.Delete(cmd.Context(), ids, descrFlag)
	if err != nil {
		return fmt.Errorf("failed to delete proxies: %w", err)
	}

	fmt.Printf("✓ Deleted %d proxies\n", resp.Count)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	ids := splitList(args)

	if len(ids) == 1 {
		resp, err := client.Check(cmd.Context(), ids[0])
		if err != nil {
			return fmt.Errorf("failed to check proxy: %w", err)
		}
		fmt.Printf("Proxy #%s: %s\n", ids[0], boolToStatus(resp.ProxyStatus))
		return nil
	}

	result := client.CheckBatch(cmd.Context(), ids)

	fmt.Printf("Checked %d proxies: %d working, %d not working, %d failed\n",
		result.Requested, len(result.Valid), len(result.Invalid), len(result.Failed))
	for _, id := range result.Invalid {
		fmt.Printf("  ✗ #%s not working\n", id)
	}
	for _, failure := range result.Failed {
		fmt.Printf("  ! %v\n", failure)
	}

	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d checks failed", len(result.Failed), result.Requested)
	}
	return nil
}

func runIPAuth(cmd *cobra.Command, args []string) error {
	ips := splitList(args)

	if _, err := client.IPAuth(cmd.Context(), ips, removeAuth); err != nil {
		return fmt.Errorf("failed to update IP authorization: %w", err)
	}

	if removeAuth {
		fmt.Println("✓ IP authorization removed")
	} else {
		fmt.Printf("✓ Authorization bound to %s\n", strings.Join(ips, ", "))
	}
	return nil
}

func boolToStatus(b bool) string {
	if b {
		return "working"
	}
	return "not working"
}
