package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/funnel-goat/funnel-goat/internal/stats"
	"github.com/funnel-goat/funnel-goat/internal/store"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportTable  string
)

var exportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Export analysis tables",
	Long: `Export the CTR, funnel or revenue analysis table in CSV or JSON format.

Examples:
  fgt export spring-sale --table ctr > ctr.csv
  fgt export spring-sale --table funnel --format json > funnel.json
  fgt export spring-sale --table all --format json > report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format (csv or json)")
	exportCmd.Flags().StringVarP(&exportTable, "table", "t", "ctr", "table to export (ctr, funnel, revenue or all)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	name := args[0]

	if exportFormat != "csv" && exportFormat != "json" {
		return fmt.Errorf("invalid format: must be 'csv' or 'json'")
	}
	switch exportTable {
	case "ctr", "funnel", "revenue", "all":
	default:
		return fmt.Errorf("invalid table: must be 'ctr', 'funnel', 'revenue' or 'all'")
	}
	if exportFormat == "csv" && exportTable == "all" {
		return fmt.Errorf("CSV export needs a single table (--table ctr|funnel|revenue)")
	}

	return withStore(func(s *store.SQLiteStore) error {
		ctx := context.Background()

		report, err := loadReport(ctx, s, name, stats.DefaultConfig())
		if err != nil {
			return err
		}

		if exportFormat == "json" {
			return exportJSON(report)
		}
		return exportCSV(report)
	})
}

func exportJSON(report *stats.Report) error {
	var payload any
	switch exportTable {
	case "ctr":
		payload = report.CTRTable
	case "funnel":
		payload = report.FunnelTable
	case "revenue":
		payload = report.RevenueTable
	default:
		payload = report
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func exportCSV(report *stats.Report) error {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	switch exportTable {
	case "ctr":
		if err := w.Write([]string{"variant", "total_users", "clicked_users", "ctr_percent"}); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		for _, r := range report.CTRTable {
			row := []string{
				r.Variant,
				strconv.Itoa(r.TotalUsers),
				strconv.Itoa(r.ClickedUsers),
				formatFloat(r.CTRPercent),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}

	case "funnel":
		header := []string{
			"variant",
			"step1_page_view", "step2_click", "click_rate", "drop_page_to_click",
			"step3_add_to_cart", "add_to_cart_rate", "drop_click_to_cart",
			"step4_purchase", "purchase_rate", "drop_cart_to_purchase",
		}
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		for _, r := range report.FunnelTable {
			row := []string{
				r.Variant,
				strconv.Itoa(r.Step1PageView),
				strconv.Itoa(r.Step2Click),
				formatFloat(r.ClickRate),
				formatFloat(r.DropPageToClick),
				strconv.Itoa(r.Step3AddToCart),
				formatFloat(r.AddToCartRate),
				formatFloat(r.DropClickToCart),
				strconv.Itoa(r.Step4Purchase),
				formatFloat(r.PurchaseRate),
				formatFloat(r.DropCartToPurchase),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}

	case "revenue":
		if err := w.Write([]string{"variant", "purchasing_users", "total_revenue", "avg_order_value", "revenue_per_user"}); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		for _, r := range report.RevenueTable {
			row := []string{
				r.Variant,
				strconv.Itoa(r.PurchasingUsers),
				formatFloat(r.TotalRevenue),
				formatFloat(r.AvgOrderValue),
				formatFloat(r.RevenuePerUser),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
