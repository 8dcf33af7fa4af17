package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/stratuslocal/stratus/pkg/registry"
)

var (
	statusAdminPort int
	statusOutput    string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show emulator status",
	Long: `Query the admin health endpoint of a running emulator and display the
per-service status.

Examples:
  # Check status (default admin port)
  stratus status

  # Check status with a custom admin port
  stratus status --admin-port 9500

  # Output as JSON
  stratus status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusAdminPort, "admin-port", 9400, "admin listener port")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "output format (table|json)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	if statusOutput != "table" && statusOutput != "json" {
		return fmt.Errorf("invalid output format %q (want table or json)", statusOutput)
	}

	url := fmt.Sprintf("http://localhost:%d/health/services", statusAdminPort)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("emulator is not reachable on admin port %d: %w", statusAdminPort, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned %s", resp.Status)
	}

	var health registry.Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to decode health response: %w", err)
	}

	if statusOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(health)
	}

	fmt.Printf("Status:  %s\n", health.Status)
	fmt.Printf("Region:  %s\n", health.Region)
	fmt.Printf("Account: %s\n", health.Account)
	fmt.Printf("Uptime:  %s\n\n", health.Uptime)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Service", "Port", "Status"})
	for _, svc := range health.Services {
		table.Append([]string{svc.Name, fmt.Sprintf("%d", svc.Port), svc.Status})
	}
	table.Render()
	return nil
}
