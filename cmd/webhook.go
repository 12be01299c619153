package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nudge-cli/nudge/internal/config"
	"github.com/nudge-cli/nudge/internal/notify"
	"github.com/nudge-cli/nudge/internal/output"
	"github.com/nudge-cli/nudge/internal/scheduler"
)

// forwardTimeout bounds how long shutdown waits for webhook posts.
const forwardTimeout = 5 * time.Second

var webhookTestFlagAll bool

// webhookCmd represents the webhook command.
var webhookCmd = &cobra.Command{
	Use:     "webhook",
	Aliases: []string{"wh", "webhooks"},
	Short:   "Show and test the webhooks alerts are posted to",
	Long: `Every alert delivered by 'nudge run' or 'nudge shell' is also posted to
each enabled webhook in the config file:

  webhooks:
    - name: team
      type: slack            # generic, slack, discord or teams
      url: https://hooks.slack.com/services/...
    - name: local
      url: http://localhost:8080/alerts
      template: '{"text": "{{.Title}}: {{.Subtitle}}"}'

Examples:
  nudge webhook list
  nudge webhook test team
  nudge webhook test --all`,
	Annotations: noDB,
	RunE:        runWebhookList,
}

var webhookListCmd = &cobra.Command{
	Use:         "list",
	Aliases:     []string{"ls"},
	Short:       "List configured webhooks",
	Annotations: noDB,
	RunE:        runWebhookList,
}

var webhookTestCmd = &cobra.Command{
	Use:         "test [NAME]",
	Short:       "Send a test alert to a webhook",
	Annotations: noDB,
	Args:        cobra.MaximumNArgs(1),
	RunE:        runWebhookTest,
}

func init() {
	webhookTestCmd.Flags().BoolVar(&webhookTestFlagAll, "all", false, "Test every enabled webhook")
	webhookTestCmd.ValidArgsFunction = completeWebhookArgs

	webhookCmd.AddCommand(webhookListCmd)
	webhookCmd.AddCommand(webhookTestCmd)

	rootCmd.AddCommand(webhookCmd)
}

// alertPresenter forwards alerts to the configured webhooks when there
// are any. The returned func waits for posts still in flight.
func alertPresenter(inner scheduler.Presenter) (scheduler.Presenter, func()) {
	d := notify.NewDispatcher(config.Global.Webhooks)
	if d.Count() == 0 {
		return inner, func() {}
	}
	fw := notify.NewForwarder(inner, d)
	return fw, func() { fw.Close(forwardTimeout) }
}

type webhookInfo struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
}

func runWebhookList(cmd *cobra.Command, args []string) error {
	webhooks := config.Global.Webhooks
	f := formatter()

	if f.IsJSON() {
		infos := make([]webhookInfo, 0, len(webhooks))
		for _, w := range webhooks {
			infos = append(infos, webhookInfo{Name: w.Name, Type: w.Type, URL: w.URL, Enabled: !w.Disabled})
		}
		return f.JSON(map[string]any{"webhooks": infos, "count": len(infos)})
	}

	cli := output.NewCLIFormatter(f)
	if len(webhooks) == 0 {
		cli.Muted("No webhooks configured.")
		cli.Muted("Add them under 'webhooks:' in " + configPath())
		return nil
	}

	rows := make([]output.TableRow, 0, len(webhooks))
	for _, w := range webhooks {
		status := "enabled"
		if w.Disabled {
			status = "disabled"
		}
		rows = append(rows, output.TableRow{Columns: []string{w.Name, w.Type, status, w.URL}})
	}
	cli.PrintTable([]string{"Name", "Type", "Status", "URL"}, rows)
	return nil
}

func runWebhookTest(cmd *cobra.Command, args []string) error {
	d := notify.NewDispatcher(config.Global.Webhooks)
	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sample := notify.SampleNotification(time.Now())
	var results []notify.DispatchResult
	switch {
	case webhookTestFlagAll:
		if d.Count() == 0 {
			return fmt.Errorf("no enabled webhooks to test")
		}
		results = d.Send(c, sample)
	case len(args) == 1:
		results = []notify.DispatchResult{d.SendTo(c, sample, args[0])}
	default:
		return fmt.Errorf("webhook name required (or use --all)")
	}

	f := formatter()
	if f.IsJSON() {
		type jsonResult struct {
			Webhook    string `json:"webhook"`
			Success    bool   `json:"success"`
			StatusCode int    `json:"status_code,omitempty"`
			DurationMS int64  `json:"duration_ms"`
			Error      string `json:"error,omitempty"`
		}
		out := make([]jsonResult, 0, len(results))
		for _, r := range results {
			jr := jsonResult{Webhook: r.WebhookName, Success: r.Success, StatusCode: r.StatusCode, DurationMS: r.Duration.Milliseconds()}
			if r.Error != nil {
				jr.Error = r.Error.Error()
			}
			out = append(out, jr)
		}
		return f.JSON(map[string]any{"results": out})
	}

	cli := output.NewCLIFormatter(f)
	failed := 0
	for _, r := range results {
		if r.Success {
			cli.Success(fmt.Sprintf("%s: delivered (%dms)", r.WebhookName, r.Duration.Milliseconds()))
			continue
		}
		failed++
		cli.Error(fmt.Sprintf("%s: %v", r.WebhookName, r.Error))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d webhooks failed", failed, len(results))
	}
	return nil
}

// configPath returns the config file in use.
func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.DefaultConfigPath()
}
