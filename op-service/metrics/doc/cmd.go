package doc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/testnet-faucet/op-service/metrics"
)

type Metrics interface {
	Document() []metrics.DocumentedMetric
}

const (
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

// NewSubcommands returns the `doc` subcommands of a service binary.
func NewSubcommands(m Metrics) cli.Commands {
	return cli.Commands{
		{
			Name:  "metrics",
			Usage: "Dumps a list of supported metrics to stdout",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "format",
					Value: formatMarkdown,
					Usage: "Output format (json|markdown)",
				},
			},
			Action: func(ctx *cli.Context) error {
				supportedMetrics := m.Document()
				switch format := ctx.String("format"); format {
				case formatMarkdown:
					table := tablewriter.NewWriter(ctx.App.Writer)
					table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
					table.SetCenterSeparator("|")
					table.SetAutoWrapText(false)
					table.SetHeader([]string{"Metric", "Description", "Labels", "Type"})
					data := make([][]string, 0, len(supportedMetrics))
					for _, metric := range supportedMetrics {
						data = append(data, []string{metric.Name, metric.Help, strings.Join(metric.Labels, ","), metric.Type})
					}
					table.AppendBulk(data)
					table.Render()
					return nil
				case formatJSON:
					enc := json.NewEncoder(ctx.App.Writer)
					enc.SetIndent("", "  ")
					return enc.Encode(supportedMetrics)
				default:
					return fmt.Errorf("invalid format %q", format)
				}
			},
		},
	}
}

