// Package charts renders statistics as interactive go-echarts HTML pages.
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/EDH-Tracker/internal/colors"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// Kind names a renderable chart.
type Kind string

const (
	KindLifetime Kind = "lifetime"
	KindMonthly  Kind = "monthly"
	KindColors   Kind = "colors"
)

// Kinds lists every chart kind.
var Kinds = []Kind{KindLifetime, KindMonthly, KindColors}

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string   // Chart title
	Subtitle string   // Chart subtitle
	Width    string   // Chart width (e.g., "900px")
	Height   string   // Chart height (e.g., "500px")
	Theme    string   // Chart theme
	Smooth   bool     // Smooth line (for line charts)
	Colors   []string // Series palette
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:  "900px",
		Height: "500px",
		Theme:  "light",
		Smooth: true,
		Colors: []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// Renderer is satisfied by every go-echarts chart.
type Renderer interface {
	Render(w io.Writer) error
}

// manaHex colors the mono-colored pie slices.
var manaHex = map[string]string{
	"W": "#F8E7B9",
	"U": "#0E68AB",
	"B": "#150B00",
	"R": "#D3202A",
	"G": "#00733E",
	"C": "#A69F9D",
}

func globalOptions(config ChartConfig, trigger string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: trigger,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
	}
}

// LifetimeChart draws one games-played line per year across Jan..Dec.
func LifetimeChart(lifetime models.LifetimeGP, config ChartConfig) *charts.Line {
	if config.Title == "" {
		config.Title = "Games Played by Month"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(config, "axis")...)

	months := make([]string, len(lifetime.Data))
	for i, point := range lifetime.Data {
		months[i] = point.Month
	}
	line.SetXAxis(months)

	for i, year := range lifetime.Years {
		data := make([]opts.LineData, len(lifetime.Data))
		for j, point := range lifetime.Data {
			data[j] = opts.LineData{Value: point.Counts[year]}
		}

		line.AddSeries(year, data).
			SetSeriesOptions(
				charts.WithLineChartOpts(opts.LineChart{
					Smooth: opts.Bool(config.Smooth),
				}),
				charts.WithItemStyleOpts(opts.ItemStyle{
					Color: config.Colors[i%len(config.Colors)],
				}),
			)
	}

	return line
}

// MonthlyChart draws stacked win/loss bars per month.
func MonthlyChart(monthly []models.MonthlyStat, config ChartConfig) *charts.Bar {
	if config.Title == "" {
		config.Title = "Wins and Losses by Month"
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(config, "axis")...)

	months := make([]string, len(monthly))
	wins := make([]opts.BarData, len(monthly))
	losses := make([]opts.BarData, len(monthly))
	for i, m := range monthly {
		months[i] = m.Month
		wins[i] = opts.BarData{Value: m.Wins}
		losses[i] = opts.BarData{Value: m.Losses}
	}

	bar.SetXAxis(months).
		AddSeries("Wins", wins, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#3BA272"})).
		AddSeries("Losses", losses, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#EE6666"})).
		SetSeriesOptions(
			charts.WithBarChartOpts(opts.BarChart{Stack: "games"}),
		)

	return bar
}

// ColorChart draws the distribution of winning color identities.
func ColorChart(colorStats []models.ColorStat, config ChartConfig) *charts.Pie {
	if config.Title == "" {
		config.Title = "Winning Color Identities"
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(globalOptions(config, "item")...)

	data := make([]opts.PieData, len(colorStats))
	for i, c := range colorStats {
		color, ok := manaHex[c.Colors]
		if !ok {
			color = config.Colors[i%len(config.Colors)]
		}
		data[i] = opts.PieData{
			Name:      colors.Label(c.Colors),
			Value:     c.Count,
			ItemStyle: &opts.ItemStyle{Color: color},
		}
	}

	pie.AddSeries("Winner colors", data).
		SetSeriesOptions(
			charts.WithPieChartOpts(opts.PieChart{
				Radius: []string{"35%", "70%"},
			}),
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c}",
			}),
		)

	return pie
}

// Build creates the chart of the given kind from a dashboard.
func Build(kind Kind, dashboard models.Dashboard, config ChartConfig) (Renderer, error) {
	switch kind {
	case KindLifetime:
		return LifetimeChart(dashboard.Lifetime, config), nil
	case KindMonthly:
		return MonthlyChart(dashboard.Monthly, config), nil
	case KindColors:
		return ColorChart(dashboard.Colors, config), nil
	default:
		return nil, fmt.Errorf("unknown chart kind %q", kind)
	}
}

// RenderFile renders chart into an HTML file at outputPath.
func RenderFile(chart Renderer, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := chart.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return nil
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
