package dashboard

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/qepting91/reddit-stream-monitor/internal/domain"
)

// StartServer serves the hit log charts on addr. It blocks.
func StartServer(dataFile, addr string, logger *slog.Logger) error {
	return http.ListenAndServe(addr, Handler(dataFile, logger))
}

// Handler renders the charts from dataFile on every request.
func Handler(dataFile string, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		hits, err := loadData(dataFile)
		if err != nil && !os.IsNotExist(err) {
			logger.Warn("Dashboard could not read hit log", "path", dataFile, "err", err)
		}

		page := components.NewPage()
		page.PageTitle = "Submission Monitor"
		page.AddCharts(flairPie(hits), keywordBar(hits), alertPie(hits))
		if err := page.Render(w); err != nil {
			logger.Error("Dashboard render failed", "err", err)
		}
	})
	return mux
}

// 1. Flair color distribution
func flairPie(hits []domain.Hit) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Flair Classes"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)
	counts := make(map[string]int)
	for _, h := range hits {
		if h.FlairColor != "" {
			counts[h.FlairColor]++
		}
	}
	var items []opts.PieData
	for _, k := range sortedKeys(counts) {
		items = append(items, opts.PieData{Name: k, Value: counts[k]})
	}
	pie.AddSeries("Submissions", items)
	return pie
}

// 2. Keyword velocity
func keywordBar(hits []domain.Hit) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Keyword Hits"}))

	counts := make(map[string]int)
	for _, h := range hits {
		for _, k := range h.KeywordsHit {
			counts[k]++
		}
	}
	var x []string
	var y []opts.BarData
	for _, k := range sortedKeys(counts) {
		x = append(x, k)
		y = append(y, opts.BarData{Value: counts[k]})
	}
	bar.SetXAxis(x).AddSeries("Mentions", y)
	return bar
}

// 3. Alerted vs silent
func alertPie(hits []domain.Hit) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Alerts"}))
	alerted := 0
	for _, h := range hits {
		if h.Alerted {
			alerted++
		}
	}
	pie.AddSeries("Submissions", []opts.PieData{
		{Name: "alerted", Value: alerted},
		{Name: "silent", Value: len(hits) - alerted},
	})
	return pie
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func loadData(path string) ([]domain.Hit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var hits []domain.Hit
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var h domain.Hit
		if err := json.Unmarshal(scanner.Bytes(), &h); err == nil {
			hits = append(hits, h)
		}
	}
	return hits, scanner.Err()
}
