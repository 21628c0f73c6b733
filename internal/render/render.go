package render

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/riftstats/riftstats/internal/domain"
	"github.com/riftstats/riftstats/internal/stats"
)

//go:embed index.html.tmpl
var indexTemplate string

// Report holds everything the dashboard template needs
type Report struct {
	Summoner         domain.Summoner
	LastUpdate       string
	ChampionStats    []domain.ChampionStats
	RecentMatches    []domain.Match
	AvailablePatches []string
	AvailableModes   []domain.ModeOption
	DDragonVersion   string
	AllMatchesJSON   template.JS
	GeneratedAt      string
}

// Renderer generates the static HTML dashboard
type Renderer struct {
	tmpl        *template.Template
	outputDir   string
	recentCount int
}

// New creates a Renderer writing into outputDir
func New(outputDir string, recentCount int) (*Renderer, error) {
	tmpl, err := template.New("index").Funcs(template.FuncMap{
		"queueName": domain.QueueName,
		"duration":  domain.FormatDuration,
		"gameTime":  domain.FormatGameTime,
	}).Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing dashboard template: %w", err)
	}
	return &Renderer{tmpl: tmpl, outputDir: outputDir, recentCount: recentCount}, nil
}

// Generate computes the dashboard data from the stored matches and writes
// <outputDir>/index.html
func (r *Renderer) Generate(summoner domain.Summoner, lastUpdate string, matches []domain.Match, ddragonVersion string, now time.Time) error {
	allMatches, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("encoding matches: %w", err)
	}

	report := Report{
		Summoner:         summoner,
		LastUpdate:       lastUpdate,
		ChampionStats:    stats.Champions(matches, stats.PeriodAll, stats.ModeAll, now),
		RecentMatches:    stats.Recent(matches, r.recentCount),
		AvailablePatches: stats.AvailablePatches(matches),
		AvailableModes:   stats.AvailableModes(matches),
		DDragonVersion:   ddragonVersion,
		AllMatchesJSON:   template.JS(allMatches),
		GeneratedAt:      now.Format("2006-01-02 15:04:05"),
	}

	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	outputPath := filepath.Join(r.outputDir, "index.html")
	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := r.tmpl.Execute(out, report); err != nil {
		out.Close()
		return fmt.Errorf("rendering dashboard: %w", err)
	}
	return out.Close()
}
