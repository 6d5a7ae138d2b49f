package radiocontrol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/louisbranch/radiocontrol/internal/services/radio/history"
	"github.com/louisbranch/radiocontrol/internal/services/radio/snapshot"
)

func (r *runner) stats(ctx context.Context, args []string) error {
	fs := r.flags("stats")
	date := fs.String("date", r.today(), "review date (YYYY-MM-DD)")
	if err := r.parse(fs, args); err != nil {
		return err
	}
	stats, err := r.svc.Statistics(ctx, strings.TrimSpace(*date))
	if err != nil {
		return err
	}
	if r.cfg.JSONOutput {
		return r.writeJSON(newStatisticsView(stats))
	}
	r.println("cli.stats.header", stats.Fecha)
	r.println("cli.stats.total", stats.Total)
	r.println("cli.stats.active", stats.Activas)
	r.println("cli.stats.problems", stats.ConProblemas)
	r.println("cli.stats.inactive", stats.Inactivas)
	r.println("cli.stats.unreviewed", stats.SinRevisar)
	r.println("cli.stats.progress", stats.ProgressPercent())
	return nil
}

func (r *runner) summary(ctx context.Context, args []string) error {
	fs := r.flags("summary")
	date := fs.String("date", r.today(), "review date (YYYY-MM-DD)")
	if err := r.parse(fs, args); err != nil {
		return err
	}
	groups, err := r.svc.Summary(ctx, strings.TrimSpace(*date))
	if err != nil {
		return err
	}
	if r.cfg.JSONOutput {
		views := make([]summaryView, 0, len(groups))
		for _, group := range groups {
			views = append(views, summaryView{Departamento: group.Departamento, statisticsView: newStatisticsView(group.Statistics)})
		}
		return r.writeJSON(views)
	}
	rows := make([][]string, 0, len(groups))
	for _, group := range groups {
		rows = append(rows, []string{
			group.Departamento,
			strconv.Itoa(group.Total),
			strconv.Itoa(group.Activas),
			strconv.Itoa(group.ConProblemas),
			strconv.Itoa(group.Inactivas),
			strconv.Itoa(group.SinRevisar),
			strconv.Itoa(group.ProgressPercent()) + "%",
		})
	}
	return r.table("cli.header.summary", nil, rows)
}

func (r *runner) export(ctx context.Context, args []string) error {
	fs := r.flags("export")
	path := fs.String("out", "", `output file ("-" for stdout, default radio-backup-<timestamp>.json)`)
	if err := r.parse(fs, args); err != nil {
		return err
	}
	target := strings.TrimSpace(*path)
	if target == "" {
		target = snapshot.BackupFileName(r.now())
	}

	var buf bytes.Buffer
	counts, err := r.svc.Export(ctx, &buf)
	if err != nil {
		return err
	}
	if target == "-" {
		_, err := r.out.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(target, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	if r.cfg.JSONOutput {
		return r.writeJSON(map[string]any{"file": target, "stations": counts.Stations, "reviews": counts.Reviews})
	}
	r.println("cli.export.ok", counts.Stations, counts.Reviews, target)
	return nil
}

func (r *runner) importData(ctx context.Context, args []string) error {
	fs := r.flags("import")
	path := fs.String("in", "", "backup file to import")
	if err := r.parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*path) == "" {
		return usageErrorf("import: -in is required")
	}
	file, err := os.Open(*path)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer file.Close()

	counts, err := r.svc.Import(ctx, file)
	if err != nil {
		return err
	}
	if r.cfg.JSONOutput {
		return r.writeJSON(map[string]int{"stations": counts.Stations, "reviews": counts.Reviews})
	}
	r.println("cli.import.ok", counts.Stations, counts.Reviews)
	return nil
}

func (r *runner) history(ctx context.Context, args []string) error {
	fs := r.flags("history")
	var q history.Query
	fs.StringVar(&q.Action, "action", "", "only this action (create|update|delete|review|import|login|logout)")
	fs.StringVar(&q.Entity, "entity", "", "only this entity (station|review|system)")
	fs.StringVar(&q.Search, "search", "", "case-insensitive search")
	fs.IntVar(&q.Limit, "limit", 50, "max entries")
	path := fs.String("out", "", "write the listed entries as JSON to this file")
	save := fs.Bool("export", false, "write the listed entries to historial_<timestamp>.json")
	if err := r.parse(fs, args); err != nil {
		return err
	}
	entries, err := r.svc.History(ctx, q)
	if err != nil {
		return err
	}
	views := make([]historyView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, newHistoryView(entry))
	}

	target := strings.TrimSpace(*path)
	if target == "" && *save {
		target = history.ExportFileName(r.now())
	}
	if target != "" {
		return r.saveHistory(target, views)
	}
	if r.cfg.JSONOutput {
		return r.writeJSON(views)
	}
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.Timestamp.Local().Format(timestampLayout),
			entry.User,
			string(entry.Action),
			string(entry.Entity),
			entry.Details,
		})
	}
	return r.table("cli.header.history", nil, rows)
}

func (r *runner) saveHistory(target string, views []historyView) error {
	data, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.WriteFile(target, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if r.cfg.JSONOutput {
		return r.writeJSON(map[string]any{"file": target, "entries": len(views)})
	}
	r.println("cli.history.exported", len(views), target)
	return nil
}
