package radiocontrol

import (
	"context"
	"strings"

	"github.com/louisbranch/radiocontrol/internal/services/radio/review"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

func (r *runner) review(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageErrorf("review: a subcommand is required (save|delete|list)")
	}
	switch args[0] {
	case "save":
		return r.reviewSave(ctx, args[1:])
	case "delete":
		return r.reviewDelete(ctx, args[1:])
	case "list":
		return r.reviewList(ctx, args[1:])
	default:
		return usageErrorf("review: unknown subcommand %q", args[0])
	}
}

func (r *runner) reviewSave(ctx context.Context, args []string) error {
	fs := r.flags("review save")
	stationID := fs.String("station", "", "station id")
	date := fs.String("date", r.today(), "review date (YYYY-MM-DD)")
	estado := fs.String("estado", "", "review status (activo|problema|inactivo)")
	notas := fs.String("notas", "", "notes")
	if err := r.parse(fs, args); err != nil {
		return err
	}
	parsed, err := storage.ParseEstado(*estado)
	if err != nil {
		return err
	}
	outcome, err := r.svc.SaveReview(ctx, review.Input{
		StationID: strings.TrimSpace(*stationID),
		Fecha:     strings.TrimSpace(*date),
		Estado:    parsed,
		Notas:     *notas,
	})
	if err != nil {
		return err
	}
	if r.cfg.JSONOutput {
		view := newReviewView(outcome.Review)
		view.Created = &outcome.Created
		return r.writeJSON(view)
	}
	if outcome.Created {
		r.println("cli.review.created", outcome.Review.ID)
	} else {
		r.println("cli.review.updated", outcome.Review.ID)
	}
	return nil
}

func (r *runner) reviewDelete(ctx context.Context, args []string) error {
	fs := r.flags("review delete")
	id := fs.String("id", "", "review id")
	if err := r.parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return usageErrorf("review delete: -id is required")
	}
	if err := r.svc.DeleteReview(ctx, *id); err != nil {
		return err
	}
	if r.cfg.JSONOutput {
		return r.writeJSON(map[string]string{"id": *id})
	}
	r.println("cli.review.deleted", *id)
	return nil
}

func (r *runner) reviewList(ctx context.Context, args []string) error {
	fs := r.flags("review list")
	date := fs.String("date", "", "reviews of this date")
	stationID := fs.String("station", "", "reviews of this station")
	if err := r.parse(fs, args); err != nil {
		return err
	}
	byDate := strings.TrimSpace(*date) != ""
	byStation := strings.TrimSpace(*stationID) != ""
	if byDate == byStation {
		return usageErrorf("review list: exactly one of -date or -station is required")
	}

	var (
		reviews []storage.Review
		err     error
	)
	if byDate {
		reviews, err = r.svc.ReviewsByDate(ctx, strings.TrimSpace(*date))
	} else {
		reviews, err = r.svc.ReviewsByStation(ctx, strings.TrimSpace(*stationID))
	}
	if err != nil {
		return err
	}

	if r.cfg.JSONOutput {
		views := make([]reviewView, 0, len(reviews))
		for _, rv := range reviews {
			views = append(views, newReviewView(rv))
		}
		return r.writeJSON(views)
	}
	rows := make([][]string, 0, len(reviews))
	for _, rv := range reviews {
		rows = append(rows, []string{rv.ID, rv.StationID, rv.Fecha, string(rv.Estado), rv.HoraRevision, rv.Notas})
	}
	return r.table("cli.header.reviews", nil, rows)
}
