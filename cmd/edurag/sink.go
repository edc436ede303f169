package main

import (
	"context"
	"fmt"
	"io"

	"github.com/edurag/tutorcli/internal/model"
	"github.com/edurag/tutorcli/internal/render"
	"github.com/edurag/tutorcli/internal/state"
)

// consoleSink prints reconciliation outcomes as they happen and keeps the
// materials cache in step, so anything rendered from the cache between
// notifications shows the badge the user was just told about. The terminal
// notifications name the material, mirroring the toast messages of the web UI.
type consoleSink struct {
	out   io.Writer
	state *state.App
}

func (s *consoleSink) StatusChanged(m *model.Material, previous model.Status) {
	s.state.SetStatus(m.ID, m.Status)
	badge := render.NewStatusBadge(m.Status)
	fmt.Fprintf(s.out, "%s %s: %s -> %s\n", badge.Icon, m.Title, previous, m.Status)
}

func (s *consoleSink) Completed(m *model.Material) {
	fmt.Fprintf(s.out, "✅ Processing completed for: %s\n", m.Title)
}

func (s *consoleSink) Failed(m *model.Material) {
	fmt.Fprintf(s.out, "❌ Processing failed for: %s\n", m.Title)
}

func (s *consoleSink) Exhausted(id string, attempts int) {
	// Deliberately quiet; the record stays visible as-is and the user can
	// re-run materials list later.
}

// listRefresher reloads the materials cache after a terminal transition so
// the textbook selector and the visible list reflect the new state.
type listRefresher struct {
	app *app
	out io.Writer
}

// RefreshSelector re-fetches the materials list, which is what the ask
// command's textbook selector is built from.
func (r *listRefresher) RefreshSelector(ctx context.Context) {
	if err := r.app.loadMaterials(ctx); err != nil {
		r.app.log.Warn("refresh selector", "error", err.Error())
	}
}

// RefreshMaterials re-renders the list from the refreshed cache.
func (r *listRefresher) RefreshMaterials(ctx context.Context) {
	if r.out == nil {
		return
	}
	for _, m := range r.app.state.Materials() {
		fmt.Fprintln(r.out, render.MaterialLine(render.NewMaterialRow(&m)))
	}
}
