// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

package creds

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/juju/collections/set"
	"github.com/klauspost/compress/zstd"

	"github.com/toeirei/credmaster/internal/i18n"
	"github.com/toeirei/credmaster/internal/logging"
)

// HostSink receives the deduplicated hosts of a listing run with -R.
type HostSink interface {
	SetTargetHosts(ctx context.Context, hosts []string) error
}

// Reporter writes listings and carries out their side effects.
type Reporter struct {
	Out    io.Writer
	Sink   HostSink
	Styled bool
}

var (
	colorSubtle = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// List runs one listing: fetch candidates, project them and commit the
// result. It returns the number of destroyed cores.
func List(ctx context.Context, repo Repository, workspaceID int64, spec *FilterSpec, r *Reporter) (int, error) {
	cores, err := Query(ctx, repo, workspaceID, spec)
	if err != nil {
		return 0, err
	}
	return r.Commit(ctx, repo, spec, Project(spec, cores))
}

// Commit renders or exports the rows, hands hosts to the sink and destroys
// the doomed cores, in that order. A failed export stops before anything is
// destroyed.
func (r *Reporter) Commit(ctx context.Context, repo Repository, spec *FilterSpec, p Projection) (int, error) {
	if spec.Output != "" {
		if err := WriteCSV(spec.Output, p.Rows); err != nil {
			return 0, err
		}
		_, _ = fmt.Fprintln(r.Out, i18n.T("creds.wrote_csv", spec.Output))
	} else {
		r.RenderTable(p.Rows)
	}

	if spec.RHosts && r.Sink != nil {
		if err := r.Sink.SetTargetHosts(ctx, UniqueHosts(p.Rows)); err != nil {
			return 0, err
		}
	}

	if !spec.Delete {
		return 0, nil
	}
	deleted := 0
	for _, id := range p.Doomed {
		if err := repo.DestroyCore(ctx, id); err != nil {
			return deleted, &RepositoryError{Op: fmt.Sprintf("destroy credential %d", id), Err: err}
		}
		deleted++
	}
	logging.Debugf("creds: destroyed %d cores", deleted)
	_, _ = fmt.Fprintln(r.Out, i18n.T("creds.deleted", deleted))
	return deleted, nil
}

// RenderTable writes rows as a console table under the listing title.
func (r *Reporter) RenderTable(rows []Row) {
	title := i18n.T("creds.table_title")
	if r.Styled {
		title = titleStyle.Render(title)
	} else {
		title += "\n" + strings.Repeat("=", len(title))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Columns...)
	for _, row := range rows {
		t = t.Row(row.Values()...)
	}
	if r.Styled {
		t = t.BorderStyle(lipgloss.NewStyle().Foreground(colorSubtle)).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
	}
	_, _ = fmt.Fprintf(r.Out, "\n%s\n\n%s\n\n", title, t.String())
}

// WriteCSV overwrites path with the header and rows. Paths ending in .zst
// are zstd compressed.
func WriteCSV(path string, rows []Row) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &IOError{Path: path, Err: cerr}
		}
	}()

	var w io.Writer = f
	if strings.HasSuffix(path, ".zst") {
		zw, zerr := zstd.NewWriter(f)
		if zerr != nil {
			return &IOError{Path: path, Err: fmt.Errorf("could not create zstd writer: %w", zerr)}
		}
		defer func() {
			if cerr := zw.Close(); cerr != nil && err == nil {
				err = &IOError{Path: path, Err: cerr}
			}
		}()
		w = zw
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return &IOError{Path: path, Err: err}
	}
	for _, row := range rows {
		if err := cw.Write(row.Values()); err != nil {
			return &IOError{Path: path, Err: err}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}

// UniqueHosts returns the non-blank row hosts in first-seen order.
func UniqueHosts(rows []Row) []string {
	seen := set.NewStrings()
	var out []string
	for _, row := range rows {
		if row.Host == "" || seen.Contains(row.Host) {
			continue
		}
		seen.Add(row.Host)
		out = append(out, row.Host)
	}
	return out
}
