// Package project resolves the project picker options from an external
// cost-control workbook. The workbook is owned by another team; a missing
// file, tab or column degrades to an empty list, never a failure.
package project

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/evalworks/vendoreval/internal/config"
	"github.com/xuri/excelize/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	columnWBS  = "WBS"
	columnName = "PROJECT NAME"
)

type Service interface {
	// Projects returns the de-duplicated, sorted "<WBS> - <PROJECT NAME>"
	// options whose WBS carries the configured prefix.
	Projects(ctx context.Context) ([]string, error)
}

type Params struct {
	fx.In

	Cfg config.Config
	Log *zap.Logger
}

type Lookup struct {
	log       *zap.Logger
	path      string
	tabs      []string
	headerRow int
	prefix    string
}

func New(p Params) Service {
	headerRow := p.Cfg.ProjectHeaderRow
	if headerRow < 1 {
		headerRow = 1
	}
	return &Lookup{
		log:       p.Log.Named("project.lookup"),
		path:      p.Cfg.ProjectWorkbookPath,
		tabs:      p.Cfg.ProjectWorkbookTabs,
		headerRow: headerRow,
		prefix:    p.Cfg.ProjectWBSPrefix,
	}
}

func (l *Lookup) Projects(_ context.Context) ([]string, error) {
	if l.path == "" {
		return nil, nil
	}
	if _, err := os.Stat(l.path); err != nil {
		l.log.Warn("project workbook unavailable", zap.String("path", l.path), zap.Error(err))
		return nil, nil
	}

	book, err := excelize.OpenFile(l.path)
	if err != nil {
		l.log.Warn("project workbook unreadable", zap.String("path", l.path), zap.Error(err))
		return nil, nil
	}
	defer book.Close()

	seen := map[string]bool{}
	for _, tab := range l.tabs {
		for _, option := range l.readTab(book, tab) {
			seen[option] = true
		}
	}

	options := make([]string, 0, len(seen))
	for option := range seen {
		options = append(options, option)
	}
	sort.Strings(options)
	return options, nil
}

func (l *Lookup) readTab(book *excelize.File, tab string) []string {
	rows, err := book.GetRows(tab)
	if err != nil {
		l.log.Warn("project workbook tab missing", zap.String("tab", tab), zap.Error(err))
		return nil
	}
	if len(rows) < l.headerRow {
		return nil
	}

	header := rows[l.headerRow-1]
	wbsCol, nameCol := -1, -1
	for i, cell := range header {
		switch strings.ToUpper(strings.TrimSpace(cell)) {
		case columnWBS:
			wbsCol = i
		case columnName:
			nameCol = i
		}
	}
	if wbsCol < 0 || nameCol < 0 {
		l.log.Warn("project workbook header incomplete",
			zap.String("tab", tab),
			zap.Int("header_row", l.headerRow),
		)
		return nil
	}

	var options []string
	for _, row := range rows[l.headerRow:] {
		if len(row) <= wbsCol || len(row) <= nameCol {
			continue
		}
		wbs := strings.TrimSpace(row[wbsCol])
		name := strings.TrimSpace(row[nameCol])
		if wbs == "" || name == "" {
			continue
		}
		if l.prefix != "" && !strings.HasPrefix(wbs, l.prefix) {
			continue
		}
		options = append(options, wbs+" - "+name)
	}
	return options
}
