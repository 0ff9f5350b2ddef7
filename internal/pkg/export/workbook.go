// internal/pkg/export/workbook.go
package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/analytics-reports/internal/core/domain"
	"github.com/ammerola/analytics-reports/internal/core/ports"
)

// ContentType is the media type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	timeLayout   = "2006-01-02 15:04:05"
	defaultWidth = 18
)

var analyticHeaders = []string{
	"ID", "User ID", "Resource ID",
	"Itinerary Comments", "Avg Comments", "Itinerary Reviews", "Avg Review Score", "Best Itinerary",
	"Publication Comments", "Comments Per Publication", "Publication Likes", "Avg Likes",
	"Analysis Date", "Stale", "Updated At",
}

var reportHeaders = []string{
	"ID", "User ID", "Type", "Resource ID", "Reason", "Description", "Status", "Created At", "Updated At",
}

// AnalyticsWorkbook renders analytics into a single-sheet workbook. now decides
// the Stale column.
func AnalyticsWorkbook(items []*domain.UserAnalytic, now time.Time) ([]byte, error) {
	rows := make([][]any, 0, len(items))
	for _, a := range items {
		it, pub := a.UserItineraryAnalytic, a.UserPublicationAnalytic
		best := ""
		if it.BestItineraryByAvgReviewScore != nil {
			best = *it.BestItineraryByAvgReviewScore
		}
		rows = append(rows, []any{
			a.ID, a.UserID, a.ResourceID,
			it.TotalCommentsCount, it.AvgComments, it.TotalReviewsCount, it.AverageReviewScore, best,
			pub.TotalCommentsCount, pub.CommentsPerPublication, pub.TotalLikesCount, pub.AverageLikes,
			a.AnalysisDate.UTC().Format(timeLayout), yesNo(a.IsStale(now)), a.UpdatedAt.UTC().Format(timeLayout),
		})
	}
	return build("Analytics", analyticHeaders, rows)
}

// ReportsWorkbook renders reports into a single-sheet workbook.
func ReportsWorkbook(items []*domain.Report) ([]byte, error) {
	rows := make([][]any, 0, len(items))
	for _, r := range items {
		rows = append(rows, []any{
			r.ID, r.UserID, string(r.Type), r.ResourceID, r.Reason, r.Description, string(r.Status),
			r.CreatedAt.UTC().Format(timeLayout), r.UpdatedAt.UTC().Format(timeLayout),
		})
	}
	return build("Reports", reportHeaders, rows)
}

// SnapshotKey is the object key of the daily analytics archive.
func SnapshotKey(prefix string, day time.Time) string {
	if prefix == "" {
		prefix = "snapshots"
	}
	return fmt.Sprintf("%s/analytics-%s.xlsx", prefix, day.UTC().Format("2006-01-02"))
}

// Lister fetches one page of T.
type Lister[T any] func(ctx context.Context, params ports.ListParams) (*ports.ListResult[T], error)

// CollectAll walks every page of list, starting from base with its filters kept.
func CollectAll[T any](ctx context.Context, list Lister[T], base ports.ListParams) ([]*T, error) {
	base.Page = 1
	if base.PageSize == 0 {
		base.PageSize = 100
	}

	var all []*T
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := list(ctx, base)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		if page.Page >= page.TotalPages || len(page.Items) == 0 {
			return all, nil
		}
		base.Page++
	}
}

func build(sheetName string, headers []string, rows [][]any) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, header := range headers {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for _, values := range rows {
		row := sheet.AddRow()
		for _, v := range values {
			setCell(row.AddCell(), v)
		}
	}

	// xlsx columns are 1-based
	sheet.SetColWidth(1, len(headers), defaultWidth)

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write workbook to buffer: %w", err)
	}
	return buffer.Bytes(), nil
}

func setCell(cell *xlsx.Cell, v any) {
	switch val := v.(type) {
	case int:
		cell.SetInt(val)
	case float64:
		cell.SetFloatWithFormat(val, "0.00")
	case string:
		cell.SetString(val)
	default:
		cell.SetString(fmt.Sprint(val))
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// FilenameFor names a download, e.g. analytics-20261015.xlsx.
func FilenameFor(kind string, now time.Time) string {
	return kind + "-" + now.UTC().Format("20060102") + ".xlsx"
}
