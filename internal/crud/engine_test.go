package crud

import (
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/domain"
)

// runNotesQuery executes a paginated query over the note table, projecting
// to titles for easy assertions.
func runNotesQuery(t *testing.T, db *gorm.DB, spec QuerySpec[note, string]) *PaginatedResponse[string] {
	t.Helper()
	if spec.Select == nil {
		spec.Select = func(n *note) string { return n.Title }
	}
	res, err := RunQuery(db.Model(&note{}), spec)
	if err != nil {
		t.Fatalf("RunQuery: %v", err)
	}
	return res
}

func TestRunQuery_PageValidation(t *testing.T) {
	db := setupTestDB(t)

	_, err := RunQuery(db.Model(&note{}), QuerySpec[note, string]{
		Request: Request{Page: 0, Count: 10},
		Select:  func(n *note) string { return n.Title },
	})
	if !domain.IsValidation(err) {
		t.Fatalf("page=0 error = %v; want validation error", err)
	}
	if err.Error() != "Page number not valid" {
		t.Errorf("message = %q; want %q", err.Error(), "Page number not valid")
	}
}

func TestRunQuery_CountValidation(t *testing.T) {
	db := setupTestDB(t)

	_, err := RunQuery(db.Model(&note{}), QuerySpec[note, string]{
		Request: Request{Page: 1, Count: -2},
		Select:  func(n *note) string { return n.Title },
	})
	if !domain.IsValidation(err) {
		t.Fatalf("count=-2 error = %v; want validation error", err)
	}
}

func TestRunQuery_CountZeroYieldsEmptyPage(t *testing.T) {
	db := setupTestDB(t)
	seedNotes(t, db, []note{{Title: "t1"}, {Title: "t2"}})

	res := runNotesQuery(t, db, QuerySpec[note, string]{
		Request: Request{Page: 1, Count: 0},
	})

	if len(res.Data) != 0 {
		t.Fatalf("len(data) = %d; want 0", len(res.Data))
	}
	if res.RecordsTotal != 2 || res.RecordsFiltered != 2 {
		t.Errorf("totals = %d/%d; want 2/2", res.RecordsTotal, res.RecordsFiltered)
	}
	// The page holds nothing, so the filtered rows are all still ahead.
	if !res.HasMoreData {
		t.Error("HasMoreData = false; want true")
	}
}

func TestRunQuery_FirstPageOfFive(t *testing.T) {
	db := setupTestDB(t)
	seedNotes(t, db, []note{
		{Title: "t1"}, {Title: "t2"}, {Title: "t3"}, {Title: "t4"}, {Title: "t5"},
	})

	res := runNotesQuery(t, db, QuerySpec[note, string]{
		Request: Request{Page: 1, Count: 2, Draw: 9},
	})

	if len(res.Data) != 2 {
		t.Fatalf("len(data) = %d; want 2", len(res.Data))
	}
	// Default id ASC ordering returns the earliest-created rows first.
	if res.Data[0] != "t1" || res.Data[1] != "t2" {
		t.Errorf("data = %v; want [t1 t2]", res.Data)
	}
	if !res.HasMoreData {
		t.Error("HasMoreData = false; want true")
	}
	if res.Draw != 9 {
		t.Errorf("Draw = %d; want echoed 9", res.Draw)
	}
	if res.RecordsTotal != 5 || res.RecordsFiltered != 5 {
		t.Errorf("totals = %d/%d; want 5/5", res.RecordsTotal, res.RecordsFiltered)
	}
}

func TestRunQuery_PagesConcatenateExactly(t *testing.T) {
	db := setupTestDB(t)
	const n = 7
	notes := make([]note, n)
	for i := range notes {
		notes[i].Title = fmt.Sprintf("t%d", i+1)
	}
	seedNotes(t, db, notes)

	seen := make(map[string]int)
	var all []string
	for page := 1; ; page++ {
		res := runNotesQuery(t, db, QuerySpec[note, string]{
			Request: Request{Page: page, Count: 3},
		})
		for _, title := range res.Data {
			seen[title]++
			all = append(all, title)
		}
		if !res.HasMoreData {
			break
		}
	}

	if len(all) != n {
		t.Fatalf("concatenated %d items; want %d", len(all), n)
	}
	for title, count := range seen {
		if count != 1 {
			t.Errorf("item %q appeared %d times; want exactly once", title, count)
		}
	}
	// Across pages the ordering holds too.
	for i, title := range all {
		if want := fmt.Sprintf("t%d", i+1); title != want {
			t.Errorf("all[%d] = %q; want %q", i, title, want)
		}
	}
}

func TestRunQuery_SearchNarrows(t *testing.T) {
	db := setupTestDB(t)
	seedNotes(t, db, []note{
		{Title: "printer broken"}, {Title: "screen broken"}, {Title: "all fine"},
	})

	unfiltered := runNotesQuery(t, db, QuerySpec[note, string]{
		Request:      Request{Page: 1, Count: CountAll},
		SearchFields: []string{"Title"},
	})
	searched := runNotesQuery(t, db, QuerySpec[note, string]{
		Request:      Request{Page: 1, Count: CountAll, Search: "broken"},
		SearchFields: []string{"Title"},
	})

	if len(searched.Data) != 2 {
		t.Fatalf("searched = %v; want 2 rows", searched.Data)
	}
	// Search narrows: every searched row is in the unfiltered set.
	inUnfiltered := make(map[string]bool)
	for _, title := range unfiltered.Data {
		inUnfiltered[title] = true
	}
	for _, title := range searched.Data {
		if !inUnfiltered[title] {
			t.Errorf("searched row %q missing from unfiltered result", title)
		}
	}
}

func TestRunQuery_CountsReflectStages(t *testing.T) {
	db := setupTestDB(t)
	seedNotes(t, db, []note{
		{Title: "printer a"},
		{Title: "printer b", Archived: true},
		{Title: "other", Archived: true},
		{Title: "misc"},
	})

	res := runNotesQuery(t, db, QuerySpec[note, string]{
		Request:      Request{Page: 1, Count: 10, Search: "printer"},
		SearchFields: []string{"Title"},
		InitialScope: func(q *gorm.DB) *gorm.DB { return q.Where("archived = ?", false) },
	})

	// RecordsTotal counts the base query before the initial where-clause and
	// search; RecordsFiltered counts after both, before paging.
	if res.RecordsTotal != 4 {
		t.Errorf("RecordsTotal = %d; want 4", res.RecordsTotal)
	}
	if res.RecordsFiltered != 1 {
		t.Errorf("RecordsFiltered = %d; want 1", res.RecordsFiltered)
	}
	if len(res.Data) != 1 || res.Data[0] != "printer a" {
		t.Errorf("data = %v; want [printer a]", res.Data)
	}
}

func TestRunQuery_UnboundedCount(t *testing.T) {
	db := setupTestDB(t)
	seedNotes(t, db, []note{{Title: "a"}, {Title: "b"}, {Title: "c"}})

	res := runNotesQuery(t, db, QuerySpec[note, string]{
		Request: Request{Page: 1, Count: CountAll},
	})

	if len(res.Data) != 3 {
		t.Errorf("len(data) = %d; want all 3 rows", len(res.Data))
	}
	// Unbounded responses never promise another page.
	if res.HasMoreData {
		t.Error("HasMoreData = true; want false for unbounded count")
	}
}

func TestRunQuery_LastPageHasNoMoreData(t *testing.T) {
	db := setupTestDB(t)
	seedNotes(t, db, []note{{Title: "a"}, {Title: "b"}, {Title: "c"}})

	res := runNotesQuery(t, db, QuerySpec[note, string]{
		Request: Request{Page: 2, Count: 2},
	})
	if len(res.Data) != 1 {
		t.Fatalf("len(data) = %d; want 1", len(res.Data))
	}
	if res.HasMoreData {
		t.Error("HasMoreData = true on last page; want false")
	}
}

func TestRunQuery_DefaultOrderByID(t *testing.T) {
	db := setupTestDB(t)
	// Seed out of insertion order relative to ids.
	seedNotes(t, db, []note{
		{ID: orderedID(3), Title: "third"},
		{ID: orderedID(1), Title: "first"},
		{ID: orderedID(2), Title: "second"},
	})

	res := runNotesQuery(t, db, QuerySpec[note, string]{
		Request: Request{Page: 1, Count: CountAll},
	})
	want := []string{"first", "second", "third"}
	for i, title := range res.Data {
		if title != want[i] {
			t.Fatalf("data = %v; want %v (id ASC)", res.Data, want)
		}
	}
}

func TestRunQuery_ClientSort(t *testing.T) {
	db := setupTestDB(t)
	seedNotes(t, db, []note{
		{Title: "banana"}, {Title: "apple"}, {Title: "cherry"},
	})

	res := runNotesQuery(t, db, QuerySpec[note, string]{
		Request:    Request{Page: 1, Count: CountAll, SortColumn: "title", SortDirection: "desc"},
		SortFields: []string{"title"},
	})
	if res.Data[0] != "cherry" || res.Data[2] != "apple" {
		t.Errorf("data = %v; want title DESC order", res.Data)
	}
}

func TestRunQuery_SortColumnOutsideAllowlistIgnored(t *testing.T) {
	db := setupTestDB(t)
	seedNotes(t, db, []note{
		{ID: orderedID(1), Title: "b"},
		{ID: orderedID(2), Title: "a"},
	})

	res := runNotesQuery(t, db, QuerySpec[note, string]{
		Request:    Request{Page: 1, Count: CountAll, SortColumn: "title; DROP TABLE notes", SortDirection: "desc"},
		SortFields: []string{"title"},
	})
	// Falls back to id ASC.
	if res.Data[0] != "b" || res.Data[1] != "a" {
		t.Errorf("data = %v; want id ASC fallback", res.Data)
	}
}

func TestRunQuery_DefaultSortExpression(t *testing.T) {
	db := setupTestDB(t)
	seedNotes(t, db, []note{
		{ID: orderedID(1), Title: "x", Views: 1},
		{ID: orderedID(2), Title: "y", Views: 9},
	})

	res := runNotesQuery(t, db, QuerySpec[note, string]{
		Request:     Request{Page: 1, Count: CountAll},
		DefaultSort: "views DESC",
	})
	if res.Data[0] != "y" {
		t.Errorf("data = %v; want views DESC order", res.Data)
	}
}
