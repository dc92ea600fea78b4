package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("ticker", "title").
		From("markets").
		Where(Eq("week_start", "2026-08-31"), IsNull("resolved_at")).
		OrderBy("close_time").
		Limit(25).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT ticker, title FROM markets WHERE week_start = $1 AND resolved_at IS NULL ORDER BY close_time LIMIT 25"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "2026-08-31" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderComparisons(t *testing.T) {
	query, args, err := Select("ticker").
		From("markets").
		Where(Lte("close_time", "now"), Eq("is_resolved", false)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT ticker FROM markets WHERE close_time <= $1 AND is_resolved = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "now" || args[1] != false {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderEmptyIn(t *testing.T) {
	query, args, err := Select("id").
		From("predictions").
		Where(In("market_ticker", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM predictions WHERE 1=0"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("leagues").
		Columns("id", "name").
		Values("l1", "office pool").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO leagues (id, name) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "l1" || args[1] != "office pool" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("users").
		SetExpr("total_points", "total_points + ?", 18).
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", int64(42))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE users SET total_points = total_points + $1, updated_at = NOW() WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != 18 || args[1] != int64(42) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		Ticker string `db:"ticker"`
		Title  string `db:"title"`
		Skip   string `db:"-"`
	}

	query, args, err := InsertModel("markets", row{Ticker: "NFL-WK1", Title: "Chiefs beat Ravens"}, "ON CONFLICT (ticker) DO NOTHING")
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO markets (ticker, title) VALUES ($1, $2) ON CONFLICT (ticker) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "NFL-WK1" || args[1] != "Chiefs beat Ravens" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
