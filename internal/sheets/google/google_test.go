package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"budget/internal/core"

	goption "google.golang.org/api/option"
)

func sampleTransaction() core.Transaction {
	return core.Transaction{
		ID:          "t1",
		Description: "Groceries",
		Amount:      core.Money{Cents: 4520},
		Type:        core.Expense,
		Category:    "Food:Groceries",
		Date:        core.NewDate(2024, 3, 9),
	}
}

// fakeSheets serves the two Sheets endpoints the client uses.
type fakeSheets struct {
	mu       sync.Mutex
	appended [][]any
	columnA  [][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		body, _ := io.ReadAll(r.Body)
		var vr struct {
			Values [][]any `json:"values"`
		}
		_ = json.Unmarshal(body, &vr)
		f.appended = append(f.appended, vr.Values...)
		_, _ = io.WriteString(w, `{"updates":{"updatedRange":"Transactions!A7:E7"}}`)
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"values": f.columnA})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewWithOptions(context.Background(), Config{SpreadsheetID: "sheet-1"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewWithOptions: %v", err)
	}
	return c
}

func TestNewWithOptions_MissingSpreadsheetID(t *testing.T) {
	_, err := NewWithOptions(context.Background(), Config{}, goption.WithoutAuthentication())
	if err == nil || !strings.Contains(err.Error(), "spreadsheet") {
		t.Fatalf("expected missing spreadsheet error, got %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "x"})
	if err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := credentials(Config{CredentialsFile: path})
	if err != nil || !strings.Contains(string(got), "service_account") {
		t.Fatalf("file credentials: %q err=%v", got, err)
	}
	got, err = credentials(Config{CredentialsJSON: `{"inline":true}`, CredentialsFile: path})
	if err != nil || string(got) != `{"inline":true}` {
		t.Fatalf("inline JSON must win: %q err=%v", got, err)
	}
	if _, err := credentials(Config{CredentialsFile: filepath.Join(dir, "missing.json")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTransactionRow(t *testing.T) {
	row := transactionRow(sampleTransaction())
	want := []any{"2024-03-09", "Groceries", "expense", "Food:Groceries", 45.2}
	if len(row) != len(want) {
		t.Fatalf("row = %v", row)
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("col %d = %v, want %v", i, row[i], want[i])
		}
	}
}

func TestAppendTransaction(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	ref, err := c.AppendTransaction(context.Background(), sampleTransaction())
	if err != nil {
		t.Fatalf("AppendTransaction: %v", err)
	}
	if ref != "Transactions!A7:E7" {
		t.Errorf("ref = %q", ref)
	}
	if len(fake.appended) != 1 || fake.appended[0][1] != "Groceries" {
		t.Errorf("appended = %v", fake.appended)
	}

	bad := sampleTransaction()
	bad.Amount = core.Money{}
	if _, err := c.AppendTransaction(context.Background(), bad); err == nil {
		t.Error("expected validation error")
	}
	if len(fake.appended) != 1 {
		t.Error("invalid transaction must not reach the sheet")
	}
}

func TestReadCategories(t *testing.T) {
	fake := &fakeSheets{columnA: [][]any{{"Food"}, {" Bills "}, {}, {"# note"}, {"Food"}, {"Food:Bakery"}}}
	c := newTestClient(t, fake)

	got, err := c.ReadCategories(context.Background())
	if err != nil {
		t.Fatalf("ReadCategories: %v", err)
	}
	want := []string{"Food", "Bills", "Food:Bakery"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("ReadCategories() = %v, want %v", got, want)
	}
}
