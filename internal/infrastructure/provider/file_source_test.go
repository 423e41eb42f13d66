package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tradewatch/internal/domain/disclosure"
)

func writeSourceFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write source file: %v", err)
	}
}

func TestFetchPageSlicesOrderedRecords(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "senate.json", `[
		{"trader_name": "A", "ticker_symbol": "AAPL"},
		{"trader_name": "B", "ticker_symbol": "MSFT"},
		{"trader_name": "C", "ticker_symbol": "NVDA"}
	]`)
	source := NewFileSource(dir)
	ctx := context.Background()

	page, err := source.FetchPage(ctx, disclosure.SourceSenate, 0, 2)
	if err != nil {
		t.Fatalf("FetchPage(0) error = %v", err)
	}
	if len(page) != 2 || page[0].TraderName != "A" || page[1].TraderName != "B" {
		t.Fatalf("FetchPage(0) = %+v", page)
	}

	page, err = source.FetchPage(ctx, disclosure.SourceSenate, 1, 2)
	if err != nil {
		t.Fatalf("FetchPage(1) error = %v", err)
	}
	if len(page) != 1 || page[0].TraderName != "C" {
		t.Fatalf("FetchPage(1) = %+v", page)
	}

	// Past the end the stream is empty, not an error.
	page, err = source.FetchPage(ctx, disclosure.SourceSenate, 2, 2)
	if err != nil {
		t.Fatalf("FetchPage(2) error = %v", err)
	}
	if len(page) != 0 {
		t.Fatalf("FetchPage(2) = %+v, want empty", page)
	}
}

func TestFetchPageErrors(t *testing.T) {
	dir := t.TempDir()
	source := NewFileSource(dir)
	ctx := context.Background()

	if _, err := source.FetchPage(ctx, "crypto", 0, 10); err == nil {
		t.Fatalf("FetchPage() expected unknown-source error")
	}
	if _, err := source.FetchPage(ctx, disclosure.SourceHouse, 0, 10); err == nil {
		t.Fatalf("FetchPage() expected missing-file error")
	}
	if _, err := source.FetchPage(ctx, disclosure.SourceSenate, -1, 10); err == nil {
		t.Fatalf("FetchPage() expected invalid-window error")
	}

	writeSourceFile(t, dir, "senate.json", "{not json")
	if _, err := source.FetchPage(ctx, disclosure.SourceSenate, 0, 10); err == nil {
		t.Fatalf("FetchPage() expected decode error")
	}
}
