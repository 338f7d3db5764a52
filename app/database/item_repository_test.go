package database

import (
	"testing"
	"time"
)

func seedTestFeed(t *testing.T, db *DB, name string) {
	t.Helper()
	if err := NewFeedRepository(db).UpsertFeed(name, "https://example.com/"+name+".xml"); err != nil {
		t.Fatalf("Failed to seed feed %s: %v", name, err)
	}
}

func makeTestItem(guid string, published time.Time) FeedItem {
	return FeedItem{
		GUID:        guid,
		Title:       "Title " + guid,
		Link:        "https://example.com/articles/" + guid,
		Description: "Description " + guid,
		PublishedAt: published,
		ContentHash: "hash-" + guid,
	}
}

func TestUpsertItemAndGetVisibleItems(t *testing.T) {
	db := setupTestDB(t)
	seedTestFeed(t, db, "tech-news")
	repo := NewItemRepository(db)

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	older := makeTestItem("item-1", base)
	older.Authors = []string{"alice@example.com (Alice)", "Bob"}
	older.Categories = []string{"tech", "news"}
	older.EnclosureURL = "https://example.com/episode.mp3"
	older.EnclosureLength = 24576000
	older.EnclosureType = "audio/mpeg"
	if err := repo.UpsertItem("tech-news", older); err != nil {
		t.Fatalf("Failed to upsert item: %v", err)
	}

	newer := makeTestItem("item-2", base.Add(time.Hour))
	if err := repo.UpsertItem("tech-news", newer); err != nil {
		t.Fatalf("Failed to upsert item: %v", err)
	}

	items, err := repo.GetVisibleItems("tech-news", 10)
	if err != nil {
		t.Fatalf("Failed to get visible items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].GUID != "item-2" || items[1].GUID != "item-1" {
		t.Errorf("Expected newest first, got %s then %s", items[0].GUID, items[1].GUID)
	}

	got := items[1]
	if got.Title != "Title item-1" {
		t.Errorf("Expected title 'Title item-1', got '%s'", got.Title)
	}
	if !got.PublishedAt.Equal(base) {
		t.Errorf("Expected published at %v, got %v", base, got.PublishedAt)
	}
	if len(got.Authors) != 2 || got.Authors[0] != "alice@example.com (Alice)" || got.Authors[1] != "Bob" {
		t.Errorf("Expected authors to round-trip, got %v", got.Authors)
	}
	if len(got.Categories) != 2 || got.Categories[0] != "tech" {
		t.Errorf("Expected categories to round-trip, got %v", got.Categories)
	}
	if got.EnclosureURL != "https://example.com/episode.mp3" || got.EnclosureLength != 24576000 || got.EnclosureType != "audio/mpeg" {
		t.Errorf("Expected enclosure to round-trip, got %s %d %s", got.EnclosureURL, got.EnclosureLength, got.EnclosureType)
	}
	if got.ContentExtractionStatus != "pending" {
		t.Errorf("Expected extraction status 'pending' on insert, got '%s'", got.ContentExtractionStatus)
	}
	if items[0].Authors != nil {
		t.Errorf("Expected nil authors for item without any, got %v", items[0].Authors)
	}

	limited, err := repo.GetVisibleItems("tech-news", 1)
	if err != nil {
		t.Fatalf("Failed to get limited items: %v", err)
	}
	if len(limited) != 1 || limited[0].GUID != "item-2" {
		t.Errorf("Expected only the newest item, got %d items", len(limited))
	}
}

func TestUpsertItemRefreshPreservesFirstSeen(t *testing.T) {
	db := setupTestDB(t)
	seedTestFeed(t, db, "tech-news")
	repo := NewItemRepository(db)

	firstSeen := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	if err := repo.UpsertItem("tech-news", makeTestItem("item-1", firstSeen)); err != nil {
		t.Fatalf("Failed to upsert item: %v", err)
	}

	stored, err := repo.GetAllItems("tech-news")
	if err != nil || len(stored) != 1 {
		t.Fatalf("Failed to get stored item: %v", err)
	}
	originalID := stored[0].ID

	// The publisher shifted the publication date and retitled the entry.
	changed := makeTestItem("item-1", firstSeen.Add(48*time.Hour))
	changed.Title = "Updated Title"
	if err := repo.UpsertItem("tech-news", changed); err != nil {
		t.Fatalf("Failed to re-upsert item: %v", err)
	}

	stored, err = repo.GetAllItems("tech-news")
	if err != nil {
		t.Fatalf("Failed to get items after refresh: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("Expected 1 item after refresh, got %d", len(stored))
	}
	if stored[0].ID != originalID {
		t.Errorf("Expected stable item ID, got '%s' then '%s'", originalID, stored[0].ID)
	}
	if stored[0].Title != "Updated Title" {
		t.Errorf("Expected refreshed title, got '%s'", stored[0].Title)
	}
	if !stored[0].PublishedAt.Equal(firstSeen) {
		t.Errorf("Expected first-seen publication date %v to survive, got %v", firstSeen, stored[0].PublishedAt)
	}
}

func TestUpsertItemUnknownFeed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewItemRepository(db)

	err := repo.UpsertItem("missing", makeTestItem("item-1", time.Now().UTC()))
	if err == nil {
		t.Error("Expected error for item without a matching feed")
	}
}

func TestGetAllItemsIncludesFiltered(t *testing.T) {
	db := setupTestDB(t)
	seedTestFeed(t, db, "tech-news")
	repo := NewItemRepository(db)

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	visible := makeTestItem("item-1", base)
	if err := repo.UpsertItem("tech-news", visible); err != nil {
		t.Fatalf("Failed to upsert item: %v", err)
	}

	filtered := makeTestItem("item-2", base.Add(time.Hour))
	filtered.IsFiltered = true
	filtered.FilterReason = "Excluded by title filter: contains 'sponsored'"
	if err := repo.UpsertItem("tech-news", filtered); err != nil {
		t.Fatalf("Failed to upsert filtered item: %v", err)
	}

	all, err := repo.GetAllItems("tech-news")
	if err != nil {
		t.Fatalf("Failed to get all items: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 items including filtered, got %d", len(all))
	}

	shown, err := repo.GetVisibleItems("tech-news", 10)
	if err != nil {
		t.Fatalf("Failed to get visible items: %v", err)
	}
	if len(shown) != 1 || shown[0].GUID != "item-1" {
		t.Errorf("Expected only the unfiltered item, got %d items", len(shown))
	}

	count, err := repo.GetItemCount("tech-news")
	if err != nil {
		t.Fatalf("Failed to get item count: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected item count 2, got %d", count)
	}
}

func TestGetItemStats(t *testing.T) {
	db := setupTestDB(t)
	seedTestFeed(t, db, "tech-news")
	repo := NewItemRepository(db)

	total, visible, filtered, err := repo.GetItemStats("tech-news")
	if err != nil {
		t.Fatalf("Failed to get stats for empty feed: %v", err)
	}
	if total != 0 || visible != 0 || filtered != 0 {
		t.Errorf("Expected zero stats for empty feed, got %d/%d/%d", total, visible, filtered)
	}

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	for i, hidden := range []bool{false, false, true} {
		item := makeTestItem(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		item.IsFiltered = hidden
		if err := repo.UpsertItem("tech-news", item); err != nil {
			t.Fatalf("Failed to upsert item: %v", err)
		}
	}

	total, visible, filtered, err = repo.GetItemStats("tech-news")
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if total != 3 || visible != 2 || filtered != 1 {
		t.Errorf("Expected stats 3/2/1, got %d/%d/%d", total, visible, filtered)
	}
}

func TestUpdateItemFilterStatus(t *testing.T) {
	db := setupTestDB(t)
	seedTestFeed(t, db, "tech-news")
	repo := NewItemRepository(db)

	if err := repo.UpsertItem("tech-news", makeTestItem("item-1", time.Now().UTC())); err != nil {
		t.Fatalf("Failed to upsert item: %v", err)
	}
	stored, err := repo.GetAllItems("tech-news")
	if err != nil || len(stored) != 1 {
		t.Fatalf("Failed to get stored item: %v", err)
	}

	err = repo.UpdateItemFilterStatus(stored[0].ID, true, "Excluded by title filter: contains 'advertisement'")
	if err != nil {
		t.Fatalf("Failed to update filter status: %v", err)
	}

	stored, err = repo.GetAllItems("tech-news")
	if err != nil || len(stored) != 1 {
		t.Fatalf("Failed to get item after update: %v", err)
	}
	if !stored[0].IsFiltered {
		t.Error("Expected item to be filtered")
	}
	if stored[0].FilterReason != "Excluded by title filter: contains 'advertisement'" {
		t.Errorf("Expected filter reason to be stored, got '%s'", stored[0].FilterReason)
	}
}

func TestCheckDuplicate(t *testing.T) {
	db := setupTestDB(t)
	seedTestFeed(t, db, "tech-news")
	repo := NewItemRepository(db)

	item := makeTestItem("item-1", time.Now().UTC())
	if err := repo.UpsertItem("tech-news", item); err != nil {
		t.Fatalf("Failed to upsert item: %v", err)
	}

	found, id, err := repo.CheckDuplicate("tech-news", item.ContentHash)
	if err != nil {
		t.Fatalf("Failed to check duplicate: %v", err)
	}
	if !found {
		t.Error("Expected duplicate to be found")
	}
	if id == nil || *id == "" {
		t.Error("Expected the matching item ID to be returned")
	}

	found, id, err = repo.CheckDuplicate("tech-news", "unseen-hash")
	if err != nil {
		t.Fatalf("Failed to check missing hash: %v", err)
	}
	if found || id != nil {
		t.Error("Expected no duplicate for unseen hash")
	}
}

func TestGetItemsForExtraction(t *testing.T) {
	db := setupTestDB(t)
	seedTestFeed(t, db, "tech-news")
	repo := NewItemRepository(db)

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	pending := makeTestItem("pending", base.Add(4*time.Hour))
	retryable := makeTestItem("retryable", base.Add(3*time.Hour))
	noLink := makeTestItem("no-link", base.Add(2*time.Hour))
	noLink.Link = ""
	hidden := makeTestItem("hidden", base.Add(time.Hour))
	hidden.IsFiltered = true
	exhausted := makeTestItem("exhausted", base)
	skipped := makeTestItem("skipped", base.Add(-time.Hour))

	for _, item := range []FeedItem{pending, retryable, noLink, hidden, exhausted, skipped} {
		if err := repo.UpsertItem("tech-news", item); err != nil {
			t.Fatalf("Failed to upsert item %s: %v", item.GUID, err)
		}
	}

	all, err := repo.GetAllItems("tech-news")
	if err != nil {
		t.Fatalf("Failed to get items: %v", err)
	}
	for _, item := range all {
		switch item.GUID {
		case "retryable":
			// One failure leaves attempts on the budget.
			if err := repo.UpdateExtractionStatus(item.ID, "failed", nil, "fetch timeout"); err != nil {
				t.Fatalf("Failed to update extraction status: %v", err)
			}
		case "exhausted":
			for i := 0; i < 3; i++ {
				if err := repo.UpdateExtractionStatus(item.ID, "failed", nil, "fetch timeout"); err != nil {
					t.Fatalf("Failed to update extraction status: %v", err)
				}
			}
		case "skipped":
			if err := repo.UpdateExtractionStatus(item.ID, "skipped", nil, "unsupported content type"); err != nil {
				t.Fatalf("Failed to update extraction status: %v", err)
			}
		}
	}

	candidates, err := repo.GetItemsForExtraction("tech-news", 10)
	if err != nil {
		t.Fatalf("Failed to get items for extraction: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 extraction candidates, got %d", len(candidates))
	}
	if candidates[0].Link != pending.Link {
		t.Errorf("Expected newest candidate link '%s', got '%s'", pending.Link, candidates[0].Link)
	}
	if candidates[1].Link != retryable.Link {
		t.Errorf("Expected retryable candidate link '%s', got '%s'", retryable.Link, candidates[1].Link)
	}
}

func TestUpdateExtractedContentAndStatus(t *testing.T) {
	db := setupTestDB(t)
	seedTestFeed(t, db, "tech-news")
	repo := NewItemRepository(db)

	if err := repo.UpsertItem("tech-news", makeTestItem("item-1", time.Now().UTC())); err != nil {
		t.Fatalf("Failed to upsert item: %v", err)
	}
	stored, err := repo.GetAllItems("tech-news")
	if err != nil || len(stored) != 1 {
		t.Fatalf("Failed to get stored item: %v", err)
	}

	extractedAt := time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC)
	err = repo.UpdateExtractedContentAndStatus(stored[0].ID, "<p>Full article body.</p>", "success", &extractedAt, "")
	if err != nil {
		t.Fatalf("Failed to store extracted content: %v", err)
	}

	stored, err = repo.GetAllItems("tech-news")
	if err != nil || len(stored) != 1 {
		t.Fatalf("Failed to get item after extraction: %v", err)
	}
	got := stored[0]
	if got.ExtractedContent != "<p>Full article body.</p>" {
		t.Errorf("Expected extracted content to be stored, got '%s'", got.ExtractedContent)
	}
	if got.ContentExtractionStatus != "success" {
		t.Errorf("Expected status 'success', got '%s'", got.ContentExtractionStatus)
	}
	if got.ContentExtractedAt == nil || !got.ContentExtractedAt.Equal(extractedAt) {
		t.Errorf("Expected extraction timestamp %v, got %v", extractedAt, got.ContentExtractedAt)
	}
	if got.ExtractionAttempts != 1 {
		t.Errorf("Expected 1 extraction attempt, got %d", got.ExtractionAttempts)
	}

	// A failure on a later attempt keeps counting.
	if err := repo.UpdateExtractionStatus(got.ID, "failed", nil, "HTTP 404"); err != nil {
		t.Fatalf("Failed to record extraction failure: %v", err)
	}
	stored, err = repo.GetAllItems("tech-news")
	if err != nil || len(stored) != 1 {
		t.Fatalf("Failed to get item after failure: %v", err)
	}
	if stored[0].ContentExtractionStatus != "failed" {
		t.Errorf("Expected status 'failed', got '%s'", stored[0].ContentExtractionStatus)
	}
	if stored[0].ContentExtractionError != "HTTP 404" {
		t.Errorf("Expected extraction error to be stored, got '%s'", stored[0].ContentExtractionError)
	}
	if stored[0].ExtractionAttempts != 2 {
		t.Errorf("Expected 2 extraction attempts, got %d", stored[0].ExtractionAttempts)
	}
}
