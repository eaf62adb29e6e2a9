//go:build e2e

package e2e

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"testing"
)

type propertyPayload struct {
	ID           string `json:"id"`
	AgentID      string `json:"agentId"`
	Title        string `json:"title"`
	PropertyType string `json:"propertyType"`
	Status       string `json:"status"`
	ViewCount    int64  `json:"viewCount"`
	InquiryCount int64  `json:"inquiryCount"`
	Price        struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"price"`
	Location struct {
		City string `json:"city"`
	} `json:"location"`
	Photos    []string `json:"photos"`
	ExpiresAt string   `json:"expiresAt"`
}

type listPayload struct {
	Properties []propertyPayload `json:"properties"`
	Pagination struct {
		CurrentPage     int   `json:"currentPage"`
		TotalPages      int   `json:"totalPages"`
		TotalProperties int64 `json:"totalProperties"`
		HasNextPage     bool  `json:"hasNextPage"`
		HasPrevPage     bool  `json:"hasPrevPage"`
	} `json:"pagination"`
}

func newListingBody(title, city string, amount int64) map[string]interface{} {
	return map[string]interface{}{
		"title":        title,
		"description":  "Recently renovated, close to public transport",
		"propertyType": "apartment",
		"listingType":  "rent",
		"price": map[string]interface{}{
			"amount":   amount,
			"currency": "EUR",
			"period":   "monthly",
		},
		"location": map[string]interface{}{
			"address":      "Strada Memorandumului 10",
			"city":         city,
			"county":       "Cluj",
			"neighborhood": "Centru",
			"latitude":     46.77,
			"longitude":    23.59,
		},
		"specifications": map[string]interface{}{
			"bedrooms":  2,
			"bathrooms": 1,
			"sizeSqm":   58.0,
		},
		"amenities": []string{"parking", "balcony"},
	}
}

// TestE2E_Auth covers API key provisioning and the auth gate
func TestE2E_Auth(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	env.Bootstrap()

	t.Run("API key works for authentication", func(t *testing.T) {
		resp, err := env.Get("/my/properties", env.AuthToken)
		if err != nil {
			t.Fatalf("authenticated request failed: %v", err)
		}
		if !resp.Success {
			t.Fatal("expected success envelope")
		}
	})

	t.Run("missing API key returns 401", func(t *testing.T) {
		_, err := env.Get("/my/properties", "")
		if err == nil || !strings.Contains(err.Error(), "HTTP 401") {
			t.Fatalf("expected 401, got %v", err)
		}
	})

	t.Run("invalid API key returns 401", func(t *testing.T) {
		_, err := env.Get("/my/properties", "cva_"+strings.Repeat("0", 64))
		if err == nil || !strings.Contains(err.Error(), "HTTP 401") {
			t.Fatalf("expected 401, got %v", err)
		}
	})

	t.Run("public search works without auth", func(t *testing.T) {
		resp, err := env.Get("/properties", "")
		if err != nil {
			t.Fatalf("public search failed: %v", err)
		}
		if !resp.Success {
			t.Fatal("expected success envelope")
		}
	})
}

// TestE2E_PropertyLifecycle covers create, read, update, and delete
func TestE2E_PropertyLifecycle(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	env.Bootstrap()

	var created propertyPayload

	t.Run("create listing", func(t *testing.T) {
		resp, err := env.Post("/properties", newListingBody("Bright apartment near the park", "Cluj-Napoca", 750), env.AuthToken)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if err := json.Unmarshal(resp.Data, &created); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if created.ID == "" {
			t.Fatal("expected listing ID")
		}
		if created.AgentID != env.AgentID {
			t.Fatalf("expected agent %s, got %s", env.AgentID, created.AgentID)
		}
		if created.Status != "active" {
			t.Fatalf("expected active status, got %s", created.Status)
		}
		if created.ExpiresAt == "" {
			t.Fatal("expected expiry to be set")
		}
	})

	t.Run("get records a view", func(t *testing.T) {
		resp, err := env.Get("/properties/"+created.ID, "")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		var got propertyPayload
		if err := json.Unmarshal(resp.Data, &got); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if got.ID != created.ID {
			t.Fatalf("expected %s, got %s", created.ID, got.ID)
		}
		if got.ViewCount != 1 {
			t.Fatalf("expected view count 1, got %d", got.ViewCount)
		}
	})

	t.Run("update listing", func(t *testing.T) {
		body := newListingBody("Bright apartment near the park", "Cluj-Napoca", 820)
		body["status"] = "rented"
		resp, err := env.Put("/properties/"+created.ID, body, env.AuthToken)
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		var got propertyPayload
		if err := json.Unmarshal(resp.Data, &got); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if got.Price.Amount != 820 {
			t.Fatalf("expected price 820, got %d", got.Price.Amount)
		}
		if got.Status != "rented" {
			t.Fatalf("expected rented status, got %s", got.Status)
		}
	})

	t.Run("rented listing leaves public search", func(t *testing.T) {
		resp, err := env.Get("/properties", "")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		var list listPayload
		if err := json.Unmarshal(resp.Data, &list); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if len(list.Properties) != 0 {
			t.Fatalf("expected no active listings, got %d", len(list.Properties))
		}
	})

	t.Run("own listings include every status", func(t *testing.T) {
		resp, err := env.Get("/my/properties", env.AuthToken)
		if err != nil {
			t.Fatalf("list own failed: %v", err)
		}
		var list struct {
			Properties []propertyPayload `json:"properties"`
		}
		if err := json.Unmarshal(resp.Data, &list); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if len(list.Properties) != 1 {
			t.Fatalf("expected 1 listing, got %d", len(list.Properties))
		}
	})

	t.Run("delete listing", func(t *testing.T) {
		if _, err := env.Delete("/properties/"+created.ID, env.AuthToken); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		_, err := env.Get("/properties/"+created.ID, "")
		if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
			t.Fatalf("expected 404 after delete, got %v", err)
		}
	})
}

// TestE2E_Search covers the public search pipeline end to end
func TestE2E_Search(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	env.Bootstrap()

	listings := []struct {
		title  string
		city   string
		amount int64
	}{
		{"Bright apartment near the park", "Cluj-Napoca", 750},
		{"Cozy apartment in the old town", "Cluj-Napoca", 550},
		{"Penthouse with panoramic view", "Bucuresti", 2200},
	}
	for _, l := range listings {
		if _, err := env.Post("/properties", newListingBody(l.title, l.city, l.amount), env.AuthToken); err != nil {
			t.Fatalf("failed to create listing %q: %v", l.title, err)
		}
	}

	search := func(t *testing.T, query string) listPayload {
		resp, err := env.Get("/properties?"+query, "")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		var list listPayload
		if err := json.Unmarshal(resp.Data, &list); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		return list
	}

	t.Run("no filters returns everything", func(t *testing.T) {
		list := search(t, "")
		if list.Pagination.TotalProperties != 3 {
			t.Fatalf("expected 3 listings, got %d", list.Pagination.TotalProperties)
		}
		if list.Pagination.CurrentPage != 1 || list.Pagination.TotalPages != 1 {
			t.Fatalf("unexpected pagination: %+v", list.Pagination)
		}
		if list.Pagination.HasNextPage || list.Pagination.HasPrevPage {
			t.Fatalf("unexpected pagination flags: %+v", list.Pagination)
		}
	})

	t.Run("synonym expansion matches flat as apartment", func(t *testing.T) {
		list := search(t, "search=flat")
		if list.Pagination.TotalProperties != 2 {
			t.Fatalf("expected 2 matches, got %d", list.Pagination.TotalProperties)
		}
	})

	t.Run("location filter", func(t *testing.T) {
		list := search(t, "location="+url.QueryEscape("Bucuresti"))
		if len(list.Properties) != 1 {
			t.Fatalf("expected 1 match, got %d", len(list.Properties))
		}
		if list.Properties[0].Location.City != "Bucuresti" {
			t.Fatalf("unexpected city %s", list.Properties[0].Location.City)
		}
	})

	t.Run("price range filter", func(t *testing.T) {
		list := search(t, "minPrice=600&maxPrice=1000")
		if len(list.Properties) != 1 {
			t.Fatalf("expected 1 match, got %d", len(list.Properties))
		}
		if list.Properties[0].Price.Amount != 750 {
			t.Fatalf("unexpected price %d", list.Properties[0].Price.Amount)
		}
	})

	t.Run("pagination windows", func(t *testing.T) {
		list := search(t, "limit=2&page=1&sort=price")
		if len(list.Properties) != 2 {
			t.Fatalf("expected 2 listings on page 1, got %d", len(list.Properties))
		}
		if !list.Pagination.HasNextPage || list.Pagination.HasPrevPage {
			t.Fatalf("unexpected pagination flags: %+v", list.Pagination)
		}

		list = search(t, "limit=2&page=2&sort=price")
		if len(list.Properties) != 1 {
			t.Fatalf("expected 1 listing on page 2, got %d", len(list.Properties))
		}
		if list.Pagination.HasNextPage || !list.Pagination.HasPrevPage {
			t.Fatalf("unexpected pagination flags: %+v", list.Pagination)
		}
		if list.Properties[0].Price.Amount != 2200 {
			t.Fatalf("expected priciest listing last, got %d", list.Properties[0].Price.Amount)
		}
	})
}

// TestE2E_InquiryAndDashboard covers the visitor inquiry flow and the
// agent dashboard rollup
func TestE2E_InquiryAndDashboard(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	env.Bootstrap()

	resp, err := env.Post("/properties", newListingBody("Bright apartment near the park", "Cluj-Napoca", 750), env.AuthToken)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	var listing propertyPayload
	if err := json.Unmarshal(resp.Data, &listing); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	var inquiryID string

	t.Run("visitor submits inquiry without auth", func(t *testing.T) {
		resp, err := env.Post("/properties/"+listing.ID+"/inquiries", map[string]string{
			"name":    "Maria Pop",
			"email":   "maria.pop@example.com",
			"phone":   "+40 744 555 666",
			"message": "Is the apartment still available?",
		}, "")
		if err != nil {
			t.Fatalf("inquiry failed: %v", err)
		}
		var inquiry struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		if err := json.Unmarshal(resp.Data, &inquiry); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if inquiry.Status != "new" {
			t.Fatalf("expected new status, got %s", inquiry.Status)
		}
		inquiryID = inquiry.ID
	})

	t.Run("inquiry bumps the listing counter", func(t *testing.T) {
		resp, err := env.Get("/properties/"+listing.ID, "")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		var got propertyPayload
		if err := json.Unmarshal(resp.Data, &got); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if got.InquiryCount != 1 {
			t.Fatalf("expected inquiry count 1, got %d", got.InquiryCount)
		}
	})

	t.Run("agent lists and updates inquiry", func(t *testing.T) {
		resp, err := env.Get("/inquiries", env.AuthToken)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		var list struct {
			Inquiries []struct {
				ID string `json:"id"`
			} `json:"inquiries"`
		}
		if err := json.Unmarshal(resp.Data, &list); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if len(list.Inquiries) != 1 || list.Inquiries[0].ID != inquiryID {
			t.Fatalf("unexpected inquiries: %+v", list.Inquiries)
		}

		resp, err = env.Patch("/inquiries/"+inquiryID, map[string]string{"status": "contacted"}, env.AuthToken)
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		var updated struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(resp.Data, &updated); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if updated.Status != "contacted" {
			t.Fatalf("expected contacted, got %s", updated.Status)
		}
	})

	t.Run("dashboard aggregates activity", func(t *testing.T) {
		// One public get above recorded a view.
		resp, err := env.Get("/dashboard", env.AuthToken)
		if err != nil {
			t.Fatalf("dashboard failed: %v", err)
		}
		var summary struct {
			ListingsByStatus map[string]int64 `json:"listingsByStatus"`
			TotalViews       int64            `json:"totalViews"`
			TotalInquiries   int64            `json:"totalInquiries"`
			NewInquiries     int64            `json:"newInquiries"`
		}
		if err := json.Unmarshal(resp.Data, &summary); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if summary.ListingsByStatus["active"] != 1 {
			t.Fatalf("expected 1 active listing, got %d", summary.ListingsByStatus["active"])
		}
		if summary.TotalInquiries != 1 {
			t.Fatalf("expected 1 inquiry, got %d", summary.TotalInquiries)
		}
		if summary.NewInquiries != 0 {
			t.Fatalf("expected 0 new inquiries after contact, got %d", summary.NewInquiries)
		}
		if summary.TotalViews < 1 {
			t.Fatalf("expected at least 1 view, got %d", summary.TotalViews)
		}
	})
}

// TestE2E_PhotoUploadDownload covers the presigned photo flow against
// object storage
func TestE2E_PhotoUploadDownload(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	env.Bootstrap()

	resp, err := env.Post("/properties", newListingBody("Bright apartment near the park", "Cluj-Napoca", 750), env.AuthToken)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	var listing propertyPayload
	if err := json.Unmarshal(resp.Data, &listing); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	content := []byte("fake-jpeg-bytes-for-e2e")
	var storageKey string

	t.Run("init upload returns presigned URL", func(t *testing.T) {
		resp, err := env.Post("/properties/"+listing.ID+"/photos/init", map[string]string{
			"filename":    "living-room.jpg",
			"contentType": "image/jpeg",
		}, env.AuthToken)
		if err != nil {
			t.Fatalf("init failed: %v", err)
		}
		var init struct {
			StorageKey string `json:"storageKey"`
			UploadURL  string `json:"uploadUrl"`
		}
		if err := json.Unmarshal(resp.Data, &init); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if init.StorageKey == "" || init.UploadURL == "" {
			t.Fatal("expected storage key and upload URL")
		}
		storageKey = init.StorageKey

		if err := env.UploadFile(init.UploadURL, content, "image/jpeg"); err != nil {
			t.Fatalf("upload failed: %v", err)
		}
	})

	t.Run("complete attaches photo to listing", func(t *testing.T) {
		if _, err := env.Post("/properties/"+listing.ID+"/photos/complete", map[string]string{
			"storageKey": storageKey,
		}, env.AuthToken); err != nil {
			t.Fatalf("complete failed: %v", err)
		}

		resp, err := env.Get("/properties/"+listing.ID, "")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		var got propertyPayload
		if err := json.Unmarshal(resp.Data, &got); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if len(got.Photos) != 1 || got.Photos[0] != storageKey {
			t.Fatalf("unexpected photos: %v", got.Photos)
		}
	})

	t.Run("download URL serves the uploaded bytes", func(t *testing.T) {
		path := fmt.Sprintf("/properties/%s/photos/download?key=%s", listing.ID, url.QueryEscape(storageKey))
		resp, err := env.Get(path, "")
		if err != nil {
			t.Fatalf("download URL failed: %v", err)
		}
		var dl struct {
			DownloadURL string `json:"downloadUrl"`
		}
		if err := json.Unmarshal(resp.Data, &dl); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}

		downloaded, err := env.DownloadFile(dl.DownloadURL)
		if err != nil {
			t.Fatalf("download failed: %v", err)
		}
		if string(downloaded) != string(content) {
			t.Fatal("downloaded content does not match upload")
		}
	})
}
