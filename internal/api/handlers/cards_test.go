package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/askmiles/miles-server/internal/models"
	"github.com/askmiles/miles-server/internal/services"
)

func newTestCardRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cards := []models.CreditCard{
		{CardName: "Chase Sapphire Preferred", Issuer: "Chase", CardType: "personal"},
	}
	data, err := json.Marshal(cards)
	if err != nil {
		t.Fatalf("failed to marshal fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "credit_cards.json"), data, 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	svc, err := services.NewCardDataService(dir, 85)
	if err != nil {
		t.Fatalf("failed to load card data: %v", err)
	}

	h := NewCardHandler(svc)
	router := gin.New()
	router.GET("/api/cards/search", h.SearchCards)
	router.GET("/api/cards/top-offers", h.GetTopOffers)
	return router
}

func getStatus(t *testing.T, router *gin.Engine, url string) int {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	router.ServeHTTP(w, req)
	return w.Code
}

func TestSearchCardsRejectsMalformedIntParams(t *testing.T) {
	router := newTestCardRouter(t)

	if code := getStatus(t, router, "/api/cards/search?q=chase&max_results=abc"); code != http.StatusBadRequest {
		t.Errorf("malformed max_results: status = %d, want 400", code)
	}
	if code := getStatus(t, router, "/api/cards/search?q=chase&recently_updated_days=xyz"); code != http.StatusBadRequest {
		t.Errorf("malformed recently_updated_days: status = %d, want 400", code)
	}
	if code := getStatus(t, router, "/api/cards/top-offers?n=five"); code != http.StatusBadRequest {
		t.Errorf("malformed n: status = %d, want 400", code)
	}
}

func TestSearchCardsDefaultsAbsentIntParams(t *testing.T) {
	router := newTestCardRouter(t)

	if code := getStatus(t, router, "/api/cards/search?q=chase"); code != http.StatusOK {
		t.Errorf("absent params: status = %d, want 200", code)
	}
	if code := getStatus(t, router, "/api/cards/search?q=chase&max_results=5"); code != http.StatusOK {
		t.Errorf("valid max_results: status = %d, want 200", code)
	}
}
