package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/askmiles/miles-server/internal/metrics"
	"github.com/askmiles/miles-server/internal/models"
)

const resolveCacheSize = 256

// CardDataService holds the in-memory snapshots of the three read-only
// datasets: the card catalog, the transfer-partner table, and the default
// valuations. Snapshots are loaded from JSON files in the data directory and
// swapped atomically on reload; queries take the read lock and never mutate.
type CardDataService struct {
	mu      sync.RWMutex
	dataDir string

	cards        []models.CreditCard
	cardNames    []string       // unique canonical names, first-seen order
	cardIndex    map[string]int // canonical name -> card index, last one wins
	partners     models.TransferPartnerTable
	valuations   models.ValuationsFile
	resolveCache *lru.Cache[string, string] // query -> canonical name

	fuzzyThreshold int
}

func NewCardDataService(dataDir string, fuzzyThreshold int) (*CardDataService, error) {
	s := &CardDataService{
		dataDir:        dataDir,
		fuzzyThreshold: fuzzyThreshold,
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}

	return s, nil
}

// Reload re-reads all dataset files and swaps the snapshot. A missing file
// yields an empty dataset; a file that exists but fails to parse is an error
// so a bad download never replaces a good snapshot.
func (s *CardDataService) Reload() error {
	var cards []models.CreditCard
	if err := loadJSONFile(filepath.Join(s.dataDir, "credit_cards.json"), &cards); err != nil {
		return err
	}

	var partners models.TransferPartnerTable
	if err := loadJSONFile(filepath.Join(s.dataDir, "transfer_partners.json"), &partners); err != nil {
		return err
	}

	valuations := models.ValuationsFile{Version: "1.0", Unit: "cents_per_point"}
	if err := loadJSONFile(filepath.Join(s.dataDir, "valuations.json"), &valuations); err != nil {
		return err
	}

	// Build the canonical-name lookup. Duplicate names are a data-quality
	// issue upstream; the last occurrence wins, matching dataset intent.
	cardIndex := make(map[string]int, len(cards))
	cardNames := make([]string, 0, len(cards))
	for i := range cards {
		name := cards[i].CardName
		if name == "" {
			continue
		}
		if _, seen := cardIndex[name]; !seen {
			cardNames = append(cardNames, name)
		}
		cardIndex[name] = i
	}

	cache, err := lru.New[string, string](resolveCacheSize)
	if err != nil {
		return fmt.Errorf("failed to create resolve cache: %w", err)
	}

	s.mu.Lock()
	s.cards = cards
	s.cardNames = cardNames
	s.cardIndex = cardIndex
	s.partners = partners
	s.valuations = valuations
	s.resolveCache = cache
	s.mu.Unlock()

	metrics.CatalogCardsTotal.Set(float64(len(cards)))
	metrics.TransferProgramsTotal.Set(float64(len(partners.Programs)))
	metrics.ValuationsTotal.Set(float64(len(valuations.Valuations)))
	metrics.SnapshotReloadsTotal.Inc()

	log.Printf("Card data loaded: %d cards, %d transfer programs, %d valuations",
		len(cards), len(partners.Programs), len(valuations.Valuations))

	return nil
}

func loadJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Warning: %s not found, using empty dataset", filepath.Base(path))
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Cards returns the current catalog snapshot. Callers must not mutate it.
func (s *CardDataService) Cards() []models.CreditCard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cards
}

func (s *CardDataService) CardCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards)
}

// Partners returns the current transfer-partner snapshot.
func (s *CardDataService) Partners() models.TransferPartnerTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.partners
}

func (s *CardDataService) ProgramCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.partners.Programs)
}

// DefaultValuations flattens the valuations dataset to cents-per-point by
// program key.
func (s *CardDataService) DefaultValuations() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vals := make(map[string]float64, len(s.valuations.Valuations))
	for key, entry := range s.valuations.Valuations {
		vals[key] = entry.Value
	}
	return vals
}

// ValuationMetadata returns the full valuations dataset including display
// names and categories.
func (s *CardDataService) ValuationMetadata() models.ValuationsFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.valuations
}

// containsFold reports whether substr appears in s, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
