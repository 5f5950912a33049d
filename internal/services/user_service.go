package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/askmiles/miles-server/internal/metrics"
	"github.com/askmiles/miles-server/internal/models"
)

// ErrCardNotFound is returned when a wallet operation names a card that does
// not resolve to any catalog entry.
var ErrCardNotFound = errors.New("card not found")

// UserService owns the mutable per-user state: the wallet, custom point
// valuations, and merchant credits. It joins against the catalog snapshot
// for enrichment and valuation merging.
type UserService struct {
	db   *gorm.DB
	data *CardDataService
}

func NewUserService(db *gorm.DB, data *CardDataService) *UserService {
	return &UserService{db: db, data: data}
}

// Wallet returns the raw wallet entries in the order they were added.
func (u *UserService) Wallet() ([]models.WalletCard, error) {
	var cards []models.WalletCard
	if err := u.db.Order("added_at").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	return cards, nil
}

// EnrichedWallet joins each wallet entry against the catalog. Entries whose
// card no longer resolves are silently dropped from the view; they stay in
// storage in case a later catalog refresh brings the card back.
func (u *UserService) EnrichedWallet() ([]models.EnrichedWalletCard, error) {
	wallet, err := u.Wallet()
	if err != nil {
		return nil, err
	}

	enriched := make([]models.EnrichedWalletCard, 0, len(wallet))
	for _, entry := range wallet {
		card := u.data.ResolveCard(entry.CardName)
		if card == nil {
			continue
		}
		enriched = append(enriched, models.EnrichedWalletCard{
			CreditCard: *card,
			UserNote:   entry.Note,
		})
	}
	return enriched, nil
}

// AddCardToWallet resolves the name to a catalog entry and stores the
// canonical name. Adding a card already in the wallet updates its note.
func (u *UserService) AddCardToWallet(cardName, note string) (*models.CreditCard, error) {
	card := u.data.ResolveCard(cardName)
	if card == nil {
		return nil, ErrCardNotFound
	}

	var existing models.WalletCard
	err := u.db.Where("lower(card_name) = ?", strings.ToLower(card.CardName)).First(&existing).Error
	switch {
	case err == nil:
		if note != "" {
			existing.Note = note
			if err := u.db.Save(&existing).Error; err != nil {
				return nil, fmt.Errorf("failed to update wallet entry: %w", err)
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry := models.WalletCard{
			CardName: card.CardName,
			Note:     note,
			AddedAt:  time.Now().UTC(),
		}
		if err := u.db.Create(&entry).Error; err != nil {
			return nil, fmt.Errorf("failed to add wallet entry: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to query wallet: %w", err)
	}

	u.updateWalletMetrics()
	return card, nil
}

// RemoveCardFromWallet deletes by case-insensitive name match. Returns false
// when no entry matched.
func (u *UserService) RemoveCardFromWallet(cardName string) (bool, error) {
	result := u.db.Where("lower(card_name) = ?", strings.ToLower(cardName)).Delete(&models.WalletCard{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to remove wallet entry: %w", result.Error)
	}
	u.updateWalletMetrics()
	return result.RowsAffected > 0, nil
}

func (u *UserService) updateWalletMetrics() {
	var count int64
	if err := u.db.Model(&models.WalletCard{}).Count(&count).Error; err == nil {
		metrics.WalletCardsTotal.Set(float64(count))
	}
}

// CustomValuations returns the user's overrides keyed by normalized program
// key.
func (u *UserService) CustomValuations() (map[string]float64, error) {
	var rows []models.CustomValuation
	if err := u.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load custom valuations: %w", err)
	}
	vals := make(map[string]float64, len(rows))
	for _, row := range rows {
		vals[row.ProgramKey] = row.Value
	}
	return vals, nil
}

// SetCustomValuation upserts an override. The currency name is normalized to
// the canonical program key, which is returned.
func (u *UserService) SetCustomValuation(currency string, value float64) (string, error) {
	key := models.NormalizeProgramKey(currency)
	row := models.CustomValuation{ProgramKey: key, Value: value, UpdatedAt: time.Now().UTC()}
	if err := u.db.Save(&row).Error; err != nil {
		return "", fmt.Errorf("failed to save valuation: %w", err)
	}
	return key, nil
}

// MergedValuations merges the default valuation table with the user's
// overrides; overrides win. Errors reading overrides degrade to defaults so
// transfer rankings keep working.
func (u *UserService) MergedValuations() map[string]float64 {
	merged := u.data.DefaultValuations()
	custom, err := u.CustomValuations()
	if err != nil {
		return merged
	}
	for key, val := range custom {
		merged[key] = val
	}
	return merged
}

// FilteredValuations returns merged valuations limited to the requested
// programs. Program references match by normalized key or by the dataset's
// display name; unknown programs are simply absent from the result.
func (u *UserService) FilteredValuations(programs []string) map[string]float64 {
	merged := u.MergedValuations()
	if len(programs) == 0 {
		return merged
	}

	meta := u.data.ValuationMetadata()
	lookup := make(map[string]string, len(merged)*2)
	for key := range merged {
		lookup[models.NormalizeProgramKey(key)] = key
		if entry, ok := meta.Valuations[key]; ok && entry.DisplayName != "" {
			lookup[models.NormalizeProgramKey(entry.DisplayName)] = key
		}
	}

	filtered := make(map[string]float64)
	for _, program := range programs {
		if key, ok := lookup[models.NormalizeProgramKey(program)]; ok {
			filtered[key] = merged[key]
		}
	}
	return filtered
}

// Credits returns the user's merchant credits.
func (u *UserService) Credits() (map[string]models.MerchantCreditInfo, error) {
	var rows []models.MerchantCredit
	if err := u.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load credits: %w", err)
	}
	credits := make(map[string]models.MerchantCreditInfo, len(rows))
	for _, row := range rows {
		credits[row.Merchant] = models.MerchantCreditInfo{
			AddedAt: row.AddedAt.UTC().Format(time.RFC3339),
		}
	}
	return credits, nil
}

func (u *UserService) AddMerchantCredit(merchant string) error {
	row := models.MerchantCredit{Merchant: merchant, AddedAt: time.Now().UTC()}
	if err := u.db.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to add credit: %w", err)
	}
	return nil
}

func (u *UserService) RemoveMerchantCredit(merchant string) (bool, error) {
	result := u.db.Delete(&models.MerchantCredit{}, "merchant = ?", merchant)
	if result.Error != nil {
		return false, fmt.Errorf("failed to remove credit: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// UserData assembles the full user payload: enriched wallet, merged
// valuations, and credits.
func (u *UserService) UserData() (*models.UserDataResponse, error) {
	wallet, err := u.EnrichedWallet()
	if err != nil {
		return nil, err
	}
	credits, err := u.Credits()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	return &models.UserDataResponse{
		Wallet: wallet,
		Valuations: models.ValuationListing{
			LastUpdatedUTC: now,
			Unit:           "cents_per_point",
			Valuations:     u.MergedValuations(),
		},
		Credits: models.CreditListing{
			LastUpdatedUTC: now,
			Credits:        credits,
		},
	}, nil
}
