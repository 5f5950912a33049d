package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/askmiles/miles-server/internal/models"
)

// TransferService answers transfer-partner queries over the partner table,
// merging in the user's point valuations to rank destinations.
type TransferService struct {
	data  *CardDataService
	users *UserService
}

func NewTransferService(data *CardDataService, users *UserService) *TransferService {
	return &TransferService{data: data, users: users}
}

// LookupPartners resolves a partner query in either direction. direction is
// "from" (where can these points go) or "to" (which programs can send points
// here). The result is one of TransferFromResult, TransferToResult, or the
// explicit TransferNoneResult marker.
func (t *TransferService) LookupPartners(programName, direction string) (any, error) {
	if direction != "from" && direction != "to" {
		return nil, fmt.Errorf("direction must be 'from' or 'to'")
	}

	table := t.data.Partners()
	valuations := t.users.MergedValuations()
	now := time.Now().UTC().Format(time.RFC3339)

	if direction == "from" {
		if result := transferFrom(table, valuations, programName); result != nil {
			result.LastUpdatedUTC = now
			return result, nil
		}
	} else {
		if result := transferTo(table, valuations, programName); result != nil {
			result.LastUpdatedUTC = now
			return result, nil
		}
	}

	return &models.TransferNoneResult{
		Type:           "none",
		LastUpdatedUTC: now,
		Results:        []models.TransferEdge{},
		Message:        fmt.Sprintf("No transfer partners found for '%s'", programName),
	}, nil
}

// transferFrom finds the first source program whose name contains the query
// and returns its outgoing edges ranked by destination valuation.
func transferFrom(table models.TransferPartnerTable, valuations map[string]float64, programName string) *models.TransferFromResult {
	for _, prog := range table.Programs {
		if !containsFold(prog.Name, programName) {
			continue
		}

		edges := make([]models.TransferEdge, 0, len(prog.Partners))
		for _, partner := range prog.Partners {
			valuation := valuationFor(valuations, partner.LoyaltyProgram)
			edge := models.TransferEdge{
				LoyaltyProgram: partner.LoyaltyProgram,
				Best:           partner.Best,
				Ratio:          partner.Ratio,
				Notes:          partner.Notes,
				Valuation:      &valuation,
				Summary:        transferSummary(partner.Ratio, valuation),
			}
			if partner.Bonus.Present() {
				bonus := partner.Bonus
				edge.Bonus = &bonus
				edge.BonusExpiration = partner.BonusExpiration
			}
			edges = append(edges, edge)
		}

		sort.SliceStable(edges, func(i, j int) bool {
			return *edges[i].Valuation > *edges[j].Valuation
		})

		return &models.TransferFromResult{
			Type:          "from_program",
			SourceProgram: prog.Name,
			DestPrograms:  edges,
		}
	}
	return nil
}

// transferTo scans every edge for destinations containing the query. Results
// keep table insertion order; unlike the "from" direction they are not
// ranked, so a reader sees sources grouped the way the dataset lists them.
func transferTo(table models.TransferPartnerTable, valuations map[string]float64, programName string) *models.TransferToResult {
	sources := make([]models.TransferEdge, 0)

	for _, prog := range table.Programs {
		sourceVal := valuationFor(valuations, prog.Name)
		for _, partner := range prog.Partners {
			if !containsFold(partner.LoyaltyProgram, programName) {
				continue
			}

			edge := models.TransferEdge{
				LoyaltyProgram: prog.Name,
				Ratio:          partner.Ratio,
				Best:           partner.Best,
				Notes:          partner.Notes,
				Summary:        transferSummary(partner.Ratio, sourceVal),
			}
			if partner.Bonus.Present() {
				bonus := partner.Bonus
				edge.Bonus = &bonus
				edge.BonusExpiration = partner.BonusExpiration
			}
			sources = append(sources, edge)
		}
	}

	if len(sources) == 0 {
		return nil
	}

	return &models.TransferToResult{
		Type:           "to_program",
		DestProgram:    programName,
		Valuation:      valuationFor(valuations, programName),
		SourcePrograms: sources,
	}
}

// ActiveBonuses lists every edge carrying a real transfer bonus, best first.
// Sentinel bonuses ("None", "Varies") and multipliers at or below 1.0 never
// qualify.
func (t *TransferService) ActiveBonuses(fromProgram string) models.TransferBonusResult {
	table := t.data.Partners()
	bonuses := activeBonuses(table, fromProgram)

	return models.TransferBonusResult{
		Bonuses:        bonuses,
		Count:          len(bonuses),
		LastUpdatedUTC: time.Now().UTC().Format(time.RFC3339),
	}
}

func activeBonuses(table models.TransferPartnerTable, fromProgram string) []models.TransferBonus {
	bonuses := make([]models.TransferBonus, 0)

	for _, prog := range table.Programs {
		if fromProgram != "" && !containsFold(prog.Name, fromProgram) {
			continue
		}

		for _, partner := range prog.Partners {
			mult, ok := partner.Bonus.Multiplier()
			if !ok || mult <= 1.0 {
				continue
			}

			bonuses = append(bonuses, models.TransferBonus{
				FromProgram:     prog.Name,
				ToProgram:       partner.LoyaltyProgram,
				BonusMultiplier: mult,
				BonusPercentage: fmt.Sprintf("%.0f%%", (mult-1.0)*100),
				NormalRatio:     displayFloat(partner.Ratio) + ":1",
				EffectiveRatio:  displayFloat(partner.Ratio) + ":" + displayFloat(mult*partner.Ratio),
				Notes:           partner.Notes,
				BonusExpiration: partner.BonusExpiration,
			})
		}
	}

	sort.SliceStable(bonuses, func(i, j int) bool {
		return bonuses[i].BonusMultiplier > bonuses[j].BonusMultiplier
	})

	return bonuses
}

// valuationFor looks up a program's valuation by normalized key. Unknown
// programs default to 1.0 cents per point so rankings assume break-even
// rather than skewing to zero.
func valuationFor(valuations map[string]float64, program string) float64 {
	if val, ok := valuations[models.NormalizeProgramKey(program)]; ok {
		return val
	}
	return 1.0
}

func transferSummary(ratio, valuation float64) string {
	return fmt.Sprintf("%s:1, %s cents per point", displayFloat(ratio), displayFloat(valuation))
}

// displayFloat renders a float the way the datasets historically displayed them:
// shortest decimal form, but whole numbers keep a trailing ".0" (1 -> "1.0",
// 1.25 -> "1.25").
func displayFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
