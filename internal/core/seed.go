package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Seed returns the demo items the list starts with on every launch.
// Each call generates fresh ids.
func Seed() []BudgetItem {
	day := func(unix int64) Date { return DateOf(time.Unix(unix, 0)) }
	return []BudgetItem{
		{
			ID:       uuid.New(),
			Name:     "Épicerie",
			Amount:   decimal.NewFromInt(50),
			Tags:     []Tag{Alimentation, Sante},
			Date:     day(1644962400),
			Priority: Medium,
			ImageURL: "https://images.unsplash.com/photo-1692158962133-6c97ee651ab9?q=80&w=2960&auto=format&fit=crop",
		},
		{
			ID:       uuid.New(),
			Name:     "Factures",
			Amount:   decimal.NewFromInt(100),
			Tags:     []Tag{Services},
			Date:     day(1643344800),
			Priority: High,
			ImageURL: "https://images.unsplash.com/photo-1679810394015-c995ae9d5417?q=80&w=2604&auto=format&fit=crop",
		},
		{
			ID:       uuid.New(),
			Name:     "Loisirs",
			Amount:   decimal.NewFromInt(30),
			Tags:     []Tag{Divertissement},
			Date:     day(1642586400),
			Priority: Low,
			ImageURL: "https://images.unsplash.com/photo-1680789526837-4876e651fe52?q=80&w=2833&auto=format&fit=crop",
		},
		{
			ID:       uuid.New(),
			Name:     "Moto",
			Amount:   decimal.NewFromInt(1000),
			Tags:     []Tag{Moto, Sport},
			Date:     day(1642586400),
			Priority: Low,
			ImageURL: "https://images.unsplash.com/photo-1650355984865-9ed9377f1a6c?q=80&w=2940&auto=format&fit=crop",
		},
	}
}
