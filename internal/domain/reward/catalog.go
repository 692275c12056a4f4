// Package reward содержит статический каталог наград и правила обмена очков.
package reward

import (
	"strings"

	"github.com/sync-campus/sync-hub/internal/domain/shared"
)

// Reward - награда из каталога.
type Reward struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Cost     int    `json:"cost"`
	Category string `json:"category"`
}

// CategoryEssentials - единственная категория текущего каталога.
const CategoryEssentials = "ESSENTIALS (100 - 300 PTS)"

var catalog = []Reward{
	{ID: "r1", Name: "Sync Sticker", Cost: 100, Category: CategoryEssentials},
	{ID: "r2", Name: "Large Soda", Cost: 200, Category: CategoryEssentials},
	{ID: "r3", Name: "Soft Serve", Cost: 250, Category: CategoryEssentials},
	{ID: "r4", Name: "Small Fries", Cost: 300, Category: CategoryEssentials},
}

// Catalog возвращает копию каталога в порядке отображения.
func Catalog() []Reward {
	return append([]Reward(nil), catalog...)
}

// Find ищет награду по идентификатору.
func Find(id string) (Reward, error) {
	for _, r := range catalog {
		if r.ID == id {
			return r, nil
		}
	}
	return Reward{}, shared.ErrUnknownReward
}

// CanAfford возвращает true, если баланса хватает на обмен.
func CanAfford(balance, cost int) bool {
	return cost <= balance
}

// CheckRedemption проверяет обмен: имя задано, стоимость положительна и
// баланс после списания не станет отрицательным.
func CheckRedemption(name string, cost, balance int) error {
	if strings.TrimSpace(name) == "" {
		return shared.ErrEmptyRewardName
	}
	if cost <= 0 {
		return shared.ErrInvalidCost
	}
	if !CanAfford(balance, cost) {
		return shared.ErrInsufficientPoints
	}
	return nil
}
