package ussd

import (
	"fmt"

	"github.com/agrimint/ussd-service/internal/platform"
)

// Rendering produces the one-line-per-item text the USSD menu prints,
// in the exact order the platform returned the items.

func renderFederations(federations []platform.Federation) []string {
	lines := make([]string, 0, len(federations))
	for _, f := range federations {
		lines = append(lines, fmt.Sprintf("name: %s - id: %d", f.Name, f.ID))
	}
	return lines
}

func renderMembers(members []platform.Member) []string {
	lines := make([]string, 0, len(members))
	for _, m := range members {
		lines = append(lines, fmt.Sprintf("name: %s - id: %d", m.Name, m.ID))
	}
	return lines
}

func renderTransactions(transactions []platform.Transaction) []string {
	lines := make([]string, 0, len(transactions))
	for _, tx := range transactions {
		lines = append(lines, fmt.Sprintf("id: %d - amount: %d", tx.ID, tx.Amount))
	}
	return lines
}
