// Package ledger models aggregated financial accounts and turns them into
// short spoken sentences.
package ledger

import (
	"fmt"
	"math"
	"strings"
)

// Account types reported by the aggregator
const (
	TypeBank       = "bank"
	TypeCredit     = "credit"
	TypeLoan       = "loan"
	TypeInvestment = "investment"
)

// IgnoreName marks an account the user never wants spoken or searched
const IgnoreName = "ignore"

// Account is a single aggregated account. Field names follow the aggregator's JSON.
type Account struct {
	ID                 int64   `json:"id" yaml:"id"`
	UserName           string  `json:"userName,omitempty" yaml:"userName,omitempty"`
	AccountName        string  `json:"accountName,omitempty" yaml:"accountName,omitempty"`
	FiName             string  `json:"fiName,omitempty" yaml:"fiName,omitempty"`
	FiLoginDisplayName string  `json:"fiLoginDisplayName,omitempty" yaml:"fiLoginDisplayName,omitempty"`
	YodleeName         string  `json:"yodleeName,omitempty" yaml:"yodleeName,omitempty"`
	AccountType        string  `json:"accountType" yaml:"accountType"`
	CurrentBalance     float64 `json:"currentBalance" yaml:"currentBalance"`
}

// Find returns the account with the given id, or nil
func Find(accounts []Account, id int64) *Account {
	for i := range accounts {
		if accounts[i].ID == id {
			return &accounts[i]
		}
	}
	return nil
}

// SpeakableName prefers the user-assigned name and falls back to the
// institution's display names.
func SpeakableName(a Account) string {
	if a.UserName != "" {
		return a.UserName
	}
	return strings.TrimSpace(a.FiLoginDisplayName + " " + a.YodleeName)
}

var scales = []string{"", "thousand", "million", "billion", "trillion", "quadrillion"}

// maxSpeakable keeps the amount in cents within int64
const maxSpeakable = 9e16

// UnknownAmount is spoken for balances that are not finite numbers
const UnknownAmount = "an unknown amount"

// SpeakableBalance renders an amount the way it would be read aloud, e.g.
// 1234.5 becomes "1 thousand 234 dollars and 50 cents". Amounts beyond
// maxSpeakable are spoken as maxSpeakable.
func SpeakableBalance(balance float64) string {
	if math.IsNaN(balance) || math.IsInf(balance, 0) {
		return UnknownAmount
	}
	cents := int64(math.Round(math.Min(math.Abs(balance), maxSpeakable) * 100))
	dollars := cents / 100
	cents %= 100

	var groups []int64
	for d := dollars; ; d /= 1000 {
		groups = append(groups, d%1000)
		if d < 1000 {
			break
		}
	}

	var parts []string
	for i := len(groups) - 1; i >= 0; i-- {
		// Zero groups are skipped except the units when nothing else was said.
		if groups[i] == 0 && (i > 0 || len(parts) > 0) {
			continue
		}
		part := fmt.Sprintf("%d", groups[i])
		if i > 0 && i < len(scales) {
			part += " " + scales[i]
		}
		parts = append(parts, part)
	}

	text := strings.Join(parts, " ") + " dollars"
	if cents != 0 {
		text += fmt.Sprintf(" and %d cents", cents)
	}
	if balance < 0 && (dollars != 0 || cents != 0) {
		text = "minus " + text
	}
	return text
}

// SpeakableSentence describes the account's balance in one sentence
func SpeakableSentence(a Account) string {
	name := SpeakableName(a)
	balance := SpeakableBalance(a.CurrentBalance)
	empty := math.Round(a.CurrentBalance*100) == 0

	switch a.AccountType {
	case TypeCredit, TypeLoan:
		if empty {
			return fmt.Sprintf("You owe nothing on your %s account.", name)
		}
		return fmt.Sprintf("You owe %s on your %s account.", balance, name)
	default:
		if empty {
			return fmt.Sprintf("Your %s account is empty.", name)
		}
		return fmt.Sprintf("Your %s account balance is %s.", name, balance)
	}
}
