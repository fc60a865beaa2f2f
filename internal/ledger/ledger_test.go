package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAccounts() []Account {
	return []Account{
		{ID: 1, FiLoginDisplayName: "Chase", YodleeName: "Freedom Card", AccountType: TypeCredit, CurrentBalance: 412.07},
		{ID: 2, UserName: "Joint Checking", FiName: "Ally Bank", AccountType: TypeBank, CurrentBalance: 1520},
		{ID: 3, UserName: "ignore", FiName: "Chase", AccountType: TypeBank, CurrentBalance: 10},
		{ID: 4, FiLoginDisplayName: "Sallie Mae", YodleeName: "Student Loan", AccountType: TypeLoan},
	}
}

func TestSpeakableBalance(t *testing.T) {
	tests := []struct {
		balance  float64
		expected string
	}{
		{0, "0 dollars"},
		{5, "5 dollars"},
		{12.5, "12 dollars and 50 cents"},
		{999.99, "999 dollars and 99 cents"},
		{1000, "1 thousand dollars"},
		{1234.56, "1 thousand 234 dollars and 56 cents"},
		{1005.01, "1 thousand 5 dollars and 1 cents"},
		{2500000, "2 million 500 thousand dollars"},
		{-42.1, "minus 42 dollars and 10 cents"},
		{3e12, "3 trillion dollars"},
		{1e15, "1 quadrillion dollars"},
		{1e20, "90 quadrillion dollars"},
		{-1e20, "minus 90 quadrillion dollars"},
		{math.NaN(), UnknownAmount},
		{math.Inf(1), UnknownAmount},
		{math.Inf(-1), UnknownAmount},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, SpeakableBalance(tt.balance))
		})
	}
}

func TestSpeakableName(t *testing.T) {
	accounts := sampleAccounts()
	assert.Equal(t, "Chase Freedom Card", SpeakableName(accounts[0]))
	assert.Equal(t, "Joint Checking", SpeakableName(accounts[1]))
}

func TestSpeakableSentence(t *testing.T) {
	tests := []struct {
		name     string
		account  Account
		expected string
	}{
		{
			name:     "Credit with balance",
			account:  Account{UserName: "Visa", AccountType: TypeCredit, CurrentBalance: 20},
			expected: "You owe 20 dollars on your Visa account.",
		},
		{
			name:     "Paid off loan",
			account:  Account{UserName: "Car", AccountType: TypeLoan},
			expected: "You owe nothing on your Car account.",
		},
		{
			name:     "Bank with balance",
			account:  Account{UserName: "Savings", AccountType: TypeBank, CurrentBalance: 1520.5},
			expected: "Your Savings account balance is 1 thousand 520 dollars and 50 cents.",
		},
		{
			name:     "Empty bank",
			account:  Account{UserName: "Savings", AccountType: TypeBank},
			expected: "Your Savings account is empty.",
		},
		{
			name:     "Investment uses bank wording",
			account:  Account{UserName: "Brokerage", AccountType: TypeInvestment, CurrentBalance: 3},
			expected: "Your Brokerage account balance is 3 dollars.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SpeakableSentence(tt.account))
		})
	}
}

func TestBuildIndex(t *testing.T) {
	index := BuildIndex([]Account{
		{ID: 7, FiLoginDisplayName: "Chase", UserName: "Chase Sapphire!", FiName: "JPMorgan-Chase"},
		{ID: 8, UserName: "ignore", FiName: "Hidden"},
	})

	require.Len(t, index, 1)
	assert.Equal(t, int64(7), index[0].ID)
	assert.Equal(t, "chase sapphire jpmorgan chase", index[0].Corpus)
}

func TestSearch(t *testing.T) {
	accounts := sampleAccounts()

	tests := []struct {
		term     string
		expected int64
	}{
		{"freedom", 1},
		{"Chase", 1},
		{"checking", 2},
		{"ally", 2},
		{"student loan", 4},
		{"stdent", 4},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			account, err := Search(accounts, tt.term)
			require.NoError(t, err)
			require.NotNil(t, account)
			assert.Equal(t, tt.expected, account.ID)
		})
	}
}

func TestSearchNoAccounts(t *testing.T) {
	_, err := Search([]Account{{ID: 1, UserName: "ignore"}}, "anything")
	assert.ErrorIs(t, err, ErrNoAccounts)
}

func TestSearchTiesKeepOrder(t *testing.T) {
	id, err := BuildIndex([]Account{
		{ID: 10, UserName: "alpha"},
		{ID: 11, UserName: "alpha"},
	}).Search("zzz")
	require.NoError(t, err)
	assert.Equal(t, int64(10), id)
}

func TestFind(t *testing.T) {
	accounts := sampleAccounts()
	require.NotNil(t, Find(accounts, 2))
	assert.Equal(t, "Joint Checking", Find(accounts, 2).UserName)
	assert.Nil(t, Find(accounts, 99))
}
