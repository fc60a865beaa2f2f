package ledger

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// ErrNoAccounts is returned when there is nothing to search
var ErrNoAccounts = errors.New("no searchable accounts")

var nonAlnum = regexp.MustCompile(`(?i)[^0-9a-z]+`)

// Entry is one searchable account in an Index
type Entry struct {
	ID     int64
	Corpus string
}

// Index holds the searchable text of each account, in account order
type Index []Entry

// BuildIndex collects the naming fields of every account into a normalized
// corpus. Accounts named "ignore" are left out.
func BuildIndex(accounts []Account) Index {
	index := make(Index, 0, len(accounts))
	for _, a := range accounts {
		if a.UserName == IgnoreName {
			continue
		}

		var fields []string
		for _, v := range []string{a.FiLoginDisplayName, a.UserName, a.AccountName, a.YodleeName, a.FiName} {
			if v != "" {
				fields = append(fields, v)
			}
		}

		seen := make(map[string]bool)
		var words []string
		for _, w := range strings.Split(strings.Join(fields, " "), " ") {
			if seen[w] {
				continue
			}
			seen[w] = true
			words = append(words, w)
		}

		corpus := nonAlnum.ReplaceAllString(strings.Join(words, " "), " ")
		index = append(index, Entry{
			ID:     a.ID,
			Corpus: strings.ToLower(strings.TrimSpace(corpus)),
		})
	}
	return index
}

// Score rates how well term matches corpus. Each word of the term
// contributes the similarity of its closest corpus word, in [0, 1].
func Score(term, corpus string) float64 {
	terms := strings.Fields(strings.ToLower(term))
	words := strings.Fields(corpus)
	if len(terms) == 0 || len(words) == 0 {
		return 0
	}

	var total float64
	for _, t := range terms {
		best := 0.0
		for _, w := range words {
			if s := similarity(t, w); s > best {
				best = s
			}
		}
		total += best
	}
	return total
}

func similarity(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// Search returns the id of the account that best matches term. Ties go to
// the account listed first.
func (idx Index) Search(term string) (int64, error) {
	if len(idx) == 0 {
		return 0, ErrNoAccounts
	}

	type result struct {
		id    int64
		score float64
	}
	results := make([]result, len(idx))
	for i, e := range idx {
		results[i] = result{id: e.ID, score: Score(term, e.Corpus)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	return results[0].id, nil
}

// Search finds the account that best matches term
func Search(accounts []Account, term string) (*Account, error) {
	id, err := BuildIndex(accounts).Search(term)
	if err != nil {
		return nil, err
	}
	return Find(accounts, id), nil
}
