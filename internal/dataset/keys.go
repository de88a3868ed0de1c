package dataset

import (
	"sort"

	"github.com/sells-group/energy-gdp/internal/model"
)

// Keyed is implemented by records that carry a (code, year) key.
type Keyed interface {
	Key() model.Key
}

// DuplicateKeys returns every key that occurs more than once in records, sorted.
// The join multiplies rows for such keys, so callers surface them instead of
// deduplicating silently.
func DuplicateKeys[T Keyed](records []T) []model.Key {
	counts := make(map[model.Key]int, len(records))
	for _, r := range records {
		counts[r.Key()]++
	}

	var dups []model.Key
	for k, n := range counts {
		if n > 1 {
			dups = append(dups, k)
		}
	}
	sortKeys(dups)
	return dups
}

// DuplicateRegionCodes returns country codes assigned more than once in the mapping, sorted.
func DuplicateRegionCodes(records []model.RegionRecord) []string {
	counts := make(map[string]int, len(records))
	for _, r := range records {
		counts[r.CountryCode]++
	}

	var dups []string
	for code, n := range counts {
		if n > 1 {
			dups = append(dups, code)
		}
	}
	sort.Strings(dups)
	return dups
}

func sortKeys(keys []model.Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CountryCode != keys[j].CountryCode {
			return keys[i].CountryCode < keys[j].CountryCode
		}
		return keys[i].Year < keys[j].Year
	})
}
