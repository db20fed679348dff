package permutations

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"golang.org/x/net/publicsuffix"
)

const DefaultBatchRatio = 100

// Position is one character of the input together with the characters that
// may replace it.
type Position struct {
	Char          string
	Substitutions []string
	Frozen        bool
}

type Combinatorics struct {
	freezeSuffix bool
}

// NewCombinatorics returns a calculator. With freezeSuffix set, the public
// suffix of the domain and the dot in front of it are never substituted.
func NewCombinatorics(freezeSuffix bool) *Combinatorics {
	return &Combinatorics{freezeSuffix: freezeSuffix}
}

func (c *Combinatorics) Positions(domain string, cm ConfusableMap) []Position {
	frozenFrom := len(domain)
	if c.freezeSuffix {
		frozenFrom = suffixStart(domain)
	}

	positions := make([]Position, 0, len(domain))
	for i, r := range domain {
		ch := string(r)
		subs := cm.Substitutions(r)
		frozen := i >= frozenFrom
		if frozen || len(subs) == 0 {
			subs = []string{ch}
		}
		positions = append(positions, Position{Char: ch, Substitutions: subs, Frozen: frozen})
	}
	return positions
}

// Count returns the number of variants for domain along with the branching
// factor of every character, in order.
func (c *Combinatorics) Count(domain string, cm ConfusableMap) (*big.Int, []int) {
	return countPositions(c.Positions(domain, cm))
}

// CountCombinations multiplies, over every character of domain, the size of
// its confusable set (1 for characters absent from cm).
func CountCombinations(domain string, cm ConfusableMap) (*big.Int, []int) {
	return NewCombinatorics(false).Count(domain, cm)
}

func countPositions(positions []Position) (*big.Int, []int) {
	total := big.NewInt(1)
	factors := make([]int, len(positions))
	for i, p := range positions {
		factors[i] = len(p.Substitutions)
		total.Mul(total, big.NewInt(int64(factors[i])))
	}
	return total, factors
}

type Plan struct {
	BatchSize int
	Batches   *big.Int
}

// BatchPlan sizes the batches of an intensive run. An override > 0 is used
// as is; otherwise the size is ceil(total/ratio), so that roughly ratio
// batches come out.
func BatchPlan(total *big.Int, ratio, override int) (Plan, error) {
	if total == nil || total.Sign() <= 0 {
		return Plan{}, fmt.Errorf("invalid combination count %v", total)
	}
	if ratio <= 0 {
		ratio = DefaultBatchRatio
	}

	size := big.NewInt(int64(override))
	if override <= 0 {
		size = ceilDiv(total, big.NewInt(int64(ratio)))
	}
	if !size.IsInt64() || size.Int64() > math.MaxInt {
		return Plan{}, fmt.Errorf("%w: batch size %s", ErrTooLarge, size)
	}
	return Plan{
		BatchSize: int(size.Int64()),
		Batches:   ceilDiv(total, size),
	}, nil
}

func ceilDiv(a, b *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// FormatFactors renders factors the way they are reported to users: "2, 1, 3".
func FormatFactors(factors []int) string {
	parts := make([]string, len(factors))
	for i, f := range factors {
		parts[i] = fmt.Sprint(f)
	}
	return strings.Join(parts, ", ")
}

func suffixStart(domain string) int {
	suffix, _ := publicsuffix.PublicSuffix(domain)
	if suffix == "" || suffix == domain || !strings.HasSuffix(domain, "."+suffix) {
		return len(domain)
	}
	return len(domain) - len(suffix) - 1
}
