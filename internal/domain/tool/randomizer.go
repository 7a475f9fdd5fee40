package tool

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EmptyParameters reports one or more missing parameters
func EmptyParameters(names ...string) *shared.DomainError {
	return shared.Missing(fmt.Sprintf(`The parameter(s) "%s" cannot be empty.`, strings.Join(names, ", ")))
}

// InvalidParameter reports a parameter whose value is not of the expected type
func InvalidParameter(name, kind string) *shared.DomainError {
	return shared.Invalid(fmt.Sprintf(`The parameter "%s" has an invalid value. The value must be an "%s".`, name, kind))
}

// MustBeLessThan reports an ordering violation between two parameters
func MustBeLessThan(name, other string) *shared.DomainError {
	return shared.Invalid(fmt.Sprintf(`The parameter "%s" must be less than "%s".`, name, other))
}

// Randomizer generates random numbers; safe for concurrent use
type Randomizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomizer creates a randomizer seeded from the runtime source
func NewRandomizer() *Randomizer {
	return &Randomizer{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededRandomizer creates a deterministic randomizer
func NewSeededRandomizer(seed1, seed2 uint64) *Randomizer {
	return &Randomizer{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// Int returns a uniformly distributed integer in [min, max]
func (r *Randomizer) Int(minRaw, maxRaw string) (int64, error) {
	minRaw, maxRaw = strings.TrimSpace(minRaw), strings.TrimSpace(maxRaw)
	if err := checkEmpty(minRaw, maxRaw); err != nil {
		return 0, err
	}

	lo, err := parseInt(minRaw)
	if err != nil {
		return 0, InvalidParameter("min", "integer")
	}
	hi, err := parseInt(maxRaw)
	if err != nil {
		return 0, InvalidParameter("max", "integer")
	}
	if lo >= hi {
		return 0, MustBeLessThan("min", "max")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	span := uint64(hi-lo) + 1
	var n uint64
	if span == 0 {
		n = r.rng.Uint64()
	} else {
		n = r.rng.Uint64N(span)
	}
	return lo + int64(n), nil
}

// Float returns a random decimal in [min, max] floored to a precision drawn
// between the fractional lengths of min and max
func (r *Randomizer) Float(minRaw, maxRaw string) (decimal.Decimal, error) {
	minRaw, maxRaw = strings.TrimSpace(minRaw), strings.TrimSpace(maxRaw)
	if err := checkEmpty(minRaw, maxRaw); err != nil {
		return decimal.Zero, err
	}

	lo, err := decimal.NewFromString(minRaw)
	if err != nil {
		return decimal.Zero, InvalidParameter("min", "float")
	}
	hi, err := decimal.NewFromString(maxRaw)
	if err != nil {
		return decimal.Zero, InvalidParameter("max", "float")
	}
	if lo.GreaterThanOrEqual(hi) {
		return decimal.Zero, MustBeLessThan("min", "max")
	}

	loDigits, hiDigits := fractionDigits(lo), fractionDigits(hi)

	r.mu.Lock()
	precision := int32(1)
	if loDigits > 0 || hiDigits > 0 {
		smallest, largest := max(min(loDigits, hiDigits), 1), max(loDigits, hiDigits)
		precision = smallest + r.rng.Int32N(largest-smallest+1)
	}
	fraction := decimal.NewFromFloat(r.rng.Float64())
	r.mu.Unlock()

	n := lo.Add(hi.Sub(lo).Mul(fraction)).RoundFloor(precision)
	if n.LessThan(lo) {
		n = lo
	}
	if n.GreaterThan(hi) {
		n = hi
	}
	return n, nil
}

// checkEmpty reports the first missing bound, min before max
func checkEmpty(minRaw, maxRaw string) error {
	switch {
	case minRaw == "":
		return EmptyParameters("min")
	case maxRaw == "":
		return EmptyParameters("max")
	}
	return nil
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// fractionDigits counts significant digits after the decimal point
func fractionDigits(d decimal.Decimal) int32 {
	s := d.String()
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	return int32(len(s) - i - 1)
}
