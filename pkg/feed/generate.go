package feed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// namespace scopes generated item IDs so that the same seed and position
// always produce the same UUID.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/waterfall/feed"))

var words = strings.Fields(`
	river stone cloud lantern harbor meadow copper signal orchard ember
	glacier canyon willow thunder quiet paper window garden falcon marble
	silver north autumn bridge candle desert echo forest island jasmine
	kettle ladder mirror needle ocean pepper quartz ribbon saddle timber
	umbrella velvet wander yarrow zephyr amber basalt cedar dune fern`)

var tags = []string{"travel", "food", "design", "nature", "city", "music", "code", "film"}

// Generate returns n synthetic items starting at position from. Output is
// a pure function of (seed, position): Generate(s, 10, 5) equals the
// last five items of Generate(s, 0, 15).
func Generate(seed uint64, from, n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = generateOne(seed, from+i)
	}
	return items
}

func generateOne(seed uint64, pos int) Item {
	rng := rand.New(rand.NewPCG(seed, uint64(pos)))
	it := Item{
		ID:    uuid.NewSHA1(namespace, fmt.Appendf(nil, "%d/%d", seed, pos)).String(),
		Title: sentence(rng, 2+rng.IntN(4)),
		Body:  sentence(rng, 4+rng.IntN(40)),
	}
	for range rng.IntN(4) {
		t := tags[rng.IntN(len(tags))]
		if !slices.Contains(it.Tags, t) {
			it.Tags = append(it.Tags, t)
		}
	}
	if rng.IntN(3) == 0 {
		it.Image = fmt.Sprintf("https://picsum.photos/seed/%d-%d/%d/%d", seed, pos, 200+rng.IntN(4)*50, 150+rng.IntN(6)*50)
	}
	return it
}

func sentence(rng *rand.Rand, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = words[rng.IntN(len(words))]
	}
	s := strings.Join(parts, " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

// Generator is a PageSource over the synthetic feed for Seed. Limit caps
// the feed length; 0 means the feed never ends.
type Generator struct {
	Seed  uint64
	Limit int
}

// Page implements PageSource.
func (g Generator) Page(_ context.Context, offset, limit int) ([]Item, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, err
	}
	if g.Limit > 0 {
		limit = min(limit, max(g.Limit-offset, 0))
	}
	return Generate(g.Seed, offset, limit), nil
}
