// internal/rules/color.go
package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/KaIKuxy/eagle-library-player/internal/types"
)

/*
 * Color similarity matching and the hex literal cache.
 *
 * Color rules name a target as "#rrggbb". Parsing is cheap, but the same
 * handful of swatches is compiled into every folder of a library, so the
 * engine memoizes hex -> RGB in a bounded ristretto cache. The cache is owned
 * by one Engine, safe for concurrent compiles, and bounded by
 * engine.color_cache_size entries. Ristretto admission is probabilistic; a
 * miss only costs a re-parse.
 *
 * Matching (similar = threshold 20, accuracy = threshold 10):
 *   1. Dominant palette ratio below 0.33: no match
 *   2. Any channel of the dominant color more than 96 from the target: no match
 *   3. Exact RGB equality with palette 0 or 1: match
 *   4. Palette 0 or 1 with ratio above 0.33 and
 *      dE2000 < threshold && dE76 < threshold + 50: match
 *
 * grayscale ignores the target: every palette entry with ratio >= 0.02 must
 * have all channel-pair differences below 8. No palette: no match.
 */

const (
	dominantRatio     = 0.33
	channelTolerance  = 96
	grayscaleMinRatio = 0.02
	grayscaleSpread   = 8

	similarThreshold  = 20.0
	accuracyThreshold = 10.0
	cie76Slack        = 50.0
)

// colorCache memoizes parsed hex literals.
type colorCache struct {
	cache *ristretto.Cache[string, RGB]
}

func newColorCache(size int64) (*colorCache, error) {
	if size <= 0 {
		size = types.DefaultColorCacheSize
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, RGB]{
		NumCounters:        size * 10,
		MaxCost:            size,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create color cache: %w", err)
	}
	return &colorCache{cache: cache}, nil
}

// resolve returns the RGB value of a hex literal, parsing on miss.
func (c *colorCache) resolve(hex string) (RGB, bool) {
	key := strings.ToLower(strings.TrimSpace(hex))
	if rgb, ok := c.cache.Get(key); ok {
		return rgb, true
	}
	rgb, ok := parseHex(key)
	if !ok {
		return RGB{}, false
	}
	c.cache.Set(key, rgb, 1)
	return rgb, true
}

func (c *colorCache) close() {
	c.cache.Close()
}

// parseHex parses "#rrggbb" (leading '#' optional).
func parseHex(hex string) (RGB, bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return RGB{}, false
	}
	var rgb RGB
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return RGB{}, false
		}
		rgb[i] = int(v)
	}
	return rgb, true
}

// matchColor applies a color method to an item's palettes.
func matchColor(palettes []types.Palette, m Method, v *RuleValue) bool {
	switch m {
	case MethodGrayscale:
		return isGrayscale(palettes)
	case MethodSimilar:
		return isSimilar(palettes, v.Color, similarThreshold)
	case MethodAccuracy:
		return isSimilar(palettes, v.Color, accuracyThreshold)
	default:
		return false
	}
}

func isGrayscale(palettes []types.Palette) bool {
	if len(palettes) == 0 {
		return false
	}
	for _, p := range palettes {
		if p.Ratio < grayscaleMinRatio {
			continue
		}
		r, g, b := p.Color[0], p.Color[1], p.Color[2]
		if absInt(r-g) >= grayscaleSpread || absInt(r-b) >= grayscaleSpread || absInt(g-b) >= grayscaleSpread {
			return false
		}
	}
	return true
}

func isSimilar(palettes []types.Palette, target RGB, threshold float64) bool {
	if len(palettes) == 0 {
		return false
	}
	dominant := palettes[0]
	if dominant.Ratio < dominantRatio {
		return false
	}
	for i := 0; i < 3; i++ {
		if absInt(dominant.Color[i]-target[i]) > channelTolerance {
			return false
		}
	}

	candidates := palettes
	if len(candidates) > 2 {
		candidates = candidates[:2]
	}
	for _, p := range candidates {
		if RGB(p.Color) == target {
			return true
		}
	}

	targetLab := toLab(target)
	for _, p := range candidates {
		if p.Ratio <= dominantRatio {
			continue
		}
		lab := toLab(RGB(p.Color))
		if deltaE2000(targetLab, lab) < threshold && deltaE76(targetLab, lab) < threshold+cie76Slack {
			return true
		}
	}
	return false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
