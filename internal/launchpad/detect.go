// Package launchpad identifies the platform that launched a token and fetches
// its creator metadata from that platform.
package launchpad

import (
	"strings"

	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/upstream"
)

// Detection methods.
const (
	MethodMintSuffix  = "mint-suffix"
	MethodPairsDex    = "pairs-dex-id"
	MethodMarketsPair = "markets-exchange"
	MethodNone        = "none"
)

// Detection is the detected launch platform.
type Detection struct {
	Platform string
	Method   string
}

var dexPlatforms = []struct {
	fragment string
	platform string
}{
	{"pumpfun", domain.PlatformPumpFun},
	{"pump.fun", domain.PlatformPumpFun},
	{"pumpswap", domain.PlatformPumpFun},
	{"launchlab", domain.PlatformLetsBonk},
	{"letsbonk", domain.PlatformLetsBonk},
	{"moonshot", domain.PlatformMoonshot},
	{"moonit", domain.PlatformMoonshot},
}

// Detect guesses the launch platform from the mint vanity suffix, then from
// the DEX ids of the pairs API, then from markets API exchange names.
func Detect(mint string, pairs []upstream.DexPair, marketPairs []upstream.MarketPair) Detection {
	switch lower := strings.ToLower(mint); {
	case strings.HasSuffix(lower, "pump"):
		return Detection{Platform: domain.PlatformPumpFun, Method: MethodMintSuffix}
	case strings.HasSuffix(lower, "bonk"):
		return Detection{Platform: domain.PlatformLetsBonk, Method: MethodMintSuffix}
	}

	for _, p := range pairs {
		if platform, ok := platformFor(p.DexID); ok {
			return Detection{Platform: platform, Method: MethodPairsDex}
		}
	}
	for _, p := range marketPairs {
		if platform, ok := platformFor(p.ExchangeName); ok {
			return Detection{Platform: platform, Method: MethodMarketsPair}
		}
	}
	return Detection{Platform: domain.PlatformUnknown, Method: MethodNone}
}

func platformFor(name string) (string, bool) {
	key := strings.ReplaceAll(strings.ToLower(name), " ", "")
	if key == "" {
		return "", false
	}
	for _, d := range dexPlatforms {
		if strings.Contains(key, d.fragment) {
			return d.platform, true
		}
	}
	return "", false
}
