package launchpad

import (
	"strings"

	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/upstream"
)

// Order types reported by the pairs API.
const (
	OrderTokenProfile      = "tokenProfile"
	OrderCommunityTakeover = "communityTakeover"
	OrderTokenAd           = "tokenAd"
	OrderTrendingBarAd     = "trendingBarAd"
)

// Socials collects project links from pair profiles. Fields already set in
// fallback are kept unless a pair supplies them.
func Socials(pairs []upstream.DexPair, fallback domain.Socials) domain.Socials {
	s := domain.Socials{}
	for _, p := range pairs {
		if p.Info == nil {
			continue
		}
		for _, w := range p.Info.Websites {
			if s.Website == "" && w.URL != "" {
				s.Website = w.URL
			}
		}
		for _, l := range p.Info.Socials {
			switch strings.ToLower(l.Type) {
			case "twitter", "x":
				setOnce(&s.Twitter, l.URL)
			case "telegram":
				setOnce(&s.Telegram, l.URL)
			case "discord":
				setOnce(&s.Discord, l.URL)
			}
		}
	}
	setOnce(&s.Website, fallback.Website)
	setOnce(&s.Twitter, fallback.Twitter)
	setOnce(&s.Telegram, fallback.Telegram)
	setOnce(&s.Discord, fallback.Discord)
	return s
}

func setOnce(field *string, v string) {
	if *field == "" {
		*field = v
	}
}

// Status derives promotional flags from approved orders and pair boosts.
func Status(orders []upstream.DexOrder, pairs []upstream.DexPair) domain.DexStatus {
	var st domain.DexStatus
	for _, o := range orders {
		if !o.Approved() {
			continue
		}
		switch o.Type {
		case OrderTokenProfile:
			st.Paid = true
		case OrderCommunityTakeover:
			st.CTO = true
		case OrderTokenAd, OrderTrendingBarAd:
			st.Ad = true
		}
	}
	for _, p := range pairs {
		if p.Boosted() {
			st.Boosted = true
			break
		}
	}
	return st
}
