package launchpad

import (
	"context"

	"github.com/rs/zerolog"

	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/upstream"
)

// PumpFunSource returns pump.fun coin metadata.
type PumpFunSource interface {
	Coin(ctx context.Context, mint string) (*upstream.PumpFunCoin, error)
}

// LaunchLabSource returns Raydium LaunchLab mint metadata.
type LaunchLabSource interface {
	Mint(ctx context.Context, mint string) (*upstream.LaunchLabMint, error)
}

// Result is the creator metadata of a mint.
type Result struct {
	Info    *domain.CreatorInfo
	Socials domain.Socials
}

// Resolver fetches creator metadata from the API of the detected platform.
type Resolver struct {
	pumpFun   PumpFunSource
	launchLab LaunchLabSource
	log       zerolog.Logger
}

// NewResolver creates a resolver. Either source may be nil.
func NewResolver(pumpFun PumpFunSource, launchLab LaunchLabSource, log zerolog.Logger) *Resolver {
	return &Resolver{pumpFun: pumpFun, launchLab: launchLab, log: log}
}

// Resolve never fails; API errors are carried in Info.Error.
func (r *Resolver) Resolve(ctx context.Context, mint string, det Detection) Result {
	info := &domain.CreatorInfo{Platform: det.Platform, DetectionMethod: det.Method}
	var socials domain.Socials

	switch det.Platform {
	case domain.PlatformPumpFun:
		if r.pumpFun == nil {
			break
		}
		coin, err := r.pumpFun.Coin(ctx, mint)
		if err != nil {
			r.degrade(info, mint, err)
			break
		}
		info.CreatorWallet = coin.Creator
		info.Name = coin.Name
		info.Symbol = coin.Symbol
		info.CreatedAt = coin.CreatedTimestamp
		info.Graduated = coin.Complete
		info.MarketCapUSD = coin.USDMarketCap
		socials = domain.Socials{Website: coin.Website, Twitter: coin.Twitter, Telegram: coin.Telegram}

	case domain.PlatformLetsBonk:
		if r.launchLab == nil {
			break
		}
		m, err := r.launchLab.Mint(ctx, mint)
		if err != nil {
			r.degrade(info, mint, err)
			break
		}
		info.CreatorWallet = m.Creator
		info.Name = m.Name
		info.Symbol = m.Symbol
		info.CreatedAt = m.CreateAt
		info.Graduated = m.Graduated()
		info.MarketCapUSD = m.MarketCap
		socials = domain.Socials{Website: m.Website, Twitter: m.Twitter, Telegram: m.Telegram}
	}

	return Result{Info: info, Socials: socials}
}

func (r *Resolver) degrade(info *domain.CreatorInfo, mint string, err error) {
	if upstream.IsNotFound(err) {
		info.Error = "creator metadata not found"
	} else {
		info.Error = err.Error()
	}
	r.log.Warn().Err(err).Str("mint", mint).Str("platform", info.Platform).Msg("creator metadata unavailable")
}
