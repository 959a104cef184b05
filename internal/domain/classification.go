package domain

// Confidence describes how an LP classification was reached.
type Confidence string

const (
	ConfidenceVerified  Confidence = "verified"
	ConfidenceHeuristic Confidence = "heuristic"
)

// Reason codes attached to LP classifications.
const (
	ReasonVerifiedPrimaryLP   = "verified-primary-lp"
	ReasonPoolRegistry        = "pool-registry"
	ReasonDEXProgram          = "dex-program"
	ReasonBurned              = "burned"
	ReasonLargeInactiveHolder = "large-inactive-holder"
	ReasonHolder              = "holder"
)

// LPClassification is the liquidity-pool decision for one holder.
type LPClassification struct {
	IsLP          bool       `json:"isLP"`
	Confidence    Confidence `json:"confidence,omitempty"`
	ReasonCode    string     `json:"reasonCode"`
	PlatformLabel string     `json:"platformLabel,omitempty"`
	OriginSource  PoolOrigin `json:"originSource,omitempty"`
}
