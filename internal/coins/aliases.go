// Package coins maps user-typed coin names and symbols to the canonical
// identifiers the market-data source recognizes.
package coins

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultAliases covers the common symbols and spellings. Unmapped input
// passes through lower-cased unchanged; an identifier the data source does
// not recognize surfaces later as a not-found condition, never here.
var defaultAliases = map[string]string{
	"btc":       "bitcoin",
	"bitcoin":   "bitcoin",
	"eth":       "ethereum",
	"ethereum":  "ethereum",
	"doge":      "dogecoin",
	"dogecoin":  "dogecoin",
	"sol":       "solana",
	"solana":    "solana",
	"ada":       "cardano",
	"cardano":   "cardano",
	"xrp":       "ripple",
	"ripple":    "ripple",
	"dot":       "polkadot",
	"polkadot":  "polkadot",
	"ltc":       "litecoin",
	"litecoin":  "litecoin",
	"bnb":       "binancecoin",
	"matic":     "matic-network",
	"polygon":   "matic-network",
	"shib":      "shiba-inu",
	"shiba":     "shiba-inu",
	"link":      "chainlink",
	"chainlink": "chainlink",
	"avax":      "avalanche-2",
	"avalanche": "avalanche-2",
	"uni":       "uniswap",
	"uniswap":   "uniswap",
	"atom":      "cosmos",
	"cosmos":    "cosmos",
	"xlm":       "stellar",
	"stellar":   "stellar",
	"xmr":       "monero",
	"monero":    "monero",
	"trx":       "tron",
	"tron":      "tron",
	"usdt":      "tether",
	"tether":    "tether",
	"usdc":      "usd-coin",
}

// Resolver resolves user-typed coin tokens to canonical identifiers
type Resolver struct {
	aliases map[string]string
}

// NewResolver creates a Resolver with the built-in alias table
func NewResolver() *Resolver {
	aliases := make(map[string]string, len(defaultAliases))
	for alias, id := range defaultAliases {
		aliases[alias] = id
	}
	return &Resolver{aliases: aliases}
}

// NewResolverFromFile creates a Resolver with the built-in table extended by a
// YAML file of alias -> canonical id entries. File entries win on conflict.
func NewResolverFromFile(path string) (*Resolver, error) {
	r := NewResolver()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias file: %w", err)
	}

	extra := map[string]string{}
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("failed to parse alias file: %w", err)
	}

	for alias, id := range extra {
		r.aliases[strings.ToLower(alias)] = strings.ToLower(id)
	}
	return r, nil
}

// Resolve maps a user-typed name to a canonical coin identifier. Resolution
// always succeeds; unknown names pass through lower-cased.
func (r *Resolver) Resolve(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if id, ok := r.aliases[lowered]; ok {
		return id
	}
	return lowered
}
