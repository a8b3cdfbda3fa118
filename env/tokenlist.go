package env

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// TokenList is the solana-labs token-list file format.
type TokenList struct {
	Name      string           `json:"name"`
	TimeStamp string           `json:"timestamp"`
	Tokens    []*TokenListItem `json:"tokens"`
}

type TokenListItem struct {
	ChainId  int    `json:"chainId"`
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
}

const MainnetChainId = 101

func ReadTokenList(file string) (*TokenList, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var tokenList TokenList
	if err := json.Unmarshal(data, &tokenList); err != nil {
		return nil, fmt.Errorf("token list file(%s) is not valid, err: %w", file, err)
	}
	return &tokenList, nil
}

// ImportTokenList adds the mainnet tokens of tokenList to the registry.
// Entries with a bad address or decimals are skipped. It returns the number
// of imported tokens.
func (e *Env) ImportTokenList(tokenList *TokenList) int {
	count := 0
	for _, item := range tokenList.Tokens {
		if item.ChainId != MainnetChainId {
			continue
		}
		key, err := solana.PublicKeyFromBase58(item.Address)
		if err != nil || item.Decimals < 0 || item.Decimals > 255 {
			e.logger.Printf("skip token %s(%s)", item.Symbol, item.Address)
			continue
		}
		e.AddToken(key, &Token{
			Symbol:  item.Symbol,
			Name:    item.Name,
			Decimal: uint8(item.Decimals),
		})
		count++
	}
	return count
}

func (e *Env) SaveTokens() error {
	e.lock.RLock()
	infoJson, err := json.MarshalIndent(e.tokens, "", "    ")
	e.lock.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(e.tokensFile, infoJson, 0644)
}
