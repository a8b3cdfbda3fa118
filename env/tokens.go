package env

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

type Token struct {
	Symbol  string
	Name    string
	Decimal uint8
}

// AmountUi scales a base unit amount by the token decimals. The division is
// exact, no float is involved.
func (token *Token) AmountUi(amount *big.Int) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(token.Decimal))
}

func (token *Token) AmountUiString(amount *big.Int) string {
	return token.AmountUi(amount).StringFixed(int32(token.Decimal))
}

func (e *Env) loadTokens() error {
	infoJson, err := os.ReadFile(e.tokensFile)
	if err != nil {
		return err
	}
	tokens := make(map[solana.PublicKey]*Token)
	err = json.Unmarshal(infoJson, &tokens)
	if err != nil {
		return fmt.Errorf("tokens file(%s) is not valid, err: %w", e.tokensFile, err)
	}
	e.lock.Lock()
	defer e.lock.Unlock()
	e.tokens = tokens
	return nil
}

func (e *Env) Token(key solana.PublicKey) *Token {
	e.lock.RLock()
	defer e.lock.RUnlock()
	if item, ok := e.tokens[key]; ok {
		return item
	}
	return nil
}

// TokenOrDefault falls back to a token named after the mint address with the
// given decimals.
func (e *Env) TokenOrDefault(key solana.PublicKey, decimals uint8) *Token {
	if token := e.Token(key); token != nil {
		return token
	}
	return &Token{
		Symbol:  key.String(),
		Name:    key.String(),
		Decimal: decimals,
	}
}

func (e *Env) AddToken(key solana.PublicKey, token *Token) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.tokens[key] = token
}
