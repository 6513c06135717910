package config

import (
	"os"
	"path/filepath"
	"testing"

	"ledger-service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadSeedDefaults(t *testing.T) {
	accounts, rates, err := LoadSeed("")
	require.NoError(t, err)
	assert.Len(t, accounts, len(domain.DefaultAccounts()))
	assert.Len(t, rates, len(domain.DefaultFXRates()))
}

func TestLoadSeedFile(t *testing.T) {
	path := writeSeed(t, `{
		"accounts": [
			{"name": "Carol", "bic": "BANKGB22", "number": "GB001", "currency": "GBP", "balance": "500.00"},
			{"name": "hold GBP", "bic": "BANKSYS1", "number": "HOLD-GBP", "currency": "GBP", "kind": "hold", "balance": "100000.00"}
		],
		"fx_rates": [
			{"base": "GBP", "quote": "EUR", "rate": "1.15"}
		]
	}`)

	accounts, rates, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, "Carol", accounts[0].Name)
	assert.Equal(t, domain.KindCustomer, accounts[0].Kind)
	assert.True(t, accounts[0].OpeningBalance.Available.Equal(decimal.RequireFromString("500.00")))
	assert.Equal(t, domain.KindHold, accounts[1].Kind)

	require.Len(t, rates, 1)
	assert.Equal(t, "GBP", rates[0].BaseCurrency)
}

func TestLoadSeedErrors(t *testing.T) {
	_, _, err := LoadSeed(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, _, err = LoadSeed(writeSeed(t, "{not json"))
	assert.Error(t, err)

	_, _, err = LoadSeed(writeSeed(t, `{"accounts": [{"name": "x", "bic": "B", "number": "1", "currency": "EUR", "balance": "lots"}]}`))
	assert.Error(t, err)
}
