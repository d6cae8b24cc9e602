package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomerName(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"skips boilerplate", "NEOENERGIA ELEKTRO S.A.\nCHAVE DE ACESSO 1234\nJOÃO PEREIRA DA SILVA", "JOÃO PEREIRA DA SILVA", true},
		{"too short lines fall back to first", "ABC\nDEF", "ABC", true},
		{"needs a letter", "123456789012345\nPAGUE COM O PIX AGORA\nX", "123456789012345", true},
		{"empty", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := recognizeCustomerName(NewDocument(tc.text))
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCustomerName_OnlyFirstLinesScanned(t *testing.T) {
	lines := make([]string, 0, nameScanLines+1)
	for range nameScanLines {
		lines = append(lines, "NOTA FISCAL")
	}
	lines = append(lines, "CONDOMINIO EDIFICIO AURORA")

	got, ok := recognizeCustomerName(NewDocument(strings.Join(lines, "\n")))
	assert.True(t, ok)
	assert.Equal(t, "NOTA FISCAL", got)
}

func TestCustomerCode(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"line above anchor", "12.345.678-9\nB3 COMERCIAL", "12.345.678-9", true},
		{"anchor line rejected falls back to blob", "Conta 123\nB3 COMERCIAL\ncodigo 7654321-0", "7654321-0", true},
		{"grouped code anywhere", "cliente 1.234.567-1 ref", "1.234.567-1", true},
		{"none", "sem codigo", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := recognizeCustomerCode(NewDocument(tc.text))
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFeeAmount(t *testing.T) {
	t.Run("same line skips bare quantity", func(t *testing.T) {
		got, ok := recognizeFeeAmount(NewDocument("CUSTO TUSD FIO B 1 0,60"))
		assert.True(t, ok)
		assert.Equal(t, "0.6", got.String())
	})
	t.Run("label split across lines", func(t *testing.T) {
		got, ok := recognizeFeeAmount(NewDocument("CUSTO\nTUSD FIO B kWh 1.262,22"))
		assert.True(t, ok)
		assert.Equal(t, "1262.22", got.String())
	})
	t.Run("absent", func(t *testing.T) {
		_, ok := recognizeFeeAmount(NewDocument("CUSTO TUSD FIO B 1"))
		assert.False(t, ok)
	})
}

func TestConsumption(t *testing.T) {
	got, ok := recognizeConsumption(NewDocument("Energia Ativa Fornecida TE Unico kWh 0,72 350,00"))
	assert.True(t, ok)
	assert.Equal(t, int64(350), got)

	got, ok = recognizeConsumption(NewDocument("ENERGIA ATIVA ÚNICO 1.204"))
	assert.True(t, ok)
	assert.Equal(t, int64(1204), got)

	_, ok = recognizeConsumption(NewDocument("ENERGIA ATIVA PONTA 300"))
	assert.False(t, ok)
}

func TestTotalPayable(t *testing.T) {
	got, ok := recognizeTotalPayable(NewDocument("Total a Pagar R$ 1.002,30"))
	assert.True(t, ok)
	assert.Equal(t, "1002.3", got.String())

	_, ok = recognizeTotalPayable(NewDocument("TOTAL A PAGAR"))
	assert.False(t, ok)
}

func TestFoldAccents(t *testing.T) {
	assert.Equal(t, "UNICO ELETRICA", foldAccents("ÚNICO ELÉTRICA"))
}
