package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractNumber(t *testing.T) {
	t.Run("extracts the first digit run", func(t *testing.T) {
		value, ok := ExtractNumber("Tenho 30 anos")
		assert.True(t, ok)
		assert.Equal(t, 30, value)
	})

	t.Run("returns none when there are no digits", func(t *testing.T) {
		_, ok := ExtractNumber("sem números")
		assert.False(t, ok)
	})

	t.Run("first run wins over decimals", func(t *testing.T) {
		value, ok := ExtractNumber("altura 1.75m")
		assert.True(t, ok)
		assert.Equal(t, 1, value)
	})

	t.Run("ignores sign", func(t *testing.T) {
		value, ok := ExtractNumber("uns -20 graus")
		assert.True(t, ok)
		assert.Equal(t, 20, value)
	})
}

func TestExtractSex(t *testing.T) {
	t.Run("matches feminino synonyms", func(t *testing.T) {
		sex, ok := ExtractSex("Sou mulher")
		assert.True(t, ok)
		assert.Equal(t, "feminino", sex)
	})

	t.Run("matches masculino synonyms", func(t *testing.T) {
		for _, input := range []string{"masculino", "sou homem", "Masc"} {
			sex, ok := ExtractSex(input)
			assert.True(t, ok, input)
			assert.Equal(t, "masculino", sex, input)
		}
	})

	t.Run("matches outro synonyms", func(t *testing.T) {
		for _, input := range []string{"outro", "não binário", "nb"} {
			sex, ok := ExtractSex(input)
			assert.True(t, ok, input)
			assert.Equal(t, "outro", sex, input)
		}
	})

	t.Run("masculino is checked first", func(t *testing.T) {
		sex, ok := ExtractSex("homem ou mulher")
		assert.True(t, ok)
		assert.Equal(t, "masculino", sex)
	})

	t.Run("returns none for unknown text", func(t *testing.T) {
		_, ok := ExtractSex("texto inválido")
		assert.False(t, ok)
	})
}

func TestExtractActivityLevel(t *testing.T) {
	cases := map[string]string{
		"sou sedentário":             "sedentário",
		"faço pouco exercício":       "sedentário",
		"exercício leve":             "leve",
		"treino 3-5 vezes na semana": "moderado",
		"moderado":                   "moderado",
		"treino pesado todo dia":     "intenso",
		"intenso":                    "intenso",
	}

	for input, expected := range cases {
		level, ok := ExtractActivityLevel(input)
		assert.True(t, ok, input)
		assert.Equal(t, expected, level, input)
	}

	_, ok := ExtractActivityLevel("qualquer coisa")
	assert.False(t, ok)
}

func TestExtractList(t *testing.T) {
	t.Run("none tokens yield an empty list", func(t *testing.T) {
		for _, input := range []string{"nenhuma", "nenhum", "não", "não tenho", "  Nenhuma  "} {
			assert.Equal(t, []string{}, ExtractList(input), input)
		}
	})

	t.Run("splits on commas", func(t *testing.T) {
		assert.Equal(t, []string{"lactose", "glúten"}, ExtractList("lactose, glúten"))
	})

	t.Run("splits on conjunctions", func(t *testing.T) {
		assert.Equal(t, []string{"peixe", "carne vermelha"}, ExtractList("peixe e carne vermelha"))
	})

	t.Run("splits on semicolons and mixed separators", func(t *testing.T) {
		assert.Equal(t, []string{"ovo", "soja", "amendoim"}, ExtractList("ovo; soja ou amendoim"))
	})

	t.Run("drops empty pieces and bare conjunctions", func(t *testing.T) {
		assert.Equal(t, []string{"lactose"}, ExtractList("lactose, , e"))
	})

	t.Run("keeps original case and order", func(t *testing.T) {
		assert.Equal(t, []string{"Glúten", "Lactose"}, ExtractList("Glúten, Lactose"))
	})
}
