package censor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanMasksProfaneWords(t *testing.T) {
	c := Default()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "clean text untouched", in: "Собираем на подарок Маше", want: "Собираем на подарок Маше"},
		{name: "single word", in: "ну ты и мудак", want: "ну ты и ***"},
		{name: "case insensitive", in: "СУКА!", want: "***!"},
		{name: "inflected form", in: "пидорасы кругом", want: "*** кругом"},
		{name: "several words", in: "сука, блядь.", want: "***, ***."},
		{name: "inner substring of clean word kept", in: "небо и хлеб", want: "небо и хлеб"},
		{name: "stem after na prefix", in: "иди нахуй", want: "иди ***"},
		{name: "root after za prefix", in: "заебал уже", want: "*** уже"},
		{name: "stem after ras prefix", in: "распиздяй", want: "***"},
		{name: "root after compound prefix", in: "долбоеб", want: "***"},
		{name: "stem after o prefix", in: "ты охуел?", want: "ты ***?"},
		{name: "root after hard sign prefix", in: "отъебись", want: "***"},
		{name: "root at word start", in: "Ёб твою", want: "*** твою"},
		{name: "no separator between words", in: "хуй,сука", want: "***,***"},
		{name: "ordinary words with inner roots kept", in: "себе и тебе барсука учеба мебель", want: "себе и тебе барсука учеба мебель"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, c.Clean(tt.in))
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	c := Default()
	inputs := []string{
		"мудак и сучка",
		"*** уже замаскировано",
		"обычный текст без мата",
		"ХУЙ",
		"заебал нахуй",
	}
	for _, in := range inputs {
		once := c.Clean(in)
		require.Equal(t, once, c.Clean(once), "input %q", in)
	}
}

func TestCleanPtr(t *testing.T) {
	c := Default()
	require.Nil(t, c.CleanPtr(nil))

	raw := "чмо"
	got := c.CleanPtr(&raw)
	require.Equal(t, Mask, *got)
	require.Equal(t, "чмо", raw)
}

func TestNewWithEmptyLexicon(t *testing.T) {
	c, err := New(Lexicon{Stems: []string{" ", ""}, Prefixes: []string{"на"}})
	require.NoError(t, err)
	require.Equal(t, "anything", c.Clean("anything"))
}

func TestNewRejectsInvalidStem(t *testing.T) {
	_, err := New(Lexicon{Stems: []string{"(unclosed"}})
	require.Error(t, err)

	_, err = New(Lexicon{Roots: []string{"ok"}, Prefixes: []string{"[bad"}})
	require.Error(t, err)
}

func TestRootsOnlyMatchAtWordStartOrAfterPrefix(t *testing.T) {
	c := MustNew(Lexicon{Roots: []string{"bad"}, Prefixes: []string{"un"}})
	require.Equal(t, "***", c.Clean("bad"))
	require.Equal(t, "so *** here", c.Clean("so unbadly here"))
	require.Equal(t, "sinbad", c.Clean("sinbad"))
}
