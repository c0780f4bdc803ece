package helperbar

import (
	"strings"
	"testing"

	"github.com/dekarrin/branchling/internal/events"
	"github.com/dekarrin/branchling/internal/intl"
	"github.com/stretchr/testify/assert"
)

type fixedLocale string

func (fl fixedLocale) DefaultLocale() string      { return intl.Fallback }
func (fl fixedLocale) Locale() string             { return string(fl) }
func (fl fixedLocale) SetLocale(loc string) error { return nil }

func Test_IntlBar_Choose(t *testing.T) {
	testCases := []struct {
		name          string
		choice        int
		expectCommand []any
		expectExits   int
		expectErr     bool
	}{
		{name: "english", choice: 1, expectCommand: []any{"locale en_US; levels"}, expectExits: 1},
		{name: "german", choice: 2, expectCommand: []any{"locale de_DE; levels"}, expectExits: 1},
		{name: "russian", choice: 3, expectCommand: []any{"locale ru_RU; levels"}, expectExits: 1},
		{name: "exit", choice: 4, expectExits: 1},
		{name: "too low", choice: 0, expectErr: true},
		{name: "too high", choice: 5, expectErr: true},
	}

	cat, err := intl.Load()
	if !assert.NoError(t, err) {
		return
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			bus := events.New(nil)

			var submitted []any
			bus.On(events.CommandSubmitted, events.Notify(func(payload any) {
				submitted = append(submitted, payload)
			}))
			exits := 0
			bar := IntlBar(bus, cat.Translator(nil, nil), func() { exits++ })

			err := bar.Choose(tc.choice)

			if tc.expectErr {
				assert.Error(err)
				assert.Zero(exits)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.expectCommand, submitted)
			assert.Equal(tc.expectExits, exits)
		})
	}
}

func Test_Bar_FireCommand_nilExit(t *testing.T) {
	assert := assert.New(t)
	bus := events.New(nil)
	var submitted []any
	bus.On(events.CommandSubmitted, events.Notify(func(payload any) {
		submitted = append(submitted, payload)
	}))
	cat, _ := intl.Load()
	bar := IntlBar(bus, cat.Translator(nil, nil), nil)

	assert.NotPanics(func() { bar.FireCommand("levels") })
	assert.Equal([]any{"levels"}, submitted)
}

func Test_Bar_Render(t *testing.T) {
	testCases := []struct {
		name         string
		locale       string
		expectPrompt string
		expectItems  []string
	}{
		{
			name:         "english",
			locale:       "en_US",
			expectPrompt: "Pick a language:",
			expectItems:  []string{"1  English", "2  Deutsch", "3  Русский", "4  Close"},
		},
		{
			name:         "german",
			locale:       "de_DE",
			expectPrompt: "Wähle eine Sprache:",
			expectItems:  []string{"1  English", "2  Deutsch", "3  Русский"},
		},
	}

	cat, err := intl.Load()
	if !assert.NoError(t, err) {
		return
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			bar := IntlBar(events.New(nil), cat.Translator(fixedLocale(tc.locale), nil), nil)

			actual := bar.Render(80)

			lines := strings.Split(actual, "\n")
			if !assert.Len(lines, 1+len(bar.Items)) {
				return
			}
			assert.Equal(tc.expectPrompt, lines[0])
			for i, item := range tc.expectItems {
				assert.Equal(item, strings.TrimRight(lines[i+1], " "))
			}
			for _, line := range lines {
				assert.LessOrEqual(len([]rune(line)), 80)
			}
		})
	}
}
