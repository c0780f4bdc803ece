// Package helperbar provides the bars of quick actions shown under the
// console, such as the language picker.
package helperbar

import (
	"fmt"
	"strconv"

	"github.com/dekarrin/branchling/internal/events"
	"github.com/dekarrin/branchling/internal/intl"
	"github.com/dekarrin/rosed"
)

// Item is a single action in a Bar.
type Item struct {
	// Text is the label shown for the item.
	Text string

	// OnClick is called when the item is chosen.
	OnClick func()
}

// Bar is a row of items the user can pick from.
type Bar struct {
	// Prompt is shown above the items.
	Prompt string

	Items []Item

	// OnExit is called once the bar has done its job and should be hidden.
	OnExit func()

	bus *events.Bus
}

// IntlBar returns the language picker, with one item per locale in the
// translator's catalog. Choosing a language submits a command
// that switches to it and lists the levels; the last item just closes the
// bar. onExit may be nil.
func IntlBar(bus *events.Bus, tr *intl.Translator, onExit func()) *Bar {
	b := &Bar{
		Prompt: tr.Str("helper-bar-prompt", nil),
		OnExit: onExit,
		bus:    bus,
	}

	cat := tr.Catalog()
	for _, loc := range cat.Locales() {
		cmd := "locale " + loc + "; levels"
		b.Items = append(b.Items, Item{
			Text:    cat.DisplayName(loc),
			OnClick: func() { b.FireCommand(cmd) },
		})
	}
	b.Items = append(b.Items, Item{
		Text:    tr.Str("helper-bar-exit", nil),
		OnClick: b.exit,
	})

	return b
}

// FireCommand submits cmd as though the user had typed it, then closes the
// bar.
func (b *Bar) FireCommand(cmd string) {
	b.bus.Trigger(events.CommandSubmitted, cmd)
	b.exit()
}

// Choose activates the n-th item, counting from 1.
func (b *Bar) Choose(n int) error {
	if n < 1 || n > len(b.Items) {
		return fmt.Errorf("choice must be between 1 and %d", len(b.Items))
	}
	b.Items[n-1].OnClick()
	return nil
}

// Render gives the bar as the prompt followed by one numbered line per item.
// The prompt is wrapped to width; the item table is kept as narrow as its
// contents allow.
func (b *Bar) Render(width int) string {
	var data [][]string
	for i, it := range b.Items {
		data = append(data, []string{strconv.Itoa(i + 1), it.Text})
	}

	prompt := rosed.Edit(b.Prompt).Wrap(width).String()
	items := rosed.Edit("").InsertTableOpts(0, data, 0, rosed.Options{NoTrailingLineSeparators: true}).String()
	return prompt + "\n" + items
}

func (b *Bar) exit() {
	if b.OnExit != nil {
		b.OnExit()
	}
}
