package sandbox

import (
	"regexp"
	"strings"

	"github.com/dekarrin/branchling/internal/command"
	"github.com/dekarrin/branchling/internal/events"
	"github.com/dekarrin/branchling/internal/outcome"
)

// RendererHTML marks output that uses <br/> and &nbsp; for layout.
const RendererHTML = "html"

// instantCommands builds the table of commands that are performed right away
// without being routed anywhere. Entries with a Name are listed by
// "show commands".
func (ip *Interpreter) instantCommands() command.Table {
	return command.Table{
		{
			Pattern: regexp.MustCompile(`^ls( |$)`),
			Handler: func([]string) outcome.Outcome {
				return outcome.Result(ip.tr.Str("ls-command", nil))
			},
		},
		{
			Pattern: regexp.MustCompile(`^cd( |$)`),
			Handler: func([]string) outcome.Outcome {
				return outcome.Result(ip.tr.Str("cd-command", nil))
			},
		},
		{
			Name:    "locale",
			Pattern: regexp.MustCompile(`^(locale|locale reset)$`),
			Handler: ip.resetLocale,
			Help:    "change locale from the command line, or reset with `locale reset`",
		},
		{
			Name:    "show",
			Pattern: regexp.MustCompile(`^show$`),
			Handler: ip.show,
			Help:    "Run `show commands|solution|goal` to see the available commands or aspects of the current level",
		},
		{
			Name:    "alias",
			Pattern: regexp.MustCompile(`^alias (\w+)="(.+)"$`),
			Handler: ip.defineAlias,
			Help:    "Run `alias` to map a certain shortcut to an expansion",
		},
		{
			Name:    "unalias",
			Pattern: regexp.MustCompile(`^unalias (\w+)$`),
			Handler: ip.removeAlias,
			Help:    "Opposite of `alias`",
		},
		{
			Pattern: regexp.MustCompile(`^locale (\w+)$`),
			Handler: ip.changeLocale,
		},
		{
			Name:    "flip",
			Pattern: regexp.MustCompile(`^flip$`),
			Handler: ip.flip,
			Help:    "flip the direction of the tree (and commit arrows)",
		},
		{
			Name:    "disableLevelInstructions",
			Pattern: regexp.MustCompile(`^disableLevelInstructions$`),
			Handler: ip.disableLevelInstructions,
			Help:    "Disable the level instructions",
		},
		{
			Pattern: regexp.MustCompile(`^refresh$`),
			Handler: func([]string) outcome.Outcome {
				ip.bus.Trigger(events.RefreshTree, nil)
				return outcome.Result(ip.tr.Str("refresh-tree-command", nil))
			},
		},
		{
			Pattern: regexp.MustCompile(`^rollup (\d+)$`),
			Handler: func(captures []string) outcome.Outcome {
				ip.bus.Trigger(events.RollupCommands, captures[1])
				return outcome.Result(ip.tr.Todo("Commands combined!"))
			},
		},
		{
			Name:    "echo",
			Pattern: regexp.MustCompile(`^echo "(.*?)"$|^echo (.*?)$`),
			Handler: echo,
			Help:    "echo out a string to the terminal output",
		},
		{
			Pattern: regexp.MustCompile(`^show +commands$`),
			Handler: func([]string) outcome.Outcome {
				lines := ip.ShowCommands()
				return outcome.Result(strings.Join(lines, "\n")).WithRenderer(RendererHTML)
			},
		},
	}
}

func (ip *Interpreter) resetLocale([]string) outcome.Outcome {
	def := ip.locale.DefaultLocale()
	if err := ip.locale.SetLocale(def); err != nil {
		return ip.storeFailure(err)
	}

	// looked up after the change so the message is in the new locale
	msg := ip.tr.Str("locale-reset-command", map[string]string{"locale": def})
	return outcome.Result(msg)
}

func (ip *Interpreter) changeLocale(captures []string) outcome.Outcome {
	loc := captures[1]
	if err := ip.locale.SetLocale(loc); err != nil {
		return ip.storeFailure(err)
	}

	msg := ip.tr.Str("locale-command", map[string]string{"locale": loc})
	return outcome.Result(msg)
}

func (ip *Interpreter) show([]string) outcome.Outcome {
	lines := []string{
		ip.tr.Str("show-command", nil),
		"<br/>",
		"show commands",
		"show solution",
		"show goal",
	}
	return outcome.Result(strings.Join(lines, "\n")).WithRenderer(RendererHTML)
}

func (ip *Interpreter) defineAlias(captures []string) outcome.Outcome {
	name, expansion := captures[1], captures[2]
	if err := ip.aliases.Define(name, expansion); err != nil {
		return ip.storeFailure(err)
	}
	return outcome.Result(`Set alias "` + name + `" to "` + expansion + `"`)
}

func (ip *Interpreter) removeAlias(captures []string) outcome.Outcome {
	name := captures[1]
	if err := ip.aliases.Remove(name); err != nil {
		return ip.storeFailure(err)
	}
	return outcome.Result(`Removed alias "` + name + `"`)
}

func (ip *Interpreter) flip([]string) outcome.Outcome {
	if err := ip.global.SetFlipTreeY(!ip.global.FlipTreeY()); err != nil {
		return ip.storeFailure(err)
	}

	// listeners redraw from the store, so it must be updated first
	ip.bus.Trigger(events.RefreshTree, nil)
	return outcome.Result(ip.tr.Str("flip-tree-command", nil))
}

func (ip *Interpreter) disableLevelInstructions([]string) outcome.Outcome {
	if err := ip.global.DisableLevelInstructions(); err != nil {
		return ip.storeFailure(err)
	}
	return outcome.Result(ip.tr.Todo("Level instructions disabled"))
}

// echo prefers the text inside quotes. Empty quotes echo nothing.
func echo(captures []string) outcome.Outcome {
	if captures[1] != "" {
		return outcome.Result(captures[1])
	}
	return outcome.Result(captures[2])
}
