// Package level holds the command tables of the level and level-builder
// views. The views themselves handle the commands; these tables only let the
// interpreter recognize and route them.
package level

import (
	"fmt"

	"github.com/dekarrin/branchling/internal/command"
	"github.com/dekarrin/branchling/internal/events"
)

// Patterns are the commands understood while playing a level. They are routed
// on events.ProcessLevelCommand.
var Patterns = command.NamedPatterns{
	command.Named("help level", `^help level$`),
	command.Named("start dialog", `^start dialog$`),
	command.Named("show goal", `^(show goal|goal|help goal)$`),
	command.Named("hide goal", `^hide goal$`),
	command.Named("show solution", `^show solution($|\s)`),
	command.Named("objective", `^(objective|assignment)$`),
	command.Named("mobileAlert", `^mobile alert($|\s)`),
}

// BuilderPatterns are the commands understood while building a level. They are
// routed on events.ProcessLevelBuilderCommand.
var BuilderPatterns = command.NamedPatterns{
	command.Named("define goal", `^define goal$`),
	command.Named("help builder", `^help builder$`),
	command.Named("define start", `^define start$`),
	command.Named("edit dialog", `^edit dialog$`),
	command.Named("show start", `^show start$`),
	command.Named("hide start", `^hide start$`),
	command.Named("define hint", `^define hint$`),
	command.Named("define name", `^define name$`),
	command.Named("finish", `^finish$`),
}

// Parser returns a parser that routes level commands.
func Parser() command.Parser {
	return command.GenParser(Patterns, events.ProcessLevelCommand)
}

// BuilderParser returns a parser that routes level-builder commands.
func BuilderParser() command.Parser {
	return command.GenParser(BuilderPatterns, events.ProcessLevelBuilderCommand)
}

func init() {
	if err := command.ValidateNamed(Patterns); err != nil {
		panic(fmt.Sprintf("level patterns: %v", err))
	}
	if err := command.ValidateNamed(BuilderPatterns); err != nil {
		panic(fmt.Sprintf("level builder patterns: %v", err))
	}
}
