package vcs

// topLevelCommands is the file as it is laid out in TOML.
type topLevelCommands struct {
	Subsystems []marshaledSubsystem `toml:"subsystem"`
}

type marshaledSubsystem struct {
	Name    string            `toml:"name"`
	Methods []marshaledMethod `toml:"method"`
}

type marshaledMethod struct {
	Name     string   `toml:"name"`
	Regex    string   `toml:"regex"`
	Shortcut string   `toml:"shortcut"`
	Help     string   `toml:"help"`
	Options  []string `toml:"options"`
}
