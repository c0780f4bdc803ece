package store

import (
	"fmt"
	"sort"

	"github.com/dekarrin/rezi"
)

// State is the full set of values behind the Locale, GlobalState, and Aliases
// accessors for one session.
type State struct {
	Locale                    string
	FlipTreeY                 bool
	LevelInstructionsDisabled bool
	Aliases                   map[string]string
}

// NewState returns a State with the given locale and nothing else set.
func NewState(locale string) State {
	return State{
		Locale:  locale,
		Aliases: map[string]string{},
	}
}

// Copy returns a deep copy of s.
func (s State) Copy() State {
	cp := s
	cp.Aliases = make(map[string]string, len(s.Aliases))
	for k, v := range s.Aliases {
		cp.Aliases[k] = v
	}
	return cp
}

// Equal returns whether s and o hold the same values. A nil alias map equals
// an empty one.
func (s State) Equal(o State) bool {
	if s.Locale != o.Locale || s.FlipTreeY != o.FlipTreeY || s.LevelInstructionsDisabled != o.LevelInstructionsDisabled {
		return false
	}
	if len(s.Aliases) != len(o.Aliases) {
		return false
	}
	for k, v := range s.Aliases {
		if ov, ok := o.Aliases[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// MarshalBinary converts s into REZI-encoded bytes. Aliases are written in
// sorted order so that equal States always encode identically.
func (s State) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, rezi.EncString(s.Locale)...)
	data = append(data, rezi.EncBool(s.FlipTreeY)...)
	data = append(data, rezi.EncBool(s.LevelInstructionsDisabled)...)

	names := make([]string, 0, len(s.Aliases))
	for k := range s.Aliases {
		names = append(names, k)
	}
	sort.Strings(names)

	data = append(data, rezi.EncInt(len(names))...)
	for _, name := range names {
		data = append(data, rezi.EncString(name)...)
		data = append(data, rezi.EncString(s.Aliases[name])...)
	}

	return data, nil
}

// UnmarshalBinary sets s to the State encoded in data.
func (s *State) UnmarshalBinary(data []byte) error {
	var err error
	var n int

	s.Locale, n, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("locale: %w", err)
	}
	data = data[n:]

	s.FlipTreeY, n, err = rezi.DecBool(data)
	if err != nil {
		return fmt.Errorf("flipTreeY: %w", err)
	}
	data = data[n:]

	s.LevelInstructionsDisabled, n, err = rezi.DecBool(data)
	if err != nil {
		return fmt.Errorf("levelInstructionsDisabled: %w", err)
	}
	data = data[n:]

	count, n, err := rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("alias count: %w", err)
	}
	data = data[n:]
	if count < 0 {
		return fmt.Errorf("alias count < 0")
	}

	s.Aliases = make(map[string]string, count)
	for i := 0; i < count; i++ {
		var name, expansion string

		name, n, err = rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("alias %d: name: %w", i, err)
		}
		data = data[n:]

		expansion, n, err = rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("alias %q: expansion: %w", name, err)
		}
		data = data[n:]

		s.Aliases[name] = expansion
	}

	return nil
}
