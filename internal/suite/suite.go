/*
PURPOSE:
  Loads fixture suites (lists of buggy code snippets) into immutable
  in-memory slices at process start.

REQUIREMENTS:
  User-specified:
  - Test cases are fixed data compiled into the program.
  - Case ids are unique within a suite.

  Implementation-discovered:
  - Declaring cases in YAML keeps multi-line code readable and lets users
    export, edit and re-load the fixture without recompiling.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/dashboard
  - Dependencies: gopkg.in/yaml.v3, internal/assets, internal/model

ERROR HANDLING:
  - Returns explicit errors for unknown suites, bad YAML and invalid cases.
  - Never returns a partially validated suite.

IMPLEMENTATION RULES:
  - Callers get a fresh copy; the parsed fixture is never handed out directly.

USAGE:
  cases, err := suite.Load("standard")
  cases, err := suite.LoadFile("./my_suites.yaml", "standard")

SELF-HEALING INSTRUCTIONS:
  - If the fixture schema changes, update fixtureFile and model.TestCase tags.

RELATED FILES:
  - internal/assets/suites.yaml

MAINTENANCE:
  - Update when adding new suites to the embedded fixture.
*/

package suite

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/daryltucker/codefix-bench/internal/assets"
	"github.com/daryltucker/codefix-bench/internal/model"
)

// DefaultName is the suite used when none is configured.
const DefaultName = "standard"

// ErrUnknownSuite is returned when a suite name is not in the fixture.
var ErrUnknownSuite = errors.New("unknown suite")

type fixtureFile struct {
	Suites []fixtureSuite `yaml:"suites"`
}

type fixtureSuite struct {
	Name  string           `yaml:"name"`
	Cases []model.TestCase `yaml:"cases"`
}

// Names lists the embedded suites in file order.
func Names() ([]string, error) {
	f, err := parse(assets.Suites)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.Suites))
	for _, s := range f.Suites {
		names = append(names, s.Name)
	}
	return names, nil
}

// Load returns the embedded suite with the given name.
func Load(name string) ([]model.TestCase, error) {
	return fromBytes(assets.Suites, name, "embedded fixture")
}

// LoadFile returns the named suite from a fixture file on disk.
// An empty name selects the first suite in the file.
func LoadFile(path, name string) ([]model.TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file %s: %w", path, err)
	}
	return fromBytes(data, name, path)
}

func fromBytes(data []byte, name, source string) ([]model.TestCase, error) {
	f, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}
	if len(f.Suites) == 0 {
		return nil, fmt.Errorf("%s defines no suites", source)
	}

	var found *fixtureSuite
	if name == "" {
		found = &f.Suites[0]
	} else {
		for i := range f.Suites {
			if f.Suites[i].Name == name {
				found = &f.Suites[i]
				break
			}
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w %q in %s", ErrUnknownSuite, name, source)
	}

	if err := Validate(found.Cases); err != nil {
		return nil, fmt.Errorf("suite %q in %s: %w", found.Name, source, err)
	}

	cases := make([]model.TestCase, len(found.Cases))
	copy(cases, found.Cases)
	return cases, nil
}

func parse(data []byte) (*fixtureFile, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks required fields and id uniqueness.
func Validate(cases []model.TestCase) error {
	seen := make(map[string]int, len(cases))
	for i, tc := range cases {
		switch {
		case tc.ID == "":
			return fmt.Errorf("case %d: missing id", i)
		case tc.Language == "":
			return fmt.Errorf("case %s: missing lang", tc.ID)
		case tc.Code == "":
			return fmt.Errorf("case %s: missing code", tc.ID)
		}
		if prev, ok := seen[tc.ID]; ok {
			return fmt.Errorf("case %d: duplicate id %q (first at %d)", i, tc.ID, prev)
		}
		seen[tc.ID] = i
	}
	return nil
}
