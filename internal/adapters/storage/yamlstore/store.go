// Package yamlstore loads one authored schedule universe from disk: a
// forks.yaml index plus one change file per id under eips/. The loaded
// store is immutable and implements app.Universe; reloading means loading
// a fresh store and swapping it in whole.
package yamlstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/raceday/pitstop/internal/domain"
)

// forksFile and eipsDir fix the on-disk layout inside a schedules directory.
const (
	forksFile = "forks.yaml"
	eipsDir   = "eips"
)

// Store is one loaded, immutable universe.
type Store struct {
	forks   map[string]domain.Fork
	changes map[string]domain.Change
}

// Load reads the universe under dir and validates it structurally: no
// duplicate keys in any document, every extends parent present, every listed
// change id present.
func Load(dir string) (*Store, error) {
	forks, err := loadForks(filepath.Join(dir, forksFile))
	if err != nil {
		return nil, err
	}
	changes, err := loadChanges(filepath.Join(dir, eipsDir))
	if err != nil {
		return nil, err
	}

	store := &Store{forks: forks, changes: changes}
	if err := store.validateReferences(); err != nil {
		return nil, err
	}
	return store, nil
}

// Fork returns one fork by id.
func (s *Store) Fork(id string) (domain.Fork, bool) {
	f, ok := s.forks[id]
	return f, ok
}

// ForkIDs returns the loaded fork ids, sorted.
func (s *Store) ForkIDs() []string {
	ids := make([]string, 0, len(s.forks))
	for id := range s.forks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Change returns one change by id.
func (s *Store) Change(id string) (domain.Change, bool) {
	c, ok := s.changes[id]
	return c, ok
}

// ChangeIDs returns the loaded change ids, sorted.
func (s *Store) ChangeIDs() []string {
	ids := make([]string, 0, len(s.changes))
	for id := range s.changes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// validateReferences checks cross-reference completeness once at load time:
// extends parents and listed change ids must all exist.
func (s *Store) validateReferences() error {
	for _, id := range s.ForkIDs() {
		fork := s.forks[id]
		if !fork.Root() {
			if _, ok := s.forks[fork.Extends]; !ok {
				return &domain.ForkNotFoundError{
					ForkID:       fork.Extends,
					ReferencedBy: fork.ID,
					Available:    s.ForkIDs(),
				}
			}
		}
		for _, changeID := range fork.EIPs {
			if _, ok := s.changes[changeID]; !ok {
				return &domain.ChangeNotFoundError{
					ChangeID:  changeID,
					ForkID:    fork.ID,
					Available: s.ChangeIDs(),
				}
			}
		}
	}
	return nil
}

// forkDoc mirrors one fork entry in forks.yaml.
type forkDoc struct {
	Extends string   `yaml:"extends"`
	EIPs    []string `yaml:"eips"`
}

// forksDoc mirrors the top-level forks.yaml shape.
type forksDoc struct {
	Forks map[string]forkDoc `yaml:"forks"`
}

func loadForks(path string) (map[string]domain.Fork, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read forks file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", forksFile, err)
	}
	if err := rejectDuplicateKeys(&root, "forks", nil); err != nil {
		return nil, err
	}

	var doc forksDoc
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", forksFile, err)
	}
	if doc.Forks == nil {
		return nil, fmt.Errorf("%s must contain a forks mapping", forksFile)
	}

	forks := make(map[string]domain.Fork, len(doc.Forks))
	for id, entry := range doc.Forks {
		fork := domain.Fork{ID: id, Extends: entry.Extends, EIPs: entry.EIPs}
		if err := fork.Validate(); err != nil {
			return nil, err
		}
		forks[id] = fork
	}
	return forks, nil
}

// changeDoc mirrors one change file. The change id comes from the file name,
// matching how changes are referenced from forks.yaml.
type changeDoc struct {
	Name       string                         `yaml:"name"`
	Constants  map[string]int64               `yaml:"constants"`
	Categories map[string]map[string]valueDoc `yaml:"categories"`
}

// valueDoc decodes one literal-or-symbolic schedule value.
type valueDoc struct {
	value domain.Value
}

func (v *valueDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: expected a number or %sCONSTANT reference", domain.ErrInvalidValue, domain.Sigil)
	}
	var amount int64
	if err := node.Decode(&amount); err == nil {
		v.value = domain.Literal(amount)
		return nil
	}
	var raw string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("%w: unreadable value", domain.ErrInvalidValue)
	}
	parsed, err := domain.ParseSymbol(raw)
	if err != nil {
		return err
	}
	v.value = parsed
	return nil
}

func loadChanges(dir string) (map[string]domain.Change, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read changes dir: %w", err)
	}

	changes := make(map[string]domain.Change)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)

	for _, name := range names {
		id := strings.TrimSuffix(name, ".yaml")
		change, err := loadChange(filepath.Join(dir, name), id)
		if err != nil {
			return nil, err
		}
		changes[id] = change
	}
	return changes, nil
}

func loadChange(path, id string) (domain.Change, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Change{}, fmt.Errorf("read change %s: %w", id, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return domain.Change{}, fmt.Errorf("parse change %s: %w", id, err)
	}
	if err := rejectDuplicateKeys(&root, id, nil); err != nil {
		return domain.Change{}, err
	}

	var doc changeDoc
	if err := root.Decode(&doc); err != nil {
		return domain.Change{}, fmt.Errorf("decode change %s: %w", id, err)
	}

	change := domain.Change{
		ID:          id,
		Description: doc.Name,
		Constants:   doc.Constants,
	}
	if len(doc.Categories) > 0 {
		change.Categories = make(map[string]map[string]domain.Value, len(doc.Categories))
		for category, members := range doc.Categories {
			out := make(map[string]domain.Value, len(members))
			for member, value := range members {
				out[member] = value.value
			}
			change.Categories[category] = out
		}
	}
	if err := change.Validate(); err != nil {
		return domain.Change{}, err
	}
	return change, nil
}

// rejectDuplicateKeys walks every mapping in one parsed document and fails
// on the first repeated key. Plain map decoding would silently keep the last
// occurrence, exactly the corruption the engine must never allow.
func rejectDuplicateKeys(node *yaml.Node, owner string, path []string) error {
	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			if err := rejectDuplicateKeys(child, owner, path); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		seen := make(map[string]struct{}, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if _, dup := seen[key.Value]; dup {
				section := "document"
				if len(path) > 0 {
					section = strings.Join(path, ".")
				}
				return &domain.DuplicateKeyError{ChangeID: owner, Section: section, Key: key.Value}
			}
			seen[key.Value] = struct{}{}
			if err := rejectDuplicateKeys(node.Content[i+1], owner, append(path, key.Value)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Available reports whether dir looks like a schedules directory.
func Available(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, forksFile)); errors.Is(err, os.ErrNotExist) {
		return false
	}
	return true
}
