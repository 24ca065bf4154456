package yamlstore

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/raceday/pitstop/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeUniverse(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "forks.yaml"), `forks:
  frontier:
    eips: [base]
  homestead:
    extends: frontier
    eips: ["150"]
`)
	writeFile(t, filepath.Join(dir, "eips", "base.yaml"), `name: Initial gas costs
constants:
  G_SLOAD: 50
categories:
  operations:
    SLOAD: $G_SLOAD
    ADD: 3
`)
	writeFile(t, filepath.Join(dir, "eips", "150.yaml"), `name: IO-heavy operation repricing
categories:
  operations:
    SLOAD: 200
`)
	return dir
}

func TestLoadUniverse(t *testing.T) {
	store, err := Load(writeUniverse(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if ids := store.ForkIDs(); !reflect.DeepEqual(ids, []string{"frontier", "homestead"}) {
		t.Fatalf("unexpected fork ids %v", ids)
	}
	if ids := store.ChangeIDs(); !reflect.DeepEqual(ids, []string{"150", "base"}) {
		t.Fatalf("unexpected change ids %v", ids)
	}

	homestead, ok := store.Fork("homestead")
	if !ok {
		t.Fatal("homestead missing")
	}
	if homestead.Extends != "frontier" || !reflect.DeepEqual(homestead.EIPs, []string{"150"}) {
		t.Fatalf("unexpected fork %+v", homestead)
	}

	base, ok := store.Change("base")
	if !ok {
		t.Fatal("base change missing")
	}
	if base.Description != "Initial gas costs" {
		t.Fatalf("unexpected description %q", base.Description)
	}
	if base.Constants["G_SLOAD"] != 50 {
		t.Fatalf("unexpected constants %v", base.Constants)
	}
	sload := base.Categories[domain.CategoryOperations]["SLOAD"]
	if !sload.Symbolic() || sload.Symbol != "G_SLOAD" {
		t.Fatalf("unexpected SLOAD value %+v", sload)
	}
	add := base.Categories[domain.CategoryOperations]["ADD"]
	if add.Symbolic() || add.Amount != 3 {
		t.Fatalf("unexpected ADD value %+v", add)
	}
}

func TestLoadRejectsDuplicateMember(t *testing.T) {
	dir := writeUniverse(t)
	writeFile(t, filepath.Join(dir, "eips", "dup.yaml"), `name: duplicate member
categories:
  operations:
    SLOAD: 1
    SLOAD: 2
`)
	writeFile(t, filepath.Join(dir, "forks.yaml"), `forks:
  frontier:
    eips: [base, dup]
`)

	_, err := Load(dir)
	if !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	var dup *domain.DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatal("expected DuplicateKeyError")
	}
	if dup.ChangeID != "dup" || dup.Key != "SLOAD" || dup.Section != "categories.operations" {
		t.Fatalf("unexpected error context %+v", dup)
	}
}

func TestLoadRejectsDuplicateConstant(t *testing.T) {
	dir := writeUniverse(t)
	writeFile(t, filepath.Join(dir, "eips", "base.yaml"), `name: duplicate constant
constants:
  G: 1
  G: 2
`)
	_, err := Load(dir)
	var dup *domain.DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateKeyError, got %v", err)
	}
	if dup.Section != "constants" || dup.Key != "G" {
		t.Fatalf("unexpected error context %+v", dup)
	}
}

func TestLoadRejectsDanglingExtends(t *testing.T) {
	dir := writeUniverse(t)
	writeFile(t, filepath.Join(dir, "forks.yaml"), `forks:
  frontier:
    eips: [base]
  homestead:
    extends: atlantis
    eips: ["150"]
`)
	_, err := Load(dir)
	var notFound *domain.ForkNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ForkNotFoundError, got %v", err)
	}
	if notFound.ForkID != "atlantis" || notFound.ReferencedBy != "homestead" {
		t.Fatalf("unexpected error context %+v", notFound)
	}
}

func TestLoadRejectsDanglingChangeID(t *testing.T) {
	dir := writeUniverse(t)
	writeFile(t, filepath.Join(dir, "forks.yaml"), `forks:
  frontier:
    eips: [base, "9999"]
`)
	_, err := Load(dir)
	var notFound *domain.ChangeNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ChangeNotFoundError, got %v", err)
	}
	if notFound.ChangeID != "9999" || notFound.ForkID != "frontier" {
		t.Fatalf("unexpected error context %+v", notFound)
	}
}

func TestLoadRejectsPlainStringValue(t *testing.T) {
	dir := writeUniverse(t)
	writeFile(t, filepath.Join(dir, "eips", "150.yaml"), `name: bad value
categories:
  operations:
    SLOAD: cheap
`)
	if _, err := Load(dir); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestAvailable(t *testing.T) {
	dir := writeUniverse(t)
	if !Available(dir) {
		t.Fatal("expected universe dir to be available")
	}
	if Available(t.TempDir()) {
		t.Fatal("expected empty dir to be unavailable")
	}
}
