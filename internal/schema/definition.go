// Package schema keeps versioned dataset layouts: which columns a dataset
// carries, with their element kinds and arity.
package schema

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// State is where a definition is in its lifecycle.
type State string

const (
	StateActive     State = "active"
	StateDeprecated State = "deprecated"
)

// Format is the source language of a definition.
type Format string

const (
	FormatProtobuf Format = "protobuf"
	FormatYaml     Format = "yaml"
)

// Ref names one version of a dataset layout.
type Ref struct {
	Dataset string
	Version int
}

func (r Ref) String() string {
	return fmt.Sprintf("%s v%d", r.Dataset, r.Version)
}

// Definition is a registered layout in source form. Compile it with
// Compilers to get a Layout.
type Definition struct {
	ID           string     `json:"id"`
	Dataset      string     `json:"dataset"`
	Version      int        `json:"version"`
	Format       Format     `json:"format"`
	Source       []byte     `json:"source"`
	Fingerprint  string     `json:"fingerprint"`
	State        State      `json:"state"`
	StrictMode   bool       `json:"strict_mode"`
	CreatedAt    time.Time  `json:"created_at"`
	DeprecatedAt *time.Time `json:"deprecated_at,omitempty"`
}

// Ref returns the dataset and version of d.
func (d *Definition) Ref() Ref {
	return Ref{Dataset: d.Dataset, Version: d.Version}
}

// Fingerprint is the hex SHA-256 of a definition source.
func Fingerprint(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Repository stores definitions.
type Repository interface {
	// Create fails with ErrAlreadyExists when the ref is taken.
	Create(ctx context.Context, def *Definition) error
	// Get fails with ErrNotFound.
	Get(ctx context.Context, ref Ref) (*Definition, error)
	// List returns definitions ordered by dataset then version. An empty
	// dataset lists everything.
	List(ctx context.Context, dataset string) ([]*Definition, error)
	SetState(ctx context.Context, ref Ref, state State) error
}
