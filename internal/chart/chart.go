// Package chart loads chart-of-accounts templates from YAML.
package chart

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/service"
)

//go:embed default.yaml
var defaultChart []byte

type Chart struct {
	Name     string    `yaml:"name"`
	Accounts []Account `yaml:"accounts"`
}

type Account struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Parent      string `yaml:"parent,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Default returns the built-in small-business chart.
func Default() (*Chart, error) {
	return Load(bytes.NewReader(defaultChart))
}

func LoadFile(path string) (*Chart, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading chart: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*Chart, error) {
	var c Chart
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parsing chart: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks types, duplicate codes and that every parent is declared
// before its children.
func (c *Chart) Validate() error {
	if len(c.Accounts) == 0 {
		return domain.NewValidationError("accounts", "chart has no accounts")
	}
	types := make(map[string]domain.AccountType, len(c.Accounts))
	for i, a := range c.Accounts {
		field := fmt.Sprintf("accounts[%d]", i)
		if a.Code == "" || a.Name == "" {
			return domain.NewValidationError(field, "code and name are required")
		}
		t := domain.AccountType(a.Type)
		if !t.IsValid() {
			return domain.NewValidationError(field+".type", "unknown account type %q", a.Type)
		}
		if _, dup := types[a.Code]; dup {
			return domain.NewValidationError(field+".code", "duplicate code %s", a.Code)
		}
		if a.Parent != "" {
			if _, ok := types[a.Parent]; !ok {
				return domain.NewValidationError(field+".parent", "parent %s must be declared before %s", a.Parent, a.Code)
			}
		}
		types[a.Code] = t
	}
	return nil
}

func (c *Chart) Seeds() []service.SeedAccount {
	seeds := make([]service.SeedAccount, len(c.Accounts))
	for i, a := range c.Accounts {
		seeds[i] = service.SeedAccount{
			Code:        a.Code,
			Name:        a.Name,
			Description: a.Description,
			Type:        domain.AccountType(a.Type),
			ParentCode:  a.Parent,
		}
	}
	return seeds
}
