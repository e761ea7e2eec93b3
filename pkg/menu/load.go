package menu

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/goccy/go-yaml"

	_ "embed"
)

//go:embed menu.yaml
var defaultMenuYAML []byte

// DefaultTaxBps is the tax rate applied when the document does not set
// one: 10%, expressed in basis points.
const DefaultTaxBps = 1000

// Document shapes for YAML decoding. Prices are authored in dollars and
// converted to Cents once here.

type menuDoc struct {
	TaxRate    *float64      `yaml:"tax_rate"`
	Categories []categoryDoc `yaml:"categories"`
	Combos     []comboDoc    `yaml:"combos"`
}

type categoryDoc struct {
	Name  string    `yaml:"name"`
	Items []itemDoc `yaml:"items"`
}

type itemDoc struct {
	SKU         string   `yaml:"sku"`
	Name        string   `yaml:"name"`
	Price       float64  `yaml:"price"`
	Description string   `yaml:"description"`
	Aliases     []string `yaml:"aliases"`
}

type comboDoc struct {
	SKU      string           `yaml:"sku"`
	Requires []requirementDoc `yaml:"requires"`
}

type requirementDoc struct {
	Category string   `yaml:"category"`
	NameHas  []string `yaml:"name_has"`
	Qty      int      `yaml:"qty"`
}

// Load reads a menu document from r and builds the immutable catalog,
// including the alias index. Validation is strict: a menu with duplicate
// SKUs, non-positive prices, or dangling combo references is refused.
func Load(r io.Reader) (*Menu, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("menu: read: %w", err)
	}
	return Parse(data)
}

// LoadFile loads a menu from a YAML file on disk.
func LoadFile(path string) (*Menu, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("menu: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the built-in Holy Guacamole menu.
func Default() *Menu {
	m, err := Parse(defaultMenuYAML)
	if err != nil {
		// The embedded menu is validated by tests; a parse failure here
		// is a build defect, not a runtime condition.
		panic(fmt.Sprintf("menu: embedded menu invalid: %v", err))
	}
	return m
}

// Parse decodes and validates a YAML menu document.
func Parse(data []byte) (*Menu, error) {
	var doc menuDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("menu: parse: %w", err)
	}

	m := &Menu{
		bySKU:   make(map[string]*Item),
		aliases: make(map[string]string),
		TaxBps:  DefaultTaxBps,
	}
	if doc.TaxRate != nil {
		if *doc.TaxRate < 0 || *doc.TaxRate >= 1 {
			return nil, fmt.Errorf("menu: tax_rate %v out of range [0, 1)", *doc.TaxRate)
		}
		m.TaxBps = int64(math.Round(*doc.TaxRate * 10000))
	}

	for _, cat := range doc.Categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("menu: category with empty name")
		}
		for _, d := range cat.Items {
			if d.SKU == "" {
				return nil, fmt.Errorf("menu: item %q has no sku", d.Name)
			}
			if d.Name == "" {
				return nil, fmt.Errorf("menu: item %s has no name", d.SKU)
			}
			if d.Price <= 0 {
				return nil, fmt.Errorf("menu: item %s has non-positive price %v", d.SKU, d.Price)
			}
			if _, dup := m.bySKU[d.SKU]; dup {
				return nil, fmt.Errorf("menu: duplicate sku %s", d.SKU)
			}
			it := &Item{
				SKU:         d.SKU,
				Name:        d.Name,
				Price:       Cents(math.Round(d.Price * 100)),
				Category:    cat.Name,
				Description: d.Description,
				Aliases:     d.Aliases,
			}
			m.items = append(m.items, it)
			m.bySKU[it.SKU] = it
			for _, a := range it.Aliases {
				norm := Normalize(a)
				if norm == "" {
					return nil, fmt.Errorf("menu: item %s has empty alias", it.SKU)
				}
				if _, taken := m.aliases[norm]; !taken {
					m.aliases[norm] = it.SKU
				}
			}
		}
	}
	if len(m.items) == 0 {
		return nil, fmt.Errorf("menu: no items")
	}

	for _, d := range doc.Combos {
		result := m.bySKU[d.SKU]
		if result == nil {
			return nil, fmt.Errorf("menu: combo references unknown sku %s", d.SKU)
		}
		if len(d.Requires) == 0 {
			return nil, fmt.Errorf("menu: combo %s has no requirements", d.SKU)
		}
		combo := Combo{Result: result}
		for i, rd := range d.Requires {
			if rd.Qty <= 0 {
				return nil, fmt.Errorf("menu: combo %s requirement %d has qty %d", d.SKU, i, rd.Qty)
			}
			if rd.Category == "" && len(rd.NameHas) == 0 {
				return nil, fmt.Errorf("menu: combo %s requirement %d has no predicate", d.SKU, i)
			}
			combo.Requires = append(combo.Requires, Requirement{
				Category: rd.Category,
				NameHas:  rd.NameHas,
				Qty:      rd.Qty,
			})
		}
		m.combos = append(m.combos, combo)
	}

	return m, nil
}
