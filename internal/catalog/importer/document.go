package importer

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Document is a shop's catalog price list.
type Document struct {
	Shop       string          `yaml:"shop" validate:"required,max=128"`
	Categories []CategoryEntry `yaml:"categories" validate:"dive"`
	Goods      []GoodEntry     `yaml:"goods" validate:"dive"`
}

type CategoryEntry struct {
	ID   int64  `yaml:"id" validate:"required,gt=0"`
	Name string `yaml:"name" validate:"required,max=128"`
}

type GoodEntry struct {
	Name       string         `yaml:"name" validate:"required,max=255"`
	Category   int64          `yaml:"category" validate:"required,gt=0"`
	Model      string         `yaml:"model" validate:"max=128"`
	Quantity   *int           `yaml:"quantity" validate:"required,gte=0"`
	Price      *Amount        `yaml:"price" validate:"required,gte=0"`
	PriceRRC   *Amount        `yaml:"price_rrc" validate:"required,gte=0"`
	Parameters map[string]any `yaml:"parameters"`
}

// Amount decodes YAML numbers and numeric strings without float rounding.
type Amount struct {
	decimal.Decimal
}

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", node.Line)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(node.Value))
	if err != nil {
		return fmt.Errorf("line %d: invalid amount %q", node.Line, node.Value)
	}
	a.Decimal = d
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if a, ok := field.Interface().(Amount); ok {
			f, _ := a.Float64()
			return f
		}
		return nil
	}, Amount{})
	return v
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog document is empty")
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid catalog document").
			WithDetails(map[string]any{"error": err.Error()})
	}
	if err := validate.Struct(&doc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := map[string]string{}
			for _, fe := range verrs {
				details[fe.Namespace()] = fe.Tag()
			}
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid catalog document").WithDetails(details)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid catalog document")
	}

	seen := make(map[int64]struct{}, len(doc.Categories))
	for _, c := range doc.Categories {
		if _, dup := seen[c.ID]; dup {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "category %d listed twice", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	for i, g := range doc.Goods {
		if _, err := g.ParameterValues(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("goods[%d]", i))
		}
	}
	return &doc, nil
}

// ParameterValues renders parameter values as the strings stored on a listing.
func (g GoodEntry) ParameterValues() (map[string]string, error) {
	out := make(map[string]string, len(g.Parameters))
	for name, raw := range g.Parameters {
		key := strings.TrimSpace(name)
		if key == "" {
			return nil, errors.New("parameter name is required")
		}
		switch v := raw.(type) {
		case string:
			out[key] = v
		case int:
			out[key] = strconv.Itoa(v)
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[key] = strconv.FormatBool(v)
		case nil:
			out[key] = ""
		default:
			return nil, fmt.Errorf("parameter %q must be a scalar", key)
		}
	}
	return out, nil
}
