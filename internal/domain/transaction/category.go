package transaction

import (
	"strings"
)

// DefaultCategory is used when a transaction arrives without a category
const DefaultCategory = "Outros"

// Category is a well-known transaction category
type Category struct {
	Name string   `json:"name"`
	Kind Type     `json:"kind"`
	Tags []string `json:"-"` // lowercase aliases accepted on input
}

// Categories lists the categories offered by the forms.
// Key: stable slug stored by clients
// Value: display name plus the aliases older clients send
var Categories = map[string]Category{
	"salario": {
		Name: "Salário",
		Kind: TypeIncome,
		Tags: []string{"salario", "salário", "salary", "pagamento"},
	},
	"renda-extra": {
		Name: "Renda Extra",
		Kind: TypeIncome,
		Tags: []string{"renda extra", "freela", "freelance", "extra"},
	},
	"investimentos": {
		Name: "Investimentos",
		Kind: TypeIncome,
		Tags: []string{"investimento", "investimentos", "rendimento", "dividendos"},
	},
	"alimentacao": {
		Name: "Alimentação",
		Kind: TypeExpense,
		Tags: []string{"alimentacao", "alimentação", "comida", "mercado", "supermercado", "restaurante", "food"},
	},
	"transporte": {
		Name: "Transporte",
		Kind: TypeExpense,
		Tags: []string{"transporte", "uber", "combustivel", "combustível", "gasolina", "onibus", "ônibus"},
	},
	"moradia": {
		Name: "Moradia",
		Kind: TypeExpense,
		Tags: []string{"moradia", "aluguel", "condominio", "condomínio", "casa"},
	},
	"contas": {
		Name: "Contas",
		Kind: TypeExpense,
		Tags: []string{"contas", "luz", "agua", "água", "internet", "telefone", "energia"},
	},
	"saude": {
		Name: "Saúde",
		Kind: TypeExpense,
		Tags: []string{"saude", "saúde", "farmacia", "farmácia", "medico", "médico", "plano de saude"},
	},
	"educacao": {
		Name: "Educação",
		Kind: TypeExpense,
		Tags: []string{"educacao", "educação", "curso", "faculdade", "escola", "livros"},
	},
	"lazer": {
		Name: "Lazer",
		Kind: TypeExpense,
		Tags: []string{"lazer", "cinema", "viagem", "streaming", "entretenimento"},
	},
	"compras": {
		Name: "Compras",
		Kind: TypeExpense,
		Tags: []string{"compras", "roupas", "eletronicos", "eletrônicos", "shopping"},
	},
	"outros": {
		Name: DefaultCategory,
		Kind: TypeExpense,
		Tags: []string{"outros", "outro", "other", "diversos"},
	},
}

// CategoryKey resolves a key, display name or alias to its key.
// Returns false when the category is not a known one.
func CategoryKey(category string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		return "", false
	}

	// If it's already a key, return it
	if _, ok := Categories[c]; ok {
		return c, true
	}

	for key, cat := range Categories {
		if strings.ToLower(cat.Name) == c {
			return key, true
		}
		for _, tag := range cat.Tags {
			if tag == c {
				return key, true
			}
		}
	}
	return "", false
}

// NormalizeCategory maps a known category to its display name. Unknown
// categories are kept as typed (trimmed); empty ones become DefaultCategory.
func NormalizeCategory(category string) string {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return DefaultCategory
	}
	if key, ok := CategoryKey(trimmed); ok {
		return Categories[key].Name
	}
	return trimmed
}
