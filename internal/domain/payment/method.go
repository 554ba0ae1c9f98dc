package payment

import (
	"strings"

	"financeiro/internal/shared/apperror"
)

// Method is how money left or entered the user's hands. The set is closed:
// unknown labels are rejected at the boundary by ParseMethod.
type Method string

const (
	MethodCash         Method = "cash"
	MethodDebitCard    Method = "debit_card"
	MethodPix          Method = "pix"
	MethodBankTransfer Method = "bank_transfer"
	MethodCreditCard   Method = "credit_card"
)

var ErrInvalidMethod = apperror.Validation("unknown payment method")

// Methods lists every supported method
func Methods() []Method {
	return []Method{MethodCash, MethodDebitCard, MethodPix, MethodBankTransfer, MethodCreditCard}
}

// ParseMethod accepts the canonical labels plus the Portuguese names the
// web forms have always sent ("Dinheiro", "Débito", "Cartão de Crédito"...).
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash", "dinheiro":
		return MethodCash, nil
	case "debit_card", "debito", "débito", "cartão de débito", "cartao de debito":
		return MethodDebitCard, nil
	case "pix":
		return MethodPix, nil
	case "bank_transfer", "banco", "transferencia", "transferência":
		return MethodBankTransfer, nil
	case "credit_card", "credito", "crédito", "cartão de crédito", "cartao de credito":
		return MethodCreditCard, nil
	default:
		return "", ErrInvalidMethod
	}
}

func (m Method) IsValid() bool {
	switch m {
	case MethodCash, MethodDebitCard, MethodPix, MethodBankTransfer, MethodCreditCard:
		return true
	default:
		return false
	}
}

// UsesBankAccount reports whether the method moves money through a bank
// account balance.
func (m Method) UsesBankAccount() bool {
	switch m {
	case MethodDebitCard, MethodPix, MethodBankTransfer:
		return true
	case MethodCash, MethodCreditCard:
		return false
	default:
		return false
	}
}

func (m Method) String() string {
	return string(m)
}
