// Package validation содержит функции валидации входных данных.
package validation

import (
	"fmt"
	"regexp"
)

// IsValidQuantity проверяет, что количество товара в заказе положительное.
func IsValidQuantity(quantity int) bool {
	return quantity > 0
}

// IsValidDiscount проверяет, что процент скидки лежит в диапазоне [0, 100].
func IsValidDiscount(discountPct float64) bool {
	return discountPct >= 0 && discountPct <= 100
}

// Patterns содержит скомпилированные шаблоны проверки контактных данных покупателя.
type Patterns struct {
	email   *regexp.Regexp
	contact *regexp.Regexp
}

// CompilePatterns компилирует шаблоны email и контактного номера из конфигурации.
func CompilePatterns(emailRegexp, contactRegexp string) (*Patterns, error) {
	email, err := regexp.Compile(emailRegexp)
	if err != nil {
		return nil, fmt.Errorf("compile email regexp: %w", err)
	}

	contact, err := regexp.Compile(contactRegexp)
	if err != nil {
		return nil, fmt.Errorf("compile contact regexp: %w", err)
	}

	return &Patterns{email: email, contact: contact}, nil
}

// IsValidEmail проверяет email покупателя по настроенному шаблону.
func (p *Patterns) IsValidEmail(email string) bool {
	return email != "" && p.email.MatchString(email)
}

// IsValidContact проверяет контактный номер покупателя по настроенному шаблону.
func (p *Patterns) IsValidContact(contact string) bool {
	return contact != "" && p.contact.MatchString(contact)
}
