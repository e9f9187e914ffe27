package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Payloads arriving from the wire or the document store are JSON of unknown
// provenance; they are validated here before being trusted as typed values.

var validate = validator.New()

// ValidateTransaction checks a decoded transaction against the schema rules.
func ValidateTransaction(tx Transaction) error {
	if err := validate.Struct(tx); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}
	return nil
}

// ValidateProfile checks a decoded profile, including its nested collections.
func ValidateProfile(p FinancialProfile) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}
