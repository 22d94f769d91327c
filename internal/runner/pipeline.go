package runner

import (
	"pdf2ofx/internal/canonical"
	"pdf2ofx/internal/fitid"
	"pdf2ofx/internal/statement"
	"pdf2ofx/internal/validate"
)

// Prepared is a statement that cleared normalization, identity assignment
// and validation, ready for diagnostics and review.
type Prepared struct {
	Slug           string
	Name           string
	Raw            canonical.Payload
	Statement      *statement.Statement
	Issues         []statement.Issue
	ExtractedCount int
	Warnings       []string
}

// Prepare maps a raw payload into a validated canonical statement. Every
// returned error is a stage failure from the normalization or validation
// boundary.
func Prepare(raw canonical.Payload, slug, name string, defaults canonical.Defaults) (*Prepared, error) {
	mapped, err := canonical.Canonicalize(raw, defaults)
	if err != nil {
		return nil, err
	}
	extracted := len(mapped.Statement.Transactions)

	fitid.Assign(mapped.Statement.Account.AccountID, mapped.Statement.Transactions)

	validated, err := validate.Statement(mapped.Statement)
	if err != nil {
		return nil, err
	}

	return &Prepared{
		Slug:           slug,
		Name:           name,
		Raw:            raw,
		Statement:      validated.Statement,
		Issues:         validated.Issues,
		ExtractedCount: extracted,
		Warnings:       mapped.Warnings,
	}, nil
}
