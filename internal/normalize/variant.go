// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import "github.com/pdiddy/apyexit/pkg/types"

// Naming selects how the output file of a conversion is named.
type Naming int

const (
	// NameFromSource names the output after the input file stem.
	NameFromSource Naming = iota
	// NameTimestamped names the output APY_EXIT_<YYYYMMDD_HHMMSS>.xml.
	NameTimestamped
)

// Columns maps the six required fields to the column names of one input
// layout.
type Columns struct {
	PRAN       string
	ExitDate   string
	Account    string
	BranchCode string
	Address    string
	Pin        string
}

// Variant is one supported input layout together with the values that
// differ between layouts in the rendered document.
type Variant struct {
	Name    string
	Columns Columns

	// ReasonOfClosure is the reason-of-closure code emitted per row.
	ReasonOfClosure string

	// Specify is emitted as <specify> after reason-of-closure when set.
	Specify string

	// TruncateExitDate keeps only the first whitespace-delimited token of
	// the exit date.
	TruncateExitDate bool

	Naming Naming
}

// VariantA is the layout with space-separated column names.
var VariantA = Variant{
	Name: "A",
	Columns: Columns{
		PRAN:       "PRAN NO",
		ExitDate:   "EXIT DATE/STATUS",
		Account:    "ACC NO",
		BranchCode: "SOL No",
		Address:    "BRANCH",
		Pin:        "PINCODE",
	},
	ReasonOfClosure: "1",
	Naming:          NameFromSource,
}

// VariantB is the layout with underscore-separated column names. Its exit
// dates carry a time-of-day suffix.
var VariantB = Variant{
	Name: "B",
	Columns: Columns{
		PRAN:       "PRAN_NO",
		ExitDate:   "EXIT_DATE",
		Account:    "ACC_NO",
		BranchCode: "SOL_NO",
		Address:    "BRANCH",
		Pin:        "PINCODE",
	},
	ReasonOfClosure:  "3",
	Specify:          "I am not interested please close my account",
	TruncateExitDate: true,
	Naming:           NameTimestamped,
}

// Detect picks the variant from the header. PRAN_NO wins over PRAN NO when
// both are present.
func Detect(t types.Table) (Variant, error) {
	switch {
	case t.HasColumn(VariantB.Columns.PRAN):
		return VariantB, nil
	case t.HasColumn(VariantA.Columns.PRAN):
		return VariantA, nil
	}
	return Variant{}, &SchemaError{
		Missing: []string{VariantA.Columns.PRAN, VariantB.Columns.PRAN},
	}
}
