// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/apyexit/internal/normalize"
	"github.com/pdiddy/apyexit/internal/source"
)

// Kind classifies a conversion failure for the transports.
type Kind int

const (
	// KindInternal is any failure not caused by the input file.
	KindInternal Kind = iota
	KindDecode
	KindSchema
	KindMissingField
)

func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindSchema:
		return "schema"
	case KindMissingField:
		return "missing_field"
	}
	return "internal"
}

// Classify returns the kind of err.
func Classify(err error) Kind {
	var (
		de  *source.DecodeError
		se  *normalize.SchemaError
		mfe *normalize.MissingFieldError
	)
	switch {
	case errors.As(err, &de):
		return KindDecode
	case errors.As(err, &se):
		return KindSchema
	case errors.As(err, &mfe):
		return KindMissingField
	}
	return KindInternal
}

// genericFailure is reported for failures the requester cannot fix.
const genericFailure = "Conversion failed due to an internal error. Please try again later."

// UserMessage returns the text reported to the requester for err.
func UserMessage(err error) string {
	switch Classify(err) {
	case KindDecode:
		return fmt.Sprintf("Could not read the file. Please upload a spreadsheet (%s).",
			strings.Join(source.Supported(), ", "))
	case KindSchema, KindMissingField:
		return "Conversion failed: " + err.Error()
	}
	return genericFailure
}
