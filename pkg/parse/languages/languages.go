// Package languages provides the complete list of supported parser adapters.
//
// This package exists to break import cycles: the individual language packages
// (python, java) import pkg/parse, so pkg/parse cannot import them back.
// Consumers that need the full adapter list import this package.
package languages

import (
	"github.com/matzehuels/codeatlas/pkg/parse"
	"github.com/matzehuels/codeatlas/pkg/parse/java"
	"github.com/matzehuels/codeatlas/pkg/parse/python"
)

// All is the canonical list of supported language adapters. Order matters:
// language detection breaks ties by position in this slice.
var All = []parse.Adapter{
	python.Adapter,
	java.Adapter,
}

// Find returns the adapter with the given language name, or nil.
func Find(name string) parse.Adapter {
	return parse.Find(name, All)
}
