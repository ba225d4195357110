package inflect

import (
	"strings"
	"sync"

	"github.com/jinzhu/inflection"
)

// rules guards the jinzhu/inflection rule set, which is shared by every
// Inflector in the process
var rules sync.RWMutex

// Inflector resolves singular and plural collection names
type Inflector struct{}

// New creates an inflector backed by the shared jinzhu/inflection rule set
func New() *Inflector {
	return &Inflector{}
}

// Singular returns the singular form of name
func (i *Inflector) Singular(name string) string {
	rules.RLock()
	defer rules.RUnlock()
	return inflection.Singular(strings.TrimSpace(name))
}

// Plural returns the plural form of name. A name that is already plural is
// returned unchanged.
func (i *Inflector) Plural(name string) string {
	rules.RLock()
	defer rules.RUnlock()
	name = strings.TrimSpace(name)
	singular := inflection.Singular(name)
	if singular != name && inflection.Plural(singular) == name {
		return name
	}
	return inflection.Plural(name)
}

// AddIrregular registers an irregular singular/plural pair. Rules are
// process-wide and apply to every Inflector.
func (i *Inflector) AddIrregular(singular, plural string) {
	rules.Lock()
	defer rules.Unlock()
	inflection.AddIrregular(singular, plural)
}

// AddUncountable registers words that have no plural form
func (i *Inflector) AddUncountable(words ...string) {
	rules.Lock()
	defer rules.Unlock()
	inflection.AddUncountable(words...)
}
